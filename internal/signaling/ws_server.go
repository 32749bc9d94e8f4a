package signaling

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

// WSConfig bounds a single signaling connection.
type WSConfig struct {
	// MaxMessageBytes caps an inbound frame; larger frames close the connection.
	MaxMessageBytes int64
	// MessagesPerSecond is the sustained inbound rate; exceeding the burst
	// closes the connection with policy-violation.
	MessagesPerSecond float64
	Burst             int
	// SendQueue is the number of outbound events buffered per connection.
	SendQueue int
	// PongWait is how long a connection may stay silent before it is dropped.
	// Pings are sent at 9/10 of it.
	PongWait  time.Duration
	WriteWait time.Duration
	// AllowedOrigins lists browser origins allowed to connect. "*" allows any.
	// Requests without an Origin header (non-browser clients) are always allowed.
	AllowedOrigins []string
}

// DefaultWSConfig holds the limits used for zero fields.
var DefaultWSConfig = WSConfig{
	MaxMessageBytes:   64 << 10,
	MessagesPerSecond: 20,
	Burst:             40,
	SendQueue:         64,
	PongWait:          60 * time.Second,
	WriteWait:         5 * time.Second,
}

func (c WSConfig) withDefaults() WSConfig {
	d := DefaultWSConfig
	if c.MaxMessageBytes <= 0 {
		c.MaxMessageBytes = d.MaxMessageBytes
	}
	if c.MessagesPerSecond <= 0 {
		c.MessagesPerSecond = d.MessagesPerSecond
	}
	if c.Burst <= 0 {
		c.Burst = max(d.Burst, int(c.MessagesPerSecond*2))
	}
	if c.SendQueue <= 0 {
		c.SendQueue = d.SendQueue
	}
	if c.PongWait <= 0 {
		c.PongWait = d.PongWait
	}
	if c.WriteWait <= 0 {
		c.WriteWait = d.WriteWait
	}
	return c
}

// WebSocketServer accepts signaling connections and plugs them into a Relay.
// Each connection gets one reader goroutine (the handler) and one writer
// goroutine draining its send queue.
type WebSocketServer struct {
	relay    *Relay
	cfg      WSConfig
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu    sync.Mutex
	peers map[*wsPeer]struct{}
}

func NewWebSocketServer(relay *Relay, cfg WSConfig, logger *slog.Logger) *WebSocketServer {
	cfg = cfg.withDefaults()
	s := &WebSocketServer{
		relay:  relay,
		cfg:    cfg,
		logger: logger,
		peers:  make(map[*wsPeer]struct{}),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

func (s *WebSocketServer) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.cfg.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	s.logger.Warn("signaling origin rejected", "origin", origin)
	return false
}

func (s *WebSocketServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written an HTTP error.
		return
	}
	conn.SetReadLimit(s.cfg.MaxMessageBytes)

	peer := newWSPeer(conn, s.cfg.SendQueue, s.cfg.WriteWait)
	s.track(peer)
	defer s.untrack(peer)
	go peer.writeLoop(s.cfg.PongWait * 9 / 10)

	id := s.relay.Connect(peer)
	defer func() {
		s.relay.Disconnect(id)
		peer.close()
	}()
	logger := s.logger.With("session_id", id)

	_ = conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	})

	limiter := rate.NewLimiter(rate.Limit(s.cfg.MessagesPerSecond), s.cfg.Burst)
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				logger.Debug("signaling read failed", "err", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))

		if !limiter.Allow() {
			s.relay.metrics.RecordDropped(DropRateLimited)
			logger.Warn("signaling rate limit exceeded")
			peer.closeWith(websocket.ClosePolicyViolation, "rate limit exceeded")
			return
		}
		if msgType != websocket.TextMessage {
			s.relay.metrics.RecordDropped(DropMalformed)
			logger.Debug("signaling frame ignored", "reason", "expected text message")
			continue
		}
		msg, err := parseClientMessage(data)
		if err != nil {
			s.relay.metrics.RecordDropped(DropMalformed)
			logger.Debug("signaling frame ignored", "err", err)
			continue
		}
		if err := s.relay.Handle(id, msg); err != nil {
			if errors.Is(err, ErrUnreachable) {
				logger.Debug("signaling target unreachable", "type", msg.Type, "to", msg.To)
				continue
			}
			logger.Warn("signaling event rejected", "type", msg.Type, "err", err)
		}
	}
}

// CloseAll closes every open signaling connection with going-away. Hijacked
// connections are not closed by http.Server.Shutdown.
func (s *WebSocketServer) CloseAll() {
	s.mu.Lock()
	peers := make([]*wsPeer, 0, len(s.peers))
	for p := range s.peers {
		peers = append(peers, p)
	}
	s.mu.Unlock()

	for _, p := range peers {
		p.closeWith(websocket.CloseGoingAway, "server shutting down")
	}
}

func (s *WebSocketServer) track(p *wsPeer) {
	s.mu.Lock()
	s.peers[p] = struct{}{}
	s.mu.Unlock()
}

func (s *WebSocketServer) untrack(p *wsPeer) {
	s.mu.Lock()
	delete(s.peers, p)
	s.mu.Unlock()
}

// wsPeer is a Peer backed by a websocket connection. Only writeLoop writes
// data frames; control frames may be written from any goroutine.
type wsPeer struct {
	conn      *websocket.Conn
	send      chan Message
	done      chan struct{}
	closeOnce sync.Once
	writeWait time.Duration
}

func newWSPeer(conn *websocket.Conn, queue int, writeWait time.Duration) *wsPeer {
	return &wsPeer{
		conn:      conn,
		send:      make(chan Message, queue),
		done:      make(chan struct{}),
		writeWait: writeWait,
	}
}

func (p *wsPeer) Send(msg Message) bool {
	select {
	case <-p.done:
		return false
	default:
	}
	select {
	case p.send <- msg:
		return true
	default:
		return false
	}
}

func (p *wsPeer) writeLoop(pingPeriod time.Duration) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-p.done:
			return
		case msg := <-p.send:
			payload, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			_ = p.conn.SetWriteDeadline(time.Now().Add(p.writeWait))
			if err := p.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				p.close()
				return
			}
		case <-ticker.C:
			if err := p.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(p.writeWait)); err != nil {
				p.close()
				return
			}
		}
	}
}

// closeWith sends a close frame with code and reason, then closes.
func (p *wsPeer) closeWith(code int, reason string) {
	writeClose(p.conn, code, reason, p.writeWait)
	p.close()
}

func (p *wsPeer) close() {
	p.closeOnce.Do(func() {
		close(p.done)
		_ = p.conn.Close()
	})
}

func writeClose(conn *websocket.Conn, code int, reason string, wait time.Duration) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(wait))
}
