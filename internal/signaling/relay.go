package signaling

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Drop reasons reported to Metrics.RecordDropped.
const (
	DropUnreachable = "unreachable"
	DropQueueFull   = "queue_full"
	DropMalformed   = "malformed"
	DropRateLimited = "rate_limited"
)

// Metrics receives relay events. *metrics.Collector implements it.
type Metrics interface {
	SessionOpened()
	SessionClosed()
	RecordRelayed(eventType string)
	RecordDropped(reason string)
}

// Options selects the relay's call lifecycle behavior.
type Options struct {
	// TargetedHangup notifies only the answered call partner on disconnect
	// instead of every connected session.
	TargetedHangup bool
	// NotifyUnreachable answers an invite to an unknown session with
	// call-unreachable instead of dropping it silently.
	NotifyUnreachable bool
}

// Relay routes signaling events between registered sessions.
type Relay struct {
	registry *Registry
	opts     Options
	metrics  Metrics
	logger   *slog.Logger

	// pairs holds answered calls in both directions. Only used with TargetedHangup.
	pairsMu sync.Mutex
	pairs   map[string]string
}

func NewRelay(registry *Registry, opts Options, metrics Metrics, logger *slog.Logger) *Relay {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Relay{
		registry: registry,
		opts:     opts,
		metrics:  metrics,
		logger:   logger,
		pairs:    make(map[string]string),
	}
}

// Registry returns the session registry backing the relay.
func (r *Relay) Registry() *Registry { return r.registry }

// Connect sends p its session id, then registers it. No other event can
// reach p before assigned-session.
func (r *Relay) Connect(p Peer) string {
	id := r.registry.NewID()
	r.deliver(p, Message{Type: EventAssignedSession, ID: id})
	r.registry.Add(id, p)
	r.metrics.SessionOpened()
	r.logger.Debug("signaling session opened", "session_id", id)
	return id
}

// Disconnect unregisters id and tells the other side(s) that the call ended.
// Calling it for an id that is already gone does nothing.
func (r *Relay) Disconnect(id string) {
	if !r.registry.Unregister(id) {
		return
	}
	r.metrics.SessionClosed()
	ended := Message{Type: EventCallEnded, From: id}

	if r.opts.TargetedHangup {
		partner, ok := r.unpair(id)
		if ok {
			if p, found := r.registry.Lookup(partner); found {
				r.deliver(p, ended)
			}
		}
	} else {
		for _, p := range r.registry.Others(id) {
			r.deliver(p, ended)
		}
	}
	r.logger.Debug("signaling session closed", "session_id", id)
}

// Handle dispatches a validated client message sent by session from.
func (r *Relay) Handle(from string, msg Message) error {
	if _, ok := r.registry.Lookup(from); !ok {
		return ErrSessionNotFound
	}
	switch msg.Type {
	case EventInviteCall:
		return r.Invite(from, msg.To, msg.Signal, msg.Name)
	case EventCallAnswered:
		return r.Answer(from, msg.To, msg.Signal)
	default:
		r.metrics.RecordDropped(DropMalformed)
		return fmt.Errorf("unsupported message type %q", msg.Type)
	}
}

// Invite forwards a call invitation from one session to another.
func (r *Relay) Invite(from, to string, signal json.RawMessage, name string) error {
	target, ok := r.registry.Lookup(to)
	if !ok {
		r.metrics.RecordDropped(DropUnreachable)
		if r.opts.NotifyUnreachable {
			if sender, found := r.registry.Lookup(from); found {
				r.deliver(sender, Message{Type: EventCallUnreachable, To: to})
			}
		}
		return ErrUnreachable
	}
	r.deliver(target, Message{Type: EventInviteCall, From: from, Signal: signal, Name: name})
	return nil
}

// Answer forwards the callee's answer back to the caller.
func (r *Relay) Answer(from, to string, signal json.RawMessage) error {
	target, ok := r.registry.Lookup(to)
	if !ok {
		r.metrics.RecordDropped(DropUnreachable)
		return ErrUnreachable
	}
	if r.opts.TargetedHangup {
		r.pair(from, to)
	}
	r.deliver(target, Message{Type: EventCallAnswered, From: from, Signal: signal})
	return nil
}

// Partner returns the session id paired with id. Pairs exist only with TargetedHangup.
func (r *Relay) Partner(id string) (string, bool) {
	r.pairsMu.Lock()
	defer r.pairsMu.Unlock()
	p, ok := r.pairs[id]
	return p, ok
}

func (r *Relay) pair(a, b string) {
	r.pairsMu.Lock()
	defer r.pairsMu.Unlock()
	// A new answer replaces any earlier call of either side.
	for _, id := range []string{a, b} {
		if old, ok := r.pairs[id]; ok {
			delete(r.pairs, old)
		}
	}
	r.pairs[a] = b
	r.pairs[b] = a
}

func (r *Relay) unpair(id string) (string, bool) {
	r.pairsMu.Lock()
	defer r.pairsMu.Unlock()
	partner, ok := r.pairs[id]
	if !ok {
		return "", false
	}
	delete(r.pairs, id)
	if r.pairs[partner] == id {
		delete(r.pairs, partner)
	}
	return partner, true
}

func (r *Relay) deliver(p Peer, msg Message) {
	if !p.Send(msg) {
		r.metrics.RecordDropped(DropQueueFull)
		r.logger.Warn("signaling event dropped", "type", msg.Type, "reason", DropQueueFull)
		return
	}
	r.metrics.RecordRelayed(string(msg.Type))
}

type nopMetrics struct{}

func (nopMetrics) SessionOpened()       {}
func (nopMetrics) SessionClosed()       {}
func (nopMetrics) RecordRelayed(string) {}
func (nopMetrics) RecordDropped(string) {}
