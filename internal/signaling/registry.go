package signaling

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Peer is one live connection as seen by the relay.
type Peer interface {
	// Send queues msg for delivery without blocking. It returns false when the
	// message was dropped because the peer is closed or its queue is full.
	Send(msg Message) bool
}

// Registry maps session ids to live peers. Ids are "<seq>-<random>": the
// sequence number is never reused during the life of the process and the
// random suffix keeps ids from being guessed.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]Peer
	seq      atomic.Uint64
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]Peer)}
}

// Register stores p under a fresh session id and returns the id.
func (r *Registry) Register(p Peer) string {
	id := r.NewID()
	r.Add(id, p)
	return id
}

// NewID reserves a session id without making it visible. Pair it with Add.
func (r *Registry) NewID() string {
	return fmt.Sprintf("%d-%s", r.seq.Add(1), uuid.NewString()[:8])
}

// Add stores p under an id obtained from NewID.
func (r *Registry) Add(id string, p Peer) {
	r.mu.Lock()
	r.sessions[id] = p
	r.mu.Unlock()
}

// Unregister removes id. It reports whether the id was registered.
func (r *Registry) Unregister(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

func (r *Registry) Lookup(id string) (Peer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.sessions[id]
	return p, ok
}

// Others returns every registered peer except the one under id.
func (r *Registry) Others(id string) []Peer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Peer, 0, len(r.sessions))
	for sid, p := range r.sessions {
		if sid != id {
			out = append(out, p)
		}
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
