// Package hub implements the downstream subscriber registry.
//
// The registry:
//   - Owns the membership set of live subscriber connections
//   - Broadcasts each payload best-effort to every member
//   - Isolates failures: one broken subscriber is evicted without
//     touching delivery to the others
package hub

import (
	"log/slog"
	"sync"
)

// Conn is the send/close capability the registry needs from a
// subscriber connection. The registry does not own the transport.
type Conn interface {
	ID() string
	WriteMessage(data []byte) error
	Close() error
}

// Registry is the set of live downstream subscriber connections.
type Registry struct {
	logger *slog.Logger

	mu      sync.Mutex
	members map[Conn]struct{}
}

// NewRegistry creates an empty subscriber registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		logger:  logger,
		members: make(map[Conn]struct{}),
	}
}

// Add inserts a connection into the membership set.
func (r *Registry) Add(c Conn) {
	r.mu.Lock()
	r.members[c] = struct{}{}
	n := len(r.members)
	r.mu.Unlock()

	r.logger.Info("subscriber connected", "id", c.ID(), "subscribers", n)
}

// Remove deletes a connection from the membership set and closes it.
// Removing an absent connection is a no-op.
func (r *Registry) Remove(c Conn) {
	r.mu.Lock()
	_, present := r.members[c]
	delete(r.members, c)
	n := len(r.members)
	r.mu.Unlock()

	if present {
		c.Close()
		r.logger.Info("subscriber disconnected", "id", c.ID(), "subscribers", n)
	}
}

// Broadcast sends payload to every member. A failed send marks that
// connection for eviction but never aborts the pass; marked connections
// are removed and closed after delivery to the rest completes.
func (r *Registry) Broadcast(payload []byte) {
	r.mu.Lock()

	var failed []Conn
	for c := range r.members {
		if err := c.WriteMessage(payload); err != nil {
			r.logger.Error("broadcast to subscriber failed", "id", c.ID(), "error", err)
			failed = append(failed, c)
		}
	}
	for _, c := range failed {
		delete(r.members, c)
	}
	n := len(r.members)

	r.mu.Unlock()

	for _, c := range failed {
		c.Close()
	}
	if len(failed) > 0 {
		r.logger.Warn("evicted failed subscribers", "evicted", len(failed), "subscribers", n)
	}
}

// Count returns the number of live subscribers.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}
