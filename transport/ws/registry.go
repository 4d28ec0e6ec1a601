package ws

import (
	"sync"

	"github.com/dmitrymomot/fanout/core/pubsub"
)

// Registry is the live connection table. The transport is its only writer;
// the fanout engine reads it through the pubsub.ConnectionRegistry interface.
type Registry struct {
	mu     sync.RWMutex
	conns  map[int64]*Conn
	nextID int64
}

// NewRegistry creates an empty connection registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[int64]*Conn)}
}

// Add registers a connection and returns its assigned identifier.
func (r *Registry) Add(conn *Conn) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := r.nextID
	r.conns[id] = conn
	return id
}

// Remove drops a connection from the table. Unknown ids are ignored.
func (r *Registry) Remove(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, id)
}

// Resolve returns the live connection for id. A missing entry is a normal
// outcome: the subscriber disconnected since its registration was written.
func (r *Registry) Resolve(id int64) (pubsub.Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[id]
	if !ok {
		return nil, false
	}
	return conn, true
}

// Len returns the number of currently open connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
