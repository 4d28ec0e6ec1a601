package ws

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/fanout/core/pubsub"
)

// DefaultWriteTimeout bounds a single frame write to a peer.
const DefaultWriteTimeout = 10 * time.Second

// Conn wraps a websocket connection with serialized, deadline-bounded writes.
// Two overlapping fanouts therefore never interleave partial frames on one
// peer, and a peer that stops reading fails its write instead of blocking the
// caller indefinitely.
type Conn struct {
	ws           *websocket.Conn
	mu           sync.Mutex
	writeTimeout time.Duration
}

// NewConn wraps an upgraded websocket connection. A non-positive timeout
// falls back to DefaultWriteTimeout.
func NewConn(wsConn *websocket.Conn, writeTimeout time.Duration) *Conn {
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}
	return &Conn{ws: wsConn, writeTimeout: writeTimeout}
}

// WriteMessage pushes one fanned-out message to the peer.
func (c *Conn) WriteMessage(ctx context.Context, msg *pubsub.Message) error {
	return c.writeFrame(ctx, messageFrame{Type: OpMessage, Data: msg})
}

// writeFrame serializes v as JSON under the write lock, bounded by the write
// timeout or the context deadline, whichever ends first.
func (c *Conn) writeFrame(ctx context.Context, v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	deadline := time.Now().Add(c.writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.ws.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return c.ws.WriteJSON(v)
}

// Close closes the underlying websocket connection.
func (c *Conn) Close() error {
	return c.ws.Close()
}
