package pubsub

import "context"

// Conn is a live, writable connection. Implementations must serialize writes
// to the same connection and bound each write with a deadline, so a stuck
// peer fails the write instead of blocking a fanout indefinitely.
type Conn interface {
	WriteMessage(ctx context.Context, msg *Message) error
}

// ConnectionRegistry maps numeric connection identifiers to live connections.
// The transport layer owns connection lifecycle and is the only writer; the
// fanout engine only resolves ids, holding each resolved handle no longer
// than a single write.
type ConnectionRegistry interface {
	// Resolve returns the live connection for id. A missing entry is a
	// normal outcome, not an error: the subscriber disconnected or never
	// connected on this node.
	Resolve(id int64) (Conn, bool)
}
