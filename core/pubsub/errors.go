package pubsub

import "errors"

var (
	// ErrScrollExpired is returned by SubscriberStore implementations when a
	// scan cursor was not renewed within its keep-alive window. The scan
	// cannot be resumed; the caller must restart from a fresh Query.
	ErrScrollExpired = errors.New("scroll cursor expired")

	// ErrScrollNotFound is returned when a cursor does not reference an open
	// scan at all (already cleared or never issued by this store).
	ErrScrollNotFound = errors.New("scroll cursor not found")

	// ErrEmptyTopic is returned when a subscription names no topic.
	ErrEmptyTopic = errors.New("topic must not be empty")
)
