package pubsub

import (
	"context"
	"time"
)

// ScrollCursor is an opaque, time-bounded handle for a server-side scan.
// The store invalidates a cursor that is not used again within its keep-alive
// window; continuing past invalidation fails with ErrScrollExpired.
type ScrollCursor string

// Page is one batch of subscriber records together with the cursor for the
// next batch. An empty Records slice signals the end of the scan.
type Page struct {
	Records []SubscriberRecord
	Cursor  ScrollCursor
}

// SubscriberStore is the persistent registry of subscriptions and messages.
// The fanout engine depends only on this scan abstraction; any indexed store
// can sit behind it via a pagination adapter.
type SubscriberStore interface {
	// Query opens a scan over all subscriptions whose topic equals the given
	// filter value and returns the first page. The keepAlive duration is the
	// window within which the next page must be requested before the returned
	// cursor expires.
	Query(ctx context.Context, topic string, pageSize int, keepAlive time.Duration) (Page, error)

	// ContinueScroll fetches the next page of an open scan. Returns
	// ErrScrollExpired (wrapped) when the cursor aged out; the scan cannot be
	// resumed and must be restarted from Query.
	ContinueScroll(ctx context.Context, cursor ScrollCursor, keepAlive time.Duration) (Page, error)

	// ClearScroll releases the server-side scan context early. Best-effort;
	// an already-expired cursor is not an error.
	ClearScroll(ctx context.Context, cursor ScrollCursor) error

	// IndexMessage writes a message document and returns its store-assigned
	// identifier.
	IndexMessage(ctx context.Context, msg *Message) (string, error)

	// PutSubscription records a subscription and returns its identifier.
	PutSubscription(ctx context.Context, rec SubscriberRecord) (string, error)

	// DeleteSubscriptions removes every subscription held by the given
	// connection, optionally narrowed to one topic (empty topic means all).
	DeleteSubscriptions(ctx context.Context, topic string, connectionID int64) error
}

// CheckpointStore is the durable sink for scan-progress checkpoints. Flush
// must be atomic: a concurrent reader observes either the pre-flush or the
// post-flush state, never a partial write.
type CheckpointStore interface {
	Flush(ctx context.Context, scope string, ids []string) error
}
