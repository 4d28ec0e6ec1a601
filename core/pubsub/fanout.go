package pubsub

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

const (
	// DefaultPageSize is the number of subscriber records fetched per scan page.
	DefaultPageSize = 100

	// DefaultScrollKeepAlive is the window within which the next page must be
	// requested before the store invalidates the scan cursor.
	DefaultScrollKeepAlive = 60 * time.Second
)

// Driver orchestrates the scroll-then-deliver loop: fetch a page of
// subscriber records for the topic, resolve each record to a live connection,
// push the message to connections that are still open, checkpoint progress,
// and stop when a page comes back empty.
type Driver struct {
	store       SubscriberStore
	registry    ConnectionRegistry
	checkpoints CheckpointStore
	pageSize    int
	keepAlive   time.Duration
	logger      *slog.Logger
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithPageSize sets how many subscriber records are fetched per page.
func WithPageSize(n int) DriverOption {
	return func(d *Driver) {
		if n > 0 {
			d.pageSize = n
		}
	}
}

// WithScrollKeepAlive sets the cursor keep-alive window requested per page.
func WithScrollKeepAlive(ttl time.Duration) DriverOption {
	return func(d *Driver) {
		if ttl > 0 {
			d.keepAlive = ttl
		}
	}
}

// WithDriverLogger sets the logger for delivery diagnostics.
func WithDriverLogger(logger *slog.Logger) DriverOption {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDriver creates a fanout driver. The checkpoint store may be nil, which
// disables durable progress tracking.
func NewDriver(store SubscriberStore, registry ConnectionRegistry, checkpoints CheckpointStore, opts ...DriverOption) *Driver {
	d := &Driver{
		store:       store,
		registry:    registry,
		checkpoints: checkpoints,
		pageSize:    DefaultPageSize,
		keepAlive:   DefaultScrollKeepAlive,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Fanout delivers msg to every live connection subscribed to topic.
//
// A record whose connection id resolves to nothing is skipped silently, and a
// write failure on one connection is logged without affecting the rest of the
// scan. A cursor that expires mid-scan surfaces as a recoverable error
// wrapping ErrScrollExpired; the caller may restart the fanout from scratch,
// accepting that subscribers already reached can be delivered to again.
//
// Cancellation is cooperative at page boundaries: the page in flight is
// delivered to completion, then accumulated progress is flushed and ctx.Err()
// is returned.
func (d *Driver) Fanout(ctx context.Context, topic string, msg *Message) error {
	page, err := d.store.Query(ctx, topic, d.pageSize, d.keepAlive)
	if err != nil {
		return fmt.Errorf("open subscriber scan for topic %q: %w", topic, err)
	}

	tracker := NewTracker(d.checkpoints, WithTrackerLogger(d.logger))
	tracker.Begin(topic)

	cursor := page.Cursor
	delivered, skipped := 0, 0

	for {
		for _, rec := range page.Records {
			tracker.Checkpoint(rec.ID)

			conn, ok := d.registry.Resolve(rec.ConnectionID)
			if !ok {
				skipped++
				continue
			}

			if err := conn.WriteMessage(ctx, msg); err != nil {
				d.logger.WarnContext(ctx, "subscriber delivery failed",
					slog.String("topic", topic),
					slog.String("subscription_id", rec.ID),
					slog.Int64("connection_id", rec.ConnectionID),
					slog.Any("error", err))
				continue
			}
			delivered++
		}

		if len(page.Records) == 0 {
			break
		}

		if err := ctx.Err(); err != nil {
			d.finish(ctx, tracker, cursor)
			return err
		}

		page, err = d.store.ContinueScroll(ctx, cursor, d.keepAlive)
		if err != nil {
			d.finish(ctx, tracker, "")
			return fmt.Errorf("continue subscriber scan for topic %q: %w", topic, err)
		}
		if page.Cursor != "" {
			cursor = page.Cursor
		}
	}

	d.finish(ctx, tracker, cursor)

	d.logger.DebugContext(ctx, "fanout complete",
		slog.String("topic", topic),
		slog.Int("delivered", delivered),
		slog.Int("skipped", skipped))
	return nil
}

// finish flushes checkpoint progress and releases the scan context. Both are
// best-effort and must survive a canceled request context.
func (d *Driver) finish(ctx context.Context, tracker *Tracker, cursor ScrollCursor) {
	ctx = context.WithoutCancel(ctx)
	_ = tracker.Flush(ctx)
	if cursor != "" {
		_ = d.store.ClearScroll(ctx, cursor)
	}
}
