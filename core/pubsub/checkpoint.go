package pubsub

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

// Tracker accumulates scan-progress checkpoints for one in-progress fanout
// and makes them durable on explicit flush. Each fanout invocation owns its
// own Tracker, so concurrent fanouts never share a pending set.
//
// Checkpointing is observational bookkeeping: it records intent to process,
// not confirmed delivery, and never gates delivery itself.
type Tracker struct {
	store  CheckpointStore
	logger *slog.Logger

	mu      sync.Mutex
	scope   string
	pending []string
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithTrackerLogger sets the logger used to report flush failures.
func WithTrackerLogger(logger *slog.Logger) TrackerOption {
	return func(t *Tracker) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewTracker creates a tracker flushing into the given store. A nil store is
// allowed and turns Flush into a no-op, for callers that do not need durable
// checkpoints.
func NewTracker(store CheckpointStore, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		store:  store,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Begin marks scope as the active checkpoint scope and discards any pending
// entries from a previous scan.
func (t *Tracker) Begin(scope string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scope = scope
	t.pending = t.pending[:0]
}

// Checkpoint records id as the most recently processed entry in the active
// scope. Order of calls is preserved through to Flush.
func (t *Tracker) Checkpoint(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = append(t.pending, id)
}

// Pending returns a copy of the not-yet-durable checkpoint ids in the order
// they were recorded.
func (t *Tracker) Pending() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.pending))
	copy(out, t.pending)
	return out
}

// Flush makes all pending checkpoints durable and clears the pending set.
// On failure the pending set is kept so a later flush can retry; prior
// durable state is never corrupted because the store's Flush is atomic.
func (t *Tracker) Flush(ctx context.Context) error {
	t.mu.Lock()
	scope := t.scope
	ids := make([]string, len(t.pending))
	copy(ids, t.pending)
	t.mu.Unlock()

	if t.store == nil {
		return nil
	}

	if err := t.store.Flush(ctx, scope, ids); err != nil {
		t.logger.WarnContext(ctx, "checkpoint flush failed",
			slog.String("scope", scope),
			slog.Int("pending", len(ids)),
			slog.Any("error", err))
		return err
	}

	t.mu.Lock()
	t.pending = t.pending[:0]
	t.mu.Unlock()
	return nil
}
