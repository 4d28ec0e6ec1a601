package pubsub

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore implements SubscriberStore and CheckpointStore in memory for
// testing and local development. Scans take a snapshot of the matching
// records at Query time and honor cursor keep-alive expiry, mirroring the
// behavior of the search-backed production store.
type MemoryStore struct {
	mu            sync.Mutex
	subscriptions []SubscriberRecord
	messages      map[string]*Message
	scrolls       map[ScrollCursor]*memoryScroll
	checkpoints   map[string][]string

	now func() time.Time
}

type memoryScroll struct {
	records  []SubscriberRecord
	pos      int
	pageSize int
	deadline time.Time
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithMemoryClock overrides the time source used for cursor expiry.
func WithMemoryClock(now func() time.Time) MemoryStoreOption {
	return func(ms *MemoryStore) {
		if now != nil {
			ms.now = now
		}
	}
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	ms := &MemoryStore{
		messages:    make(map[string]*Message),
		scrolls:     make(map[ScrollCursor]*memoryScroll),
		checkpoints: make(map[string][]string),
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(ms)
	}

	return ms
}

// Query opens a scan over subscriptions with the given topic. The TopicAll
// wildcard matches every subscription here; the production store delegates
// that decision to the search engine.
func (ms *MemoryStore) Query(ctx context.Context, topic string, pageSize int, keepAlive time.Duration) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	var matched []SubscriberRecord
	for _, rec := range ms.subscriptions {
		if topic == TopicAll || rec.Topic == topic {
			matched = append(matched, rec)
		}
	}

	cursor := ScrollCursor(uuid.New().String())
	scroll := &memoryScroll{
		records:  matched,
		pageSize: pageSize,
		deadline: ms.now().Add(keepAlive),
	}
	ms.scrolls[cursor] = scroll

	return Page{Records: scroll.next(), Cursor: cursor}, nil
}

// ContinueScroll returns the next page of an open scan, refreshing the
// cursor's keep-alive window.
func (ms *MemoryStore) ContinueScroll(ctx context.Context, cursor ScrollCursor, keepAlive time.Duration) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	scroll, ok := ms.scrolls[cursor]
	if !ok {
		return Page{}, fmt.Errorf("continue scroll %q: %w", cursor, ErrScrollNotFound)
	}
	if ms.now().After(scroll.deadline) {
		delete(ms.scrolls, cursor)
		return Page{}, fmt.Errorf("continue scroll %q: %w", cursor, ErrScrollExpired)
	}

	scroll.deadline = ms.now().Add(keepAlive)
	return Page{Records: scroll.next(), Cursor: cursor}, nil
}

// ClearScroll releases a scan context. Unknown cursors are ignored.
func (ms *MemoryStore) ClearScroll(ctx context.Context, cursor ScrollCursor) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.scrolls, cursor)
	return nil
}

// IndexMessage stores a copy of the message and returns its generated id.
func (ms *MemoryStore) IndexMessage(ctx context.Context, msg *Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	id := uuid.New().String()
	stored := *msg
	stored.ID = id
	ms.messages[id] = &stored
	return id, nil
}

// Message returns a stored message by id.
func (ms *MemoryStore) Message(id string) (*Message, bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	msg, ok := ms.messages[id]
	if !ok {
		return nil, false
	}
	out := *msg
	return &out, true
}

// PutSubscription records a subscription, generating an id when the record
// carries none. Insertion order is preserved for scans.
func (ms *MemoryStore) PutSubscription(ctx context.Context, rec SubscriberRecord) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if rec.Topic == "" {
		return "", ErrEmptyTopic
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	ms.subscriptions = append(ms.subscriptions, rec)
	return rec.ID, nil
}

// DeleteSubscriptions removes every subscription held by connectionID,
// narrowed to one topic when topic is non-empty.
func (ms *MemoryStore) DeleteSubscriptions(ctx context.Context, topic string, connectionID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	kept := ms.subscriptions[:0]
	for _, rec := range ms.subscriptions {
		if rec.ConnectionID == connectionID && (topic == "" || rec.Topic == topic) {
			continue
		}
		kept = append(kept, rec)
	}
	ms.subscriptions = kept
	return nil
}

// Flush implements CheckpointStore: the scope's checkpoint set is replaced
// in a single critical section, so readers never observe a partial flush.
func (ms *MemoryStore) Flush(ctx context.Context, scope string, ids []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	out := make([]string, len(ids))
	copy(out, ids)
	ms.checkpoints[scope] = out
	return nil
}

// Checkpoints returns the durable checkpoint ids for a scope.
func (ms *MemoryStore) Checkpoints(scope string) []string {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	out := make([]string, len(ms.checkpoints[scope]))
	copy(out, ms.checkpoints[scope])
	return out
}

func (s *memoryScroll) next() []SubscriberRecord {
	if s.pos >= len(s.records) {
		return nil
	}
	end := s.pos + s.pageSize
	if end > len(s.records) {
		end = len(s.records)
	}
	page := make([]SubscriberRecord, end-s.pos)
	copy(page, s.records[s.pos:end])
	s.pos = end
	return page
}
