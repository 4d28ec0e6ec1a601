package pubsub_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fanout/core/pubsub"
)

type stubConn struct {
	mu       sync.Mutex
	writes   []*pubsub.Message
	failWith error
	onWrite  func()
}

func (c *stubConn) WriteMessage(ctx context.Context, msg *pubsub.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.onWrite != nil {
		c.onWrite()
	}
	if c.failWith != nil {
		return c.failWith
	}
	c.writes = append(c.writes, msg)
	return nil
}

func (c *stubConn) Writes() []*pubsub.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*pubsub.Message, len(c.writes))
	copy(out, c.writes)
	return out
}

type stubRegistry struct {
	conns map[int64]*stubConn
}

func (r *stubRegistry) Resolve(id int64) (pubsub.Conn, bool) {
	conn, ok := r.conns[id]
	return conn, ok
}

// countingStore wraps a SubscriberStore to count page fetches.
type countingStore struct {
	pubsub.SubscriberStore
	queries   atomic.Int64
	continues atomic.Int64
}

func (s *countingStore) Query(ctx context.Context, topic string, pageSize int, keepAlive time.Duration) (pubsub.Page, error) {
	s.queries.Add(1)
	return s.SubscriberStore.Query(ctx, topic, pageSize, keepAlive)
}

func (s *countingStore) ContinueScroll(ctx context.Context, cursor pubsub.ScrollCursor, keepAlive time.Duration) (pubsub.Page, error) {
	s.continues.Add(1)
	return s.SubscriberStore.ContinueScroll(ctx, cursor, keepAlive)
}

func subscribe(t *testing.T, store *pubsub.MemoryStore, topic string, connID int64) string {
	t.Helper()
	id, err := store.PutSubscription(context.Background(), pubsub.SubscriberRecord{
		Topic:        topic,
		ConnectionID: connID,
	})
	require.NoError(t, err)
	return id
}

func TestDriver_Fanout_EmptyTopic(t *testing.T) {
	t.Parallel()

	memory := pubsub.NewMemoryStore()
	store := &countingStore{SubscriberStore: memory}
	registry := &stubRegistry{conns: map[int64]*stubConn{}}
	driver := pubsub.NewDriver(store, registry, memory)

	msg := pubsub.NewMessage("ghost-town", nil, 0)
	err := driver.Fanout(context.Background(), "ghost-town", msg)
	require.NoError(t, err)

	assert.EqualValues(t, 1, store.queries.Load(), "empty topic needs exactly one page fetch")
	assert.EqualValues(t, 0, store.continues.Load())
	assert.Empty(t, memory.Checkpoints("ghost-town"))
}

func TestDriver_Fanout_DeliversToLiveConnections(t *testing.T) {
	t.Parallel()

	memory := pubsub.NewMemoryStore()
	subscribe(t, memory, "news", 1)
	subscribe(t, memory, "news", 2)
	subscribe(t, memory, "news", 3) // never connected

	live1 := &stubConn{}
	live2 := &stubConn{}
	registry := &stubRegistry{conns: map[int64]*stubConn{1: live1, 2: live2}}
	driver := pubsub.NewDriver(memory, registry, memory)

	msg := pubsub.NewMessage("news", []byte(`{"a":1}`), 1700000000000)
	require.NoError(t, driver.Fanout(context.Background(), "news", msg))

	for _, conn := range []*stubConn{live1, live2} {
		writes := conn.Writes()
		require.Len(t, writes, 1, "each live connection receives exactly one write")
		assert.Equal(t, int64(1700000000000), writes[0].Timestamp)
		assert.Equal(t, map[string]any{"a": float64(1)}, writes[0].Payload)
	}
}

func TestDriver_Fanout_SkipsStaleSubscribersSilently(t *testing.T) {
	t.Parallel()

	memory := pubsub.NewMemoryStore()
	subscribe(t, memory, "news", 42)

	registry := &stubRegistry{conns: map[int64]*stubConn{}}
	driver := pubsub.NewDriver(memory, registry, memory)

	err := driver.Fanout(context.Background(), "news", pubsub.NewMessage("news", nil, 0))
	assert.NoError(t, err, "a stale subscriber is not an error")
}

func TestDriver_Fanout_WriteFailureIsIsolated(t *testing.T) {
	t.Parallel()

	memory := pubsub.NewMemoryStore()
	subscribe(t, memory, "news", 1)
	subscribe(t, memory, "news", 2)

	broken := &stubConn{failWith: errors.New("connection reset")}
	healthy := &stubConn{}
	registry := &stubRegistry{conns: map[int64]*stubConn{1: broken, 2: healthy}}
	driver := pubsub.NewDriver(memory, registry, memory)

	err := driver.Fanout(context.Background(), "news", pubsub.NewMessage("news", nil, 0))
	require.NoError(t, err, "one broken connection must not abort the fanout")
	assert.Len(t, healthy.Writes(), 1)
}

func TestDriver_Fanout_CheckpointOrderAndFlush(t *testing.T) {
	t.Parallel()

	memory := pubsub.NewMemoryStore()
	var want []string
	for i := int64(1); i <= 5; i++ {
		want = append(want, subscribe(t, memory, "audit", i))
	}

	registry := &stubRegistry{conns: map[int64]*stubConn{}}
	driver := pubsub.NewDriver(memory, registry, memory, pubsub.WithPageSize(2))

	require.NoError(t, driver.Fanout(context.Background(), "audit", pubsub.NewMessage("audit", nil, 0)))
	assert.Equal(t, want, memory.Checkpoints("audit"), "checkpoints follow page-then-in-page order")
}

func TestDriver_Fanout_PagingShape(t *testing.T) {
	t.Parallel()

	memory := pubsub.NewMemoryStore()
	conn := &stubConn{}
	for i := 0; i < 250; i++ {
		subscribe(t, memory, "bulk", 7)
	}

	store := &countingStore{SubscriberStore: memory}
	registry := &stubRegistry{conns: map[int64]*stubConn{7: conn}}
	driver := pubsub.NewDriver(store, registry, memory, pubsub.WithPageSize(100))

	require.NoError(t, driver.Fanout(context.Background(), "bulk", pubsub.NewMessage("bulk", nil, 0)))

	// 100 + 100 + 50, then one empty page to terminate.
	assert.EqualValues(t, 1, store.queries.Load())
	assert.EqualValues(t, 3, store.continues.Load())
	assert.Len(t, conn.Writes(), 250)
	assert.Len(t, memory.Checkpoints("bulk"), 250)
}

func TestDriver_Fanout_CursorExpiry(t *testing.T) {
	t.Parallel()

	// Each clock reading jumps past the keep-alive window, so the first
	// scroll continuation always finds an expired cursor.
	var tick atomic.Int64
	base := time.Now()
	clock := func() time.Time {
		return base.Add(time.Duration(tick.Add(1)) * 2 * time.Minute)
	}

	memory := pubsub.NewMemoryStore(pubsub.WithMemoryClock(clock))
	subscribe(t, memory, "news", 1)
	subscribe(t, memory, "news", 2)

	conn := &stubConn{}
	store := &countingStore{SubscriberStore: memory}
	registry := &stubRegistry{conns: map[int64]*stubConn{1: conn}}
	driver := pubsub.NewDriver(store, registry, memory,
		pubsub.WithPageSize(1),
		pubsub.WithScrollKeepAlive(time.Minute))

	err := driver.Fanout(context.Background(), "news", pubsub.NewMessage("news", nil, 0))
	require.Error(t, err)
	assert.ErrorIs(t, err, pubsub.ErrScrollExpired)
	assert.EqualValues(t, 1, store.continues.Load(), "no fetches after the cursor expired")
	assert.Len(t, conn.Writes(), 1, "first page was still delivered")
	assert.Len(t, memory.Checkpoints("news"), 1, "progress before expiry is flushed")
}

func TestDriver_Fanout_CancellationAtPageBoundary(t *testing.T) {
	t.Parallel()

	memory := pubsub.NewMemoryStore()
	id1 := subscribe(t, memory, "news", 1)
	subscribe(t, memory, "news", 2)
	subscribe(t, memory, "news", 3)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The delivery itself cancels the request; the current page still
	// finishes, then the scan is abandoned with progress flushed.
	conn := &stubConn{onWrite: cancel}
	store := &countingStore{SubscriberStore: memory}
	registry := &stubRegistry{conns: map[int64]*stubConn{1: conn}}
	driver := pubsub.NewDriver(store, registry, memory, pubsub.WithPageSize(1))

	err := driver.Fanout(ctx, "news", pubsub.NewMessage("news", nil, 0))
	require.ErrorIs(t, err, context.Canceled)
	assert.EqualValues(t, 0, store.continues.Load())
	assert.Equal(t, []string{id1}, memory.Checkpoints("news"))
}
