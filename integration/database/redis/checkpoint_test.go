package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fanout/integration/database/redis"
)

func newTestClient(t *testing.T) *goredis.Client {
	t.Helper()

	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestConnect_EmptyURL(t *testing.T) {
	t.Parallel()

	_, err := redis.Connect(context.Background(), redis.Config{})
	assert.ErrorIs(t, err, redis.ErrEmptyConnectionURL)
}

func TestConnect_MalformedURL(t *testing.T) {
	t.Parallel()

	_, err := redis.Connect(context.Background(), redis.Config{ConnectionURL: "not-a-redis-url"})
	assert.ErrorIs(t, err, redis.ErrFailedToParseRedisConnString)
}

func TestConnect_AndHealthcheck(t *testing.T) {
	t.Parallel()

	srv := miniredis.RunT(t)
	client, err := redis.Connect(context.Background(), redis.Config{
		ConnectionURL:  "redis://" + srv.Addr(),
		RetryAttempts:  1,
		ConnectTimeout: 5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	assert.NoError(t, redis.Healthcheck(client)(context.Background()))
}

func TestCheckpointStore_FlushAndRead(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := redis.NewCheckpointStore(newTestClient(t))

	require.NoError(t, store.Flush(ctx, "news", []string{"a", "b", "c"}))

	ids, err := store.Checkpoints(ctx, "news")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids)

	last, err := store.Last(ctx, "news")
	require.NoError(t, err)
	assert.Equal(t, "c", last)
}

func TestCheckpointStore_FlushReplacesPreviousState(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := redis.NewCheckpointStore(newTestClient(t))

	require.NoError(t, store.Flush(ctx, "news", []string{"a", "b"}))
	require.NoError(t, store.Flush(ctx, "news", []string{"x"}))

	ids, err := store.Checkpoints(ctx, "news")
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, ids, "a flush replaces the scope state, it never appends")
}

func TestCheckpointStore_EmptyFlushClearsScope(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := redis.NewCheckpointStore(newTestClient(t))

	require.NoError(t, store.Flush(ctx, "news", []string{"a"}))
	require.NoError(t, store.Flush(ctx, "news", nil))

	ids, err := store.Checkpoints(ctx, "news")
	require.NoError(t, err)
	assert.Empty(t, ids)

	last, err := store.Last(ctx, "news")
	require.NoError(t, err)
	assert.Empty(t, last)
}

func TestCheckpointStore_ScopesAreIndependent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := redis.NewCheckpointStore(newTestClient(t))

	require.NoError(t, store.Flush(ctx, "news", []string{"a"}))
	require.NoError(t, store.Flush(ctx, "sports", []string{"z"}))

	news, err := store.Checkpoints(ctx, "news")
	require.NoError(t, err)
	sports, err := store.Checkpoints(ctx, "sports")
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, news)
	assert.Equal(t, []string{"z"}, sports)
}

func TestCheckpointStore_CustomPrefix(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)
	store := redis.NewCheckpointStore(client, redis.WithCheckpointPrefix("fanout:ckpt:"))

	require.NoError(t, store.Flush(ctx, "news", []string{"a"}))

	ids, err := client.LRange(ctx, "fanout:ckpt:news", 0, -1).Result()
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids)
}
