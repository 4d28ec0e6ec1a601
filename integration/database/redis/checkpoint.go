package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultCheckpointPrefix = "checkpoint:"

// CheckpointStore persists fanout scan checkpoints in Redis. Each scope maps
// to one list of processed subscription ids plus a last-position key, both
// rewritten atomically on every flush.
type CheckpointStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// CheckpointStoreOption configures a CheckpointStore.
type CheckpointStoreOption func(*CheckpointStore)

// WithCheckpointPrefix sets the key prefix for checkpoint data.
func WithCheckpointPrefix(prefix string) CheckpointStoreOption {
	return func(s *CheckpointStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithCheckpointTTL expires checkpoint keys after the given duration.
// Zero keeps them forever.
func WithCheckpointTTL(ttl time.Duration) CheckpointStoreOption {
	return func(s *CheckpointStore) {
		s.ttl = ttl
	}
}

// NewCheckpointStore creates a checkpoint sink on the given client.
func NewCheckpointStore(client *redis.Client, opts ...CheckpointStoreOption) *CheckpointStore {
	s := &CheckpointStore{
		client: client,
		prefix: defaultCheckpointPrefix,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Flush replaces the scope's durable checkpoint state with ids, preserving
// their order. The whole replacement runs inside MULTI/EXEC: a concurrent
// reader sees either the previous flush or this one in full.
func (s *CheckpointStore) Flush(ctx context.Context, scope string, ids []string) error {
	listKey := s.prefix + scope
	lastKey := listKey + ":last"

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, listKey, lastKey)
		if len(ids) > 0 {
			args := make([]any, len(ids))
			for i, id := range ids {
				args[i] = id
			}
			pipe.RPush(ctx, listKey, args...)
			pipe.Set(ctx, lastKey, ids[len(ids)-1], s.ttl)
			if s.ttl > 0 {
				pipe.Expire(ctx, listKey, s.ttl)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("flush checkpoints for scope %q: %w", scope, err)
	}
	return nil
}

// Checkpoints returns the durable checkpoint ids for a scope in flush order.
func (s *CheckpointStore) Checkpoints(ctx context.Context, scope string) ([]string, error) {
	ids, err := s.client.LRange(ctx, s.prefix+scope, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read checkpoints for scope %q: %w", scope, err)
	}
	return ids, nil
}

// Last returns the last processed id for a scope, or empty when the scope has
// no durable checkpoints.
func (s *CheckpointStore) Last(ctx context.Context, scope string) (string, error) {
	last, err := s.client.Get(ctx, s.prefix+scope+":last").Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read last checkpoint for scope %q: %w", scope, err)
	}
	return last, nil
}
