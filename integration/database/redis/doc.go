// Package redis provides Redis client initialization with connection
// validation and retry logic, plus the durable checkpoint sink used by the
// fanout engine.
//
// # Client
//
// Connect validates the connection URL, attempts the connection with retries,
// and verifies it with a ping before returning the client:
//
//	cfg := redis.Config{ConnectionURL: "redis://localhost:6379/0"}
//	client, err := redis.Connect(ctx, cfg)
//
// Healthcheck returns a probe function performing a ping, suitable for
// readiness endpoints. Both redis:// and rediss:// URL schemes are supported.
//
// # Checkpoint store
//
// CheckpointStore implements pubsub.CheckpointStore. Each flush rewrites the
// scope's checkpoint list inside a MULTI/EXEC transaction, so a concurrent
// reader observes either the previous flush or the new one in full, never a
// torn intermediate state:
//
//	checkpoints := redis.NewCheckpointStore(client)
//	err := checkpoints.Flush(ctx, "news", ids)
//
// # Errors
//
// Domain errors are checked with errors.Is(): ErrEmptyConnectionURL,
// ErrFailedToParseRedisConnString, ErrRedisNotReady, ErrHealthcheckFailed.
package redis
