// Package pubsub implements the topic fanout engine: a published message is
// recorded in a document store, then pushed to every live connection whose
// subscription matches the topic.
//
// The engine scroll-scans the subscriber registry page by page, so subscriber
// sets of arbitrary size are never loaded into memory at once. Delivery is
// best-effort push-while-connected: a subscriber whose connection has gone
// away since its registration was written is skipped silently, and a failed
// write to one connection never affects the others.
//
// # Architecture
//
// The package is built around three narrow interfaces implemented elsewhere:
//
//   - SubscriberStore: paginated, cursor-based scan over subscription
//     documents plus message indexing (integration/database/opensearch in
//     production, MemoryStore for tests and local development).
//   - ConnectionRegistry: read-only lookup from a numeric connection id to a
//     live, writable connection (transport/ws owns connection lifecycle).
//   - CheckpointStore: durable sink for scan-progress checkpoints
//     (integration/database/redis in production).
//
// On top of those, Publisher builds the message envelope and hands it to
// Driver, which runs the scroll-then-deliver loop and records progress
// through a Tracker.
//
// # Usage
//
//	store := opensearch.NewStore(client)
//	driver := pubsub.NewDriver(store, registry, tracker)
//	publisher := pubsub.NewPublisher(store, driver)
//
//	msg, err := publisher.Publish(ctx, "news", body, 0)
//
// # Delivery semantics
//
// Delivery is at-most-best-effort. Checkpoints record intent to process, not
// confirmed delivery, and re-running a fanout after a partial failure may
// deliver again to subscribers already reached. Checkpoint flush failures
// degrade auditability only; they never fail the fanout that triggered them.
package pubsub
