// Package opensearch provides OpenSearch client initialization with immediate
// connectivity verification, plus the search-backed subscriber store used by
// the fanout engine.
//
// # Client
//
// New creates a client from Config and fails fast when the cluster is
// unreachable, so broken clients are never returned to callers:
//
//	cfg := opensearch.Config{
//		Addresses: []string{"https://localhost:9200"},
//		Username:  "admin",
//		Password:  "admin",
//	}
//	client, err := opensearch.New(ctx, cfg)
//
// Healthcheck returns a probe function suitable for readiness endpoints; it
// calls the cluster info API and wraps failures in ErrHealthcheckFailed.
//
// # Store
//
// Store implements pubsub.SubscriberStore on a single index holding both
// subscription and message documents, discriminated by a "kind" field. Topic
// scans use the search scroll API: the first page opens a server-side scan
// context with a keep-alive window, following pages renew it, and a scan
// continued past expiry surfaces pubsub.ErrScrollExpired so the caller can
// restart from scratch.
//
//	store := opensearch.NewStore(client, opensearch.StoreConfig{Index: "pubsub"})
//	page, err := store.Query(ctx, "news", 100, time.Minute)
//
// # Errors
//
//   - ErrConnectionFailed: client construction failed
//   - ErrHealthcheckFailed: cluster unreachable or unhealthy
//   - ErrQueryFailed: a search, index, or delete request was rejected
//
// All wrap the underlying client error for errors.Is / errors.As checks.
package opensearch
