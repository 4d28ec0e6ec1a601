// Package rest is the HTTP front door of the fanout service.
//
// It exposes the publish endpoint and health probes:
//
//	GET|POST /_publish?topic=<string>&timestamp=<epoch millis>
//	GET      /health/live
//	GET      /health/ready
//
// The publish body is an arbitrary JSON payload (or empty). A missing topic
// publishes under the wildcard. The response is either
//
//	{"ok":true,"id":"<message id>"}
//
// with status 200, or {"error":"<message>"} with status 400 when message
// construction, the store write, or the subscriber scan fails. Index refresh
// behavior is configured on the store (PUBSUB_INDEX_REFRESH), not per
// request.
package rest
