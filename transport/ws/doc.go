// Package ws is the WebSocket front door of the fanout service. It owns the
// live connection registry the fanout engine resolves delivery targets from,
// and speaks a small JSON frame protocol for subscribe, unsubscribe, and
// publish operations.
//
// Connection lifecycle belongs to this package alone: the handler registers a
// connection on upgrade and removes it (and its subscription documents,
// best-effort) when the read loop ends. The fanout engine only ever borrows a
// connection for the duration of one write.
//
// # Protocol
//
// Inbound frames:
//
//	{"type":"subscribe","topic":"news"}
//	{"type":"unsubscribe","topic":"news"}
//	{"type":"publish","topic":"news","data":{"any":"json"}}
//
// Outbound frames are acks, errors, and deliveries:
//
//	{"type":"ack","action":"subscribe","topic":"news","id":"<subscription id>"}
//	{"type":"error","message":"..."}
//	{"type":"message","data":{"topic":"news","timestamp":...,"message":{...}}}
//
// Writes to one connection are serialized and deadline-bounded, so a stalled
// peer fails its write instead of wedging a fanout or the read loop's acks.
package ws
