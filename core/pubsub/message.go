package pubsub

import (
	"encoding/json"
	"time"
)

// TopicAll is the wildcard topic used when a publish request names no topic.
// It is passed through to the store filter literally; whether the store
// treats it as a match-all or a literal value is the store's concern.
const TopicAll = "*"

// Message is one published message. The ID is assigned by the store when the
// document is written, never by the engine; a Message that has not been
// persisted yet carries an empty ID. Payload is nil when the raw request body
// was not valid JSON — publishing never fails on a malformed body.
type Message struct {
	ID        string         `json:"id,omitempty"`
	Topic     string         `json:"topic"`
	Timestamp int64          `json:"timestamp"`
	Payload   map[string]any `json:"message"`
}

// NewMessage builds a message envelope for a publish request. The timestamp
// defaults to the current time in epoch millis unless overridden. A raw
// payload that does not parse as a JSON object is kept as nil.
func NewMessage(topic string, rawPayload []byte, timestampOverride int64) *Message {
	ts := timestampOverride
	if ts == 0 {
		ts = time.Now().UnixMilli()
	}

	var payload map[string]any
	if len(rawPayload) > 0 {
		if err := json.Unmarshal(rawPayload, &payload); err != nil {
			payload = nil
		}
	}

	return &Message{
		Topic:     topic,
		Timestamp: ts,
		Payload:   payload,
	}
}

// SubscriberRecord is one subscription document as read back from the store.
// Records are written by the subscription flow in transport/ws and are
// read-only to the fanout engine. A record may be stale by the time it is
// scanned: its connection can already be gone, which is expected and not an
// error.
type SubscriberRecord struct {
	ID           string `json:"id"`
	Topic        string `json:"topic"`
	ConnectionID int64  `json:"connection_id"`
}
