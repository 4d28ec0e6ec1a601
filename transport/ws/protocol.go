package ws

import (
	"encoding/json"

	"github.com/dmitrymomot/fanout/core/pubsub"
)

// Frame operation types.
const (
	OpSubscribe   = "subscribe"
	OpUnsubscribe = "unsubscribe"
	OpPublish     = "publish"
	OpMessage     = "message"
	OpAck         = "ack"
	OpError       = "error"
)

// requestFrame is one inbound client frame.
type requestFrame struct {
	Type  string          `json:"type"`
	Topic string          `json:"topic,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// ackFrame confirms a subscribe, unsubscribe, or publish operation.
type ackFrame struct {
	Type   string `json:"type"`
	Action string `json:"action"`
	Topic  string `json:"topic,omitempty"`
	ID     string `json:"id,omitempty"`
}

// errorFrame reports a failed operation without closing the connection.
type errorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// messageFrame carries one fanned-out message to a subscriber.
type messageFrame struct {
	Type string          `json:"type"`
	Data *pubsub.Message `json:"data"`
}
