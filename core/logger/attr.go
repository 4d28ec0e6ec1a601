package logger

import "log/slog"

// Attribute helpers use the empty Attr pattern for nil safety: a nil error or
// empty id produces an empty Attr, so call sites never need explicit checks.

// Error creates an attribute for an error under the key "error".
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component creates an attribute naming the emitting component.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Topic creates an attribute for a pubsub topic.
func Topic(topic string) slog.Attr {
	if topic == "" {
		return slog.Attr{}
	}
	return slog.String("topic", topic)
}

// ConnectionID creates an attribute for a live connection identifier.
func ConnectionID(id int64) slog.Attr {
	return slog.Int64("connection_id", id)
}

// MessageID creates an attribute for a store-assigned message identifier.
func MessageID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("message_id", id)
}

// SubscriptionID creates an attribute for a subscription document identifier.
func SubscriptionID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("subscription_id", id)
}

// Count creates a generic counter attribute.
func Count(key string, n int) slog.Attr {
	return slog.Int(key, n)
}
