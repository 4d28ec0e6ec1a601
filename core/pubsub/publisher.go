package pubsub

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/dmitrymomot/fanout/pkg/async"
)

// Publisher builds message envelopes, records them in the store, and hands
// them to the fanout driver.
//
// The store write and the fanout run concurrently: the write is started in
// the background, the fanout proceeds on the calling goroutine with the
// in-memory message, and only after the fanout finishes does Publish wait for
// the write acknowledgment. A slow store write therefore never delays
// delivery, and a fanout failure never rolls back the write.
type Publisher struct {
	store  SubscriberStore
	driver *Driver
	logger *slog.Logger
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithPublisherLogger sets the logger for publish diagnostics.
func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPublisher creates a publisher writing messages through store and
// delivering them via driver.
func NewPublisher(store SubscriberStore, driver *Driver, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		store:  store,
		driver: driver,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Publish records a message for topic and fans it out to every live
// subscriber connection. An empty topic publishes under the TopicAll wildcard.
//
// A rawPayload that is not a JSON object is logged and published with a nil
// payload; a malformed body alone never fails a publish. The returned message
// carries the store-assigned ID when the write succeeded.
//
// The fanout runs regardless of the write outcome: the scan uses the
// in-memory message, not a re-read from the store. Write and fanout errors
// are joined into the returned error.
func (p *Publisher) Publish(ctx context.Context, topic string, rawPayload []byte, timestampOverride int64) (*Message, error) {
	if topic == "" {
		topic = TopicAll
	}

	msg := NewMessage(topic, rawPayload, timestampOverride)
	if msg.Payload == nil && len(rawPayload) > 0 {
		p.logger.WarnContext(ctx, "unable to parse publish payload, publishing without it",
			slog.String("topic", topic),
			slog.Int("payload_bytes", len(rawPayload)))
	}

	// The write must survive the request context: the caller may give up on
	// the acknowledgment while the document still lands in the store.
	write := async.Async(context.WithoutCancel(ctx), *msg, func(ctx context.Context, m Message) (string, error) {
		return p.store.IndexMessage(ctx, &m)
	})

	fanoutErr := p.driver.Fanout(ctx, topic, msg)

	id, writeErr := write.AwaitContext(ctx)
	if writeErr == nil {
		msg.ID = id
	} else {
		p.logger.ErrorContext(ctx, "message index write failed",
			slog.String("topic", topic),
			slog.Any("error", writeErr))
	}

	return msg, errors.Join(writeErr, fanoutErr)
}
