package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/fanout/core/logger"
	"github.com/dmitrymomot/fanout/core/pubsub"
)

// Handler upgrades HTTP requests to websocket connections and serves the
// subscribe/unsubscribe/publish frame protocol on them.
type Handler struct {
	store        pubsub.SubscriberStore
	publisher    *pubsub.Publisher
	registry     *Registry
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
	logger       *slog.Logger
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithWriteTimeout bounds a single outbound frame write.
func WithWriteTimeout(timeout time.Duration) HandlerOption {
	return func(h *Handler) {
		if timeout > 0 {
			h.writeTimeout = timeout
		}
	}
}

// WithOriginCheck overrides the upgrade origin policy.
func WithOriginCheck(fn func(r *http.Request) bool) HandlerOption {
	return func(h *Handler) {
		h.upgrader.CheckOrigin = fn
	}
}

// WithHandlerLogger sets the logger for connection diagnostics.
func WithHandlerLogger(log *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if log != nil {
			h.logger = log
		}
	}
}

// NewHandler creates a websocket handler registering connections in registry
// and persisting subscriptions through store.
func NewHandler(store pubsub.SubscriberStore, publisher *pubsub.Publisher, registry *Registry, opts ...HandlerOption) *Handler {
	h := &Handler{
		store:     store,
		publisher: publisher,
		registry:  registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		writeTimeout: DefaultWriteTimeout,
		logger:       logger.Discard(),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// ServeHTTP upgrades the request and runs the connection's read loop until
// the peer disconnects. On exit the connection is removed from the registry
// and its subscription documents are pruned best-effort.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}

	conn := NewConn(wsConn, h.writeTimeout)
	id := h.registry.Add(conn)
	h.logger.InfoContext(r.Context(), "connection opened", logger.ConnectionID(id))

	defer func() {
		h.registry.Remove(id)
		_ = conn.Close()

		cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), 5*time.Second)
		defer cancel()
		if err := h.store.DeleteSubscriptions(cleanupCtx, "", id); err != nil {
			h.logger.WarnContext(cleanupCtx, "subscription cleanup failed",
				logger.ConnectionID(id), logger.Error(err))
		}
		h.logger.InfoContext(cleanupCtx, "connection closed", logger.ConnectionID(id))
	}()

	h.readLoop(r.Context(), conn, id, wsConn)
}

func (h *Handler) readLoop(ctx context.Context, conn *Conn, id int64, wsConn *websocket.Conn) {
	for {
		_, raw, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.WarnContext(ctx, "connection read failed",
					logger.ConnectionID(id), logger.Error(err))
			}
			return
		}

		var frame requestFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			h.reject(ctx, conn, "malformed frame")
			continue
		}

		switch frame.Type {
		case OpSubscribe:
			h.handleSubscribe(ctx, conn, id, frame.Topic)
		case OpUnsubscribe:
			h.handleUnsubscribe(ctx, conn, id, frame.Topic)
		case OpPublish:
			h.handlePublish(ctx, conn, frame)
		default:
			h.reject(ctx, conn, "unknown frame type")
		}
	}
}

func (h *Handler) handleSubscribe(ctx context.Context, conn *Conn, id int64, topic string) {
	subID, err := h.store.PutSubscription(ctx, pubsub.SubscriberRecord{
		Topic:        topic,
		ConnectionID: id,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "subscribe failed",
			logger.ConnectionID(id), logger.Topic(topic), logger.Error(err))
		h.reject(ctx, conn, "subscribe failed")
		return
	}
	h.ack(ctx, conn, ackFrame{Type: OpAck, Action: OpSubscribe, Topic: topic, ID: subID})
}

func (h *Handler) handleUnsubscribe(ctx context.Context, conn *Conn, id int64, topic string) {
	if err := h.store.DeleteSubscriptions(ctx, topic, id); err != nil {
		h.logger.WarnContext(ctx, "unsubscribe failed",
			logger.ConnectionID(id), logger.Topic(topic), logger.Error(err))
		h.reject(ctx, conn, "unsubscribe failed")
		return
	}
	h.ack(ctx, conn, ackFrame{Type: OpAck, Action: OpUnsubscribe, Topic: topic})
}

func (h *Handler) handlePublish(ctx context.Context, conn *Conn, frame requestFrame) {
	msg, err := h.publisher.Publish(ctx, frame.Topic, frame.Data, 0)
	if err != nil {
		h.logger.WarnContext(ctx, "publish failed",
			logger.Topic(frame.Topic), logger.Error(err))
		h.reject(ctx, conn, "publish failed")
		return
	}
	h.ack(ctx, conn, ackFrame{Type: OpAck, Action: OpPublish, Topic: msg.Topic, ID: msg.ID})
}

func (h *Handler) ack(ctx context.Context, conn *Conn, frame ackFrame) {
	if err := conn.writeFrame(ctx, frame); err != nil {
		h.logger.WarnContext(ctx, "ack write failed", logger.Error(err))
	}
}

func (h *Handler) reject(ctx context.Context, conn *Conn, message string) {
	if err := conn.writeFrame(ctx, errorFrame{Type: OpError, Message: message}); err != nil {
		h.logger.WarnContext(ctx, "error write failed", logger.Error(err))
	}
}
