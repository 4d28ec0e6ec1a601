package rest

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dmitrymomot/fanout/core/logger"
	"github.com/dmitrymomot/fanout/core/pubsub"
)

// maxPublishBody caps the accepted publish payload at 1MB.
const maxPublishBody = 1 << 20

// PublishResponse is the success body of the publish endpoint.
type PublishResponse struct {
	OK bool   `json:"ok"`
	ID string `json:"id"`
}

// ErrorResponse is the failure body of the publish endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Publish returns the handler for GET|POST /_publish. The topic query
// parameter defaults to the wildcard; an optional timestamp parameter
// (epoch millis) overrides the message timestamp.
func Publish(publisher *pubsub.Publisher, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var timestamp int64
		if raw := r.URL.Query().Get("timestamp"); raw != "" {
			parsed, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid timestamp: " + raw})
				return
			}
			timestamp = parsed
		}

		// The refresh flag is accepted for wire compatibility; index refresh
		// behavior is configured on the store, not per request.
		if raw := r.URL.Query().Get("refresh"); raw != "" {
			if _, err := strconv.ParseBool(raw); err != nil {
				writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid refresh: " + raw})
				return
			}
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxPublishBody))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "read request body: " + err.Error()})
			return
		}

		topic := r.URL.Query().Get("topic")
		msg, err := publisher.Publish(ctx, topic, body, timestamp)
		if err != nil {
			log.ErrorContext(ctx, "publish request failed",
				logger.Topic(topic), logger.Error(err))
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}

		writeJSON(w, http.StatusOK, PublishResponse{OK: true, ID: msg.ID})
	}
}

// writeJSON encodes v directly to the response writer.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
