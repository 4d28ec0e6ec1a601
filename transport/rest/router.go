package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/fanout/core/pubsub"
)

// Router assembles the service's HTTP surface: the publish endpoint, health
// probes, and the websocket upgrade endpoint.
func Router(publisher *pubsub.Publisher, wsHandler http.Handler, log *slog.Logger, readiness ...func(context.Context) error) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /_publish", Publish(publisher, log))
	mux.Handle("POST /_publish", Publish(publisher, log))
	mux.Handle("GET /health/live", Liveness())
	mux.Handle("GET /health/ready", Readiness(log, readiness...))
	if wsHandler != nil {
		mux.Handle("GET /ws", wsHandler)
	}
	return mux
}
