package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/fanout/core/config"
	"github.com/dmitrymomot/fanout/core/logger"
	"github.com/dmitrymomot/fanout/core/pubsub"
	"github.com/dmitrymomot/fanout/core/server"
	"github.com/dmitrymomot/fanout/integration/database/opensearch"
	"github.com/dmitrymomot/fanout/integration/database/redis"
	"github.com/dmitrymomot/fanout/transport/rest"
	"github.com/dmitrymomot/fanout/transport/ws"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg Config
	config.MustLoad(&cfg) // panic on error

	log := logger.New(cfg.Logger).With("app", cfg.AppName)

	// Init opensearch connection for the subscriber registry and message log
	osClient, err := opensearch.New(ctx, cfg.OpenSearch)
	if err != nil {
		log.Error("Failed to connect to opensearch", logger.Component("opensearch"), logger.Error(err))
		os.Exit(1)
	}
	store := opensearch.NewStore(osClient, cfg.Index)

	// Init redis connection for delivery checkpoints
	redisClient, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		log.Error("Failed to connect to redis", logger.Component("redis"), logger.Error(err))
		os.Exit(1)
	}
	checkpoints := redis.NewCheckpointStore(redisClient,
		redis.WithCheckpointTTL(cfg.CheckpointTTL))

	registry := ws.NewRegistry()

	driver := pubsub.NewDriver(store, registry, checkpoints,
		pubsub.WithPageSize(cfg.PageSize),
		pubsub.WithScrollKeepAlive(cfg.ScrollKeepAlive),
		pubsub.WithDriverLogger(log.With(logger.Component("pubsub.fanout"))))
	publisher := pubsub.NewPublisher(store, driver,
		pubsub.WithPublisherLogger(log.With(logger.Component("pubsub.publisher"))))

	wsHandler := ws.NewHandler(store, publisher, registry,
		ws.WithHandlerLogger(log.With(logger.Component("transport.ws"))))

	handler := rest.Router(publisher, wsHandler, log.With(logger.Component("transport.rest")),
		opensearch.Healthcheck(osClient),
		redis.Healthcheck(redisClient))

	s, err := server.NewFromConfig(cfg.Server, server.WithLogger(log.With(logger.Component("server"))))
	if err != nil {
		log.Error("Failed to create server", logger.Component("server"), logger.Error(err))
		os.Exit(1)
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(s.Run(ctx, handler))

	if err := eg.Wait(); err != nil {
		log.Error("Failed to run server", logger.Component("server"), logger.Error(err))
		os.Exit(1)
	}

	log.Info("Application stopped")
}
