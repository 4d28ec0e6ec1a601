package main

import (
	"time"

	"github.com/dmitrymomot/fanout/core/logger"
	"github.com/dmitrymomot/fanout/core/server"
	"github.com/dmitrymomot/fanout/integration/database/opensearch"
	"github.com/dmitrymomot/fanout/integration/database/redis"
)

type Config struct {
	AppName string `env:"APP_NAME" envDefault:"fanoutd"`

	// Fanout tuning
	PageSize        int           `env:"FANOUT_PAGE_SIZE" envDefault:"100"`
	ScrollKeepAlive time.Duration `env:"FANOUT_SCROLL_KEEP_ALIVE" envDefault:"60s"`

	// Checkpoint retention in redis; zero keeps checkpoints forever.
	CheckpointTTL time.Duration `env:"CHECKPOINT_TTL" envDefault:"24h"`

	Logger logger.Config
	Server server.Config

	OpenSearch opensearch.Config
	Index      opensearch.StoreConfig
	Redis      redis.Config
}
