package config

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	cache  sync.Map // reflect.Type -> parsed config value
	dotenv sync.Once
)

// Load parses environment variables into cfg. Each configuration type is
// loaded once per process and cached; later calls for the same type return
// the cached value even if the environment changed in between.
//
// A .env file in the working directory is loaded on first use; a missing
// file is not an error.
func Load[T any](cfg *T) error {
	dotenv.Do(func() {
		_ = godotenv.Load()
	})

	key := reflect.TypeOf(*cfg)
	if cached, ok := cache.Load(key); ok {
		*cfg = cached.(T)
		return nil
	}

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("config: parse %s from environment: %w", key, err)
	}

	actual, _ := cache.LoadOrStore(key, *cfg)
	*cfg = actual.(T)
	return nil
}

// MustLoad is Load that panics on failure, for use during startup.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
