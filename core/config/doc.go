// Package config provides type-safe environment variable loading with caching
// using Go generics. Each configuration type is loaded once and cached for
// subsequent calls.
//
// The package automatically loads a .env file on first use and parses
// environment variables into struct fields via the caarlos0/env library.
//
//	type StoreConfig struct {
//		Addresses []string `env:"OPENSEARCH_ADDRESSES,required"`
//		Index     string   `env:"PUBSUB_INDEX" envDefault:"pubsub"`
//	}
//
//	var cfg StoreConfig
//	if err := config.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
//
// MustLoad panics instead of returning the error, which keeps process
// bootstrap terse. Caching is per type: two loads of the same struct type
// observe identical values regardless of environment changes in between,
// so configuration is stable for the lifetime of the process.
package config
