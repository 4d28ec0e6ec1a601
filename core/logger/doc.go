// Package logger builds log/slog handlers from environment configuration and
// provides nil-safe attribute helpers for the fanout domain.
//
//	var cfg logger.Config
//	config.MustLoad(&cfg)
//	log := logger.New(cfg)
//
//	log.Info("subscription recorded",
//		logger.Topic("news"),
//		logger.ConnectionID(connID))
//
// Helpers return an empty slog.Attr for nil errors and empty identifiers, so
// call sites never guard attribute construction.
package logger
