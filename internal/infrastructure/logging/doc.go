// Package logging provides structured logging for the booking core.
//
// It wraps log/slog so every entry carries the service name and build
// version, and so each component can tag its own entries.
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Info("starting service", "port", 8080)
//	storeLog := logger.Component("store")
//	storeLog.Debug("statement executed", "table", "clients")
//
// Never log passwords, tokens or bound statement values that may hold
// personal data. Log table names, row counts and durations instead.
package logging
