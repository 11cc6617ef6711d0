// Package logging provides structured logging for the POS bridge.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across the entire application.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output for development (human-readable)
//   - Default fields (service, version) on all log entries
//   - Optional log file, teed with stdout
//   - Age-based removal of old log files at startup
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr, file
//	  file:
//	    path: "./logs/posbridge.log"
//	    max_age: 30      # days
//
// # Security
//
// Never log the shared secret or any token presented by a client.
package logging
