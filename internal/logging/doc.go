// Package logging provides structured logging for lightbridge.
//
// This package wraps a package-level zap logger with convenience functions.
// Logging is silent unless a level is passed to Initialize or the
// LIGHTBRIDGE_LOG_LEVEL environment variable is set, so CLI output stays clean.
//
// # Log Levels
//
//   - Debug: datagram hex dumps, dropped or unmatched frames
//   - Info: socket lifecycle, HTTP requests, RPC messages
//   - Warn: transient read errors, rejected requests
//   - Error: startup failures
//
// # Structured Logging
//
//	logging.Info("Discovery finished",
//	    zap.Int("devices", 3),
//	    zap.Duration("window", 3*time.Second),
//	)
//
// # Datagram Logging
//
// LogDatagram records every datagram sent or received on the bridge socket at
// debug level, with a hex and ASCII dump capped at 256 bytes.
package logging
