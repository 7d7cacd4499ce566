package logging

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevelEnvVar selects the log level when no level is passed explicitly.
// Unset or empty keeps logging silent.
const LogLevelEnvVar = "LIGHTBRIDGE_LOG_LEVEL"

// dumpLimit caps hex and ASCII payload dumps.
const dumpLimit = 256

var logger = zap.NewNop()

// Initialize configures the package logger to write to stdout.
func Initialize(level string) error {
	return InitializeWithOutput(level, "stdout")
}

// InitializeWithOutput configures the package logger to write to output, a
// zap sink path such as "stdout", "stderr" or a file. An empty level falls
// back to LIGHTBRIDGE_LOG_LEVEL; if that is empty too, logging is disabled.
func InitializeWithOutput(level string, output string) error {
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}
	level = strings.TrimSpace(level)
	if level == "" {
		logger = zap.NewNop()
		return nil
	}

	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}

	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.EncodeCaller = zapcore.ShortCallerEncoder
	if output != "stdout" && output != "stderr" {
		// No color escapes in files
		enc.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(lvl),
		Encoding:         "console",
		EncoderConfig:    enc,
		OutputPaths:      []string{output},
		ErrorOutputPaths: []string{"stderr"},
	}

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger = l
	return nil
}

// ParseLevel accepts debug, info, warn (or warning) and error.
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	}
	return zapcore.InfoLevel, fmt.Errorf("invalid log level %q (expected debug, info, warn or error)", level)
}

// GetLogger returns the package logger.
func GetLogger() *zap.Logger {
	return logger
}

func Debug(msg string, fields ...zap.Field) { logger.Debug(msg, fields...) }

func Info(msg string, fields ...zap.Field) { logger.Info(msg, fields...) }

func Warn(msg string, fields ...zap.Field) { logger.Warn(msg, fields...) }

func Error(msg string, fields ...zap.Field) { logger.Error(msg, fields...) }

// Sync flushes any buffered log entries
func Sync() {
	_ = logger.Sync()
}

// LogDatagram logs a UDP datagram crossing the bridge socket at debug level.
// direction is "in" or "out".
func LogDatagram(direction string, addr string, data []byte) {
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		return
	}
	logger.Debug("Datagram",
		zap.String("direction", direction),
		zap.String("addr", addr),
		zap.Int("length", len(data)),
		zap.String("hex", hexDump(data)),
		zap.String("ascii", asciiDump(data)),
	)
}

// LogHTTPRequest logs a completed HTTP request: server errors at error,
// client errors at warn, everything else at info.
func LogHTTPRequest(remoteAddr, method, path string, status int, latency time.Duration) {
	fields := []zap.Field{
		zap.String("remote_addr", remoteAddr),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.Duration("latency", latency),
	}
	switch {
	case status >= 500:
		logger.Error("HTTP request", fields...)
	case status >= 400:
		logger.Warn("HTTP request", fields...)
	default:
		logger.Info("HTTP request", fields...)
	}
}

// LogRPCMessage logs a message on a WebSocket RPC session. The payload is
// included at debug level only.
func LogRPCMessage(session string, direction string, command string, data []byte) {
	fields := []zap.Field{
		zap.String("session", session),
		zap.String("direction", direction),
		zap.Int("length", len(data)),
	}
	if command != "" {
		fields = append(fields, zap.String("command", command))
	}
	if logger.Core().Enabled(zapcore.DebugLevel) {
		fields = append(fields, zap.String("content", asciiDump(data)))
	}
	logger.Info("RPC message", fields...)
}

func hexDump(data []byte) string {
	if len(data) > dumpLimit {
		return hex.EncodeToString(data[:dumpLimit]) + "..."
	}
	return hex.EncodeToString(data)
}

func asciiDump(data []byte) string {
	truncated := len(data) > dumpLimit
	if truncated {
		data = data[:dumpLimit]
	}
	out := make([]byte, len(data))
	for i, b := range data {
		if b >= 32 && b <= 126 {
			out[i] = b
		} else {
			out[i] = '.'
		}
	}
	if truncated {
		return string(out) + "..."
	}
	return string(out)
}
