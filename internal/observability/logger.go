// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package observability builds the logger and Prometheus metrics shared by
// the shoreline components.
package observability

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/shoreline/pkg/types"
)

// NewLogger creates a zerolog logger from cfg. Console and pretty formats use
// a human-readable writer; anything else emits JSON lines.
func NewLogger(cfg types.LoggingConfig) zerolog.Logger {
	return newLogger(cfg, outputFor(cfg.Output))
}

func newLogger(cfg types.LoggingConfig, out io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	switch strings.ToLower(cfg.Format) {
	case "console", "pretty":
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	return zerolog.New(out).
		With().Timestamp().Logger().
		Level(ParseLevel(cfg.Level))
}

func outputFor(name string) io.Writer {
	if strings.ToLower(name) == "stdout" {
		return os.Stdout
	}
	return os.Stderr
}

// ParseLevel converts a level name to a zerolog.Level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// WithSession tags every event with the search session ID.
func WithSession(logger zerolog.Logger, sessionID string) zerolog.Logger {
	return logger.With().Str("session_id", sessionID).Logger()
}
