// Package logger provides structured logging configuration using log/slog.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Environment variables read by DefaultConfig.
const (
	EnvLevel  = "MRYTUNE_LOG_LEVEL"
	EnvFormat = "MRYTUNE_LOG_FORMAT"
)

// Config holds logger configuration.
type Config struct {
	Level  slog.Level
	Format string // "text" or "json"

	// Output defaults to os.Stderr so command output on stdout stays clean
	Output io.Writer
}

// NewLogger creates a configured slog.Logger.
func NewLogger(cfg Config) *slog.Logger {
	var handler slog.Handler

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.Level <= slog.LevelDebug,
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	return slog.New(handler)
}

// ParseLevel maps DEBUG, INFO, WARN/WARNING and ERROR (any case) to a slog level.
// Unknown values yield fallback.
func ParseLevel(s string, fallback slog.Level) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	}
	return fallback
}

// DefaultConfig returns the logger configuration taken from MRYTUNE_LOG_LEVEL
// (default INFO) and MRYTUNE_LOG_FORMAT ("text" or "json", default text).
func DefaultConfig() Config {
	format := "text"
	if strings.EqualFold(os.Getenv(EnvFormat), "json") {
		format = "json"
	}

	return Config{
		Level:  ParseLevel(os.Getenv(EnvLevel), slog.LevelInfo),
		Format: format,
	}
}
