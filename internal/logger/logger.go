// Package logger provides structured logging configuration for the front server.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Format represents the output format for logs
type Format string

const (
	// FormatJSON outputs logs in JSON format (production default)
	FormatJSON Format = "json"
	// FormatText outputs logs in human-readable text format (development default)
	FormatText Format = "text"
)

// New creates a new structured logger based on environment configuration.
// It reads LOG_LEVEL and LOG_FORMAT from environment variables.
//
// LOG_LEVEL options: debug, info, warn, error (default: info)
// LOG_FORMAT options: json, text (default: json)
func New() *slog.Logger {
	level := getLevel()

	opts := &slog.HandlerOptions{
		Level: level,
		// Add source location for error and warn levels
		AddSource: level <= slog.LevelWarn,
	}

	var handler slog.Handler
	switch getFormat() {
	case FormatText:
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

// SetDefault sets the given logger as the default slog logger
func SetDefault(logger *slog.Logger) {
	slog.SetDefault(logger)
}

func getLevel() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getFormat() Format {
	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "text" {
		return FormatText
	}
	return FormatJSON
}
