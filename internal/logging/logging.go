// Package logging sets up the structured logger shared by the daemon,
// gateway, and backup subsystems.
package logging

import (
	"log/slog"
	"os"
)

// New returns a slog.Logger writing JSON to stderr at the given level.
// levelName accepts "debug", "info", "warn" (or "warning"), "error", in
// all-lowercase or all-uppercase; anything else falls back to info.
func New(levelName string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(levelName)}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

// NewDiscard returns a logger that drops everything, for tests and
// contexts where logging would otherwise leak onto a caller's stdout.
func NewDiscard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func parseLevel(name string) slog.Level {
	switch name {
	case "debug", "DEBUG":
		return slog.LevelDebug
	case "warn", "WARN", "warning", "WARNING":
		return slog.LevelWarn
	case "error", "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
