// Package debug carries the --debug switch through the context and installs
// the process logger.
package debug

import (
	"context"
	"io"
	"log/slog"
)

type contextKey string

const debugKey contextKey = "debug_enabled"

// WithDebug returns a context with debug mode enabled/disabled.
func WithDebug(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, debugKey, enabled)
}

// IsEnabled returns true if debug mode is enabled in the context.
func IsEnabled(ctx context.Context) bool {
	if v, ok := ctx.Value(debugKey).(bool); ok {
		return v
	}
	return false
}

// Level returns the log level for the given mode. Quiet wins over debug.
func Level(debugEnabled, quiet bool) slog.Level {
	switch {
	case quiet:
		return slog.LevelError
	case debugEnabled:
		return slog.LevelDebug
	default:
		return slog.LevelWarn
	}
}

// SetupLogger installs a text logger on w as the default and returns it.
// Request attempts are logged at debug, failed responses at info, so neither
// shows up unless --debug is set.
func SetupLogger(w io.Writer, debugEnabled, quiet bool) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: Level(debugEnabled, quiet),
	})
	logger := slog.New(handler).With("app", "mottu")
	slog.SetDefault(logger)
	return logger
}
