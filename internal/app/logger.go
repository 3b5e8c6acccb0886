package app

import (
	"io"
	"log/slog"
)

// newLogger creates and configures the relay's slog.Logger. It does not set
// the global logger, allowing for isolated logger instances.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	return NewLogger(levelStr, formatStr, outW).With("service", "flowsync-relay")
}

// NewLogger builds a text or json slog.Logger at the given level. Unknown
// levels fall back to info. Every entrypoint shares it so log flags behave
// the same everywhere.
func NewLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(levelStr)); err != nil {
		level = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler

	if formatStr == "json" {
		handler = slog.NewJSONHandler(outW, handlerOpts)
	} else {
		handler = slog.NewTextHandler(outW, handlerOpts)
	}

	return slog.New(handler)
}
