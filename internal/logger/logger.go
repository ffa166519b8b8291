package logger

import (
	"io"
	"log/slog"
	"os"
)

// New builds the process logger. Debug mode lowers the level so per-source
// fetch attempts become visible.
func New(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	l := slog.New(slog.NewTextHandler(os.Stdout, opts))
	slog.SetDefault(l)
	return l
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
