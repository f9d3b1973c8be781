package main

import (
	"io"
	"log/slog"
)

// noopLogger returns a logger that discards everything, for tests that need
// a non-nil *slog.Logger but don't care about its output.
func noopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
