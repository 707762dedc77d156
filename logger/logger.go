// Package logger builds the slog logger used for diagnostic output.
package logger

import (
	"io"
	"log/slog"
)

// New returns a text logger aimed at the given stream. Verbose enables debug
// records (request/response summaries); otherwise only warnings and errors
// of the execution machinery show up.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Discard returns a logger that drops everything. Default for library
// consumers that bring no logger of their own.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
