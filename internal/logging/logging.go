// Package logging builds the service logger.
package logging

import (
	"io"
	"log/slog"

	slogmulti "github.com/samber/slog-multi"
)

// New returns a logger that writes readable text records of level and above
// to out, and mirrors errors as JSON records to errOut for log collectors.
// A nil errOut disables the mirror.
func New(out, errOut io.Writer, level slog.Leveler) *slog.Logger {
	if level == nil {
		level = slog.LevelInfo
	}

	handlers := []slog.Handler{
		slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}),
	}
	if errOut != nil {
		handlers = append(handlers, slog.NewJSONHandler(errOut, &slog.HandlerOptions{Level: slog.LevelError}))
	}

	return slog.New(slogmulti.Fanout(handlers...))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}
