// Package logging builds the slog logger used by the pathnorm commands.
package logging

import (
	"io"
	"log/slog"
	"time"

	"charm.land/log/v2"
)

// Options configures the logger.
type Options struct {
	Verbose bool
	JSON    bool
	Prefix  string
}

// New returns a slog logger backed by a charm log handler writing to w.
// Debug records are dropped unless Verbose is set.
func New(w io.Writer, opts Options) *slog.Logger {
	level := log.InfoLevel
	if opts.Verbose {
		level = log.DebugLevel
	}

	handler := log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          opts.Prefix,
		ReportTimestamp: opts.Verbose,
		TimeFormat:      time.TimeOnly,
	})
	if opts.JSON {
		handler.SetFormatter(log.JSONFormatter)
	}
	return slog.New(handler)
}

// Setup builds a logger with New and installs it as the slog default.
func Setup(w io.Writer, opts Options) *slog.Logger {
	logger := New(w, opts)
	slog.SetDefault(logger)
	return logger
}
