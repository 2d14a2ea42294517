// Package logging configures the structured loggers used across the
// module
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Format is the encoding of log records
type Format string

const (
	Text Format = "text"
	JSON Format = "json"
)

// New returns a logger writing records at or above level to w
func New(w io.Writer, level string, format Format) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch format {
	case Text, "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case JSON:
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("new: unknown log format %q", format)
}

// OrDefault returns l, or the default logger if l is nil
func OrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}

// Discard returns a logger that drops every record
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
