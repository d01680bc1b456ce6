// Package logging builds the process logger: leveled, structured, and either
// human-readable text (development) or one JSON object per line (production).
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// ParseLevel accepts debug, info, warn (or warning) and error, case-insensitively.
// An empty value means info.
func ParseLevel(raw string) (slog.Level, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return slog.LevelInfo, nil
	}
	if strings.EqualFold(value, "warning") {
		value = "warn"
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", raw)
	}
	return level, nil
}

// New returns a logger writing to w.
func New(w io.Writer, level, format string) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
