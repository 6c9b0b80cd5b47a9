// Package logging builds the process-wide slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"relocation/internal/pkg/errs"
)

// ParseLevel maps LOG_LEVEL values (debug, info, warn, error) to slog levels. An empty
// value means info.
func ParseLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, errs.NewValueIsInvalidErrorWithCause("log level", fmt.Errorf("unknown level %q", raw))
	}
}

// New returns a JSON logger writing to w at level, tagged with the service name.
func New(w io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With("service", "relocation")
}
