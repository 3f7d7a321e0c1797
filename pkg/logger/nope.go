package logger

import "log/slog"

// NewNope creates a no-op logger that discards all output.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
