package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config configures the process logger.
type Config struct {
	// Level is the minimum level written to stdout: debug, info, warn or error.
	Level string `env:"LOG_LEVEL" envDefault:"info" mapstructure:"level"`

	// SentryDSN enables Sentry reporting when set.
	SentryDSN string `env:"SENTRY_DSN" mapstructure:"sentry_dsn"`

	// Environment is reported to Sentry.
	Environment string `env:"SENTRY_ENVIRONMENT" envDefault:"production" mapstructure:"environment"`
}

// New creates a JSON logger on stdout with optional context extractors.
// With cfg.SentryDSN set, warnings and errors are also sent to Sentry.
func New(cfg Config, extractors ...ContextExtractor) (*slog.Logger, error) {
	return newLogger(os.Stdout, cfg, extractors...)
}

func newLogger(w io.Writer, cfg Config, extractors ...ContextExtractor) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var handler slog.Handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	if cfg.SentryDSN != "" {
		handler = withSentry(handler, cfg)
	}
	return slog.New(NewLogHandlerDecorator(handler, extractors...)), nil
}

// ParseLevel converts a level name to slog.Level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("logger: unknown level %q", s)
	}
}
