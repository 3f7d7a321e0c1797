package logger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// withSentry fans records out to base and to Sentry.
// If Sentry cannot be initialized, base is returned unchanged and the failure is logged to it.
func withSentry(base slog.Handler, cfg Config) slog.Handler {
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.SentryDSN,
		Environment: cfg.Environment,
		EnableLogs:  true,
	}); err != nil {
		slog.New(base).Error("failed to initialize Sentry", slog.String("error", err.Error()))
		return base
	}

	sentryHandler := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},                 // Errors create Issues in Sentry
		LogLevel:   []slog.Level{slog.LevelWarn, slog.LevelError}, // Logs stored for context/search
	}.NewSentryHandler(context.Background())

	return newMultiHandler(base, sentryHandler)
}

const defaultFlushTimeout = 2 * time.Second

// Flush waits for buffered Sentry events until ctx expires.
// It is a no-op when Sentry was not initialized.
func Flush(ctx context.Context) error {
	if sentry.CurrentHub().Client() == nil {
		return nil
	}

	timeout := defaultFlushTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if !sentry.Flush(timeout) {
		return errors.New("logger: sentry flush timed out")
	}
	return nil
}
