// Package logger builds the process slog.Logger: JSON on stdout, request-scoped
// attributes from context, and optional Sentry reporting.
//
// # Basic Usage
//
//	log, err := logger.New(logger.Config{Level: "debug"}, logger.RequestIDExtractor())
//	if err != nil {
//		return err
//	}
//
//	ctx := logger.WithRequestID(ctx, "01J9Z3...")
//	log.InfoContext(ctx, "file stored", slog.String("path", fd.Path))
//	// {"level":"INFO","msg":"file stored","path":"movies/01J9Z4....avi","request_id":"01J9Z3..."}
//
// # Sentry Integration
//
// With Config.SentryDSN set, records are also sent to Sentry: errors create
// issues, warnings and errors are stored as logs. If Sentry fails to initialize,
// the failure is logged and the logger keeps writing to stdout only.
//
// # Context Extractors
//
// A ContextExtractor returns an attribute for the current context, or false to
// skip it. LogHandlerDecorator applies extractors to any slog.Handler:
//
//	h := logger.NewLogHandlerDecorator(slog.NewTextHandler(os.Stderr, nil), extractors...)
//
// Libraries that accept a *slog.Logger default to NewNope.
package logger
