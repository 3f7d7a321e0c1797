package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const (
	defaultAddr              = ":8080"
	defaultShutdownTimeout   = 30 * time.Second
	defaultReadTimeout       = 10 * time.Minute // whole request, upload body included
	defaultWriteTimeout      = 10 * time.Minute // whole response, download included
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20
)

// httpServer builds the server from config. Header reads keep a short limit;
// the body and response limits are sized for file transfers.
func (s *Server) httpServer() *http.Server {
	addr := s.cfg.Addr
	if addr == "" {
		addr = defaultAddr
	}
	readTimeout := s.cfg.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = defaultReadTimeout
	}
	writeTimeout := s.cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}

	return &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       defaultIdleTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		MaxHeaderBytes:    defaultMaxHeaderBytes,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}
}

// Run serves until ctx is canceled or the process receives SIGINT or SIGTERM,
// then shuts down gracefully and runs hooks (closing clients, flushing Sentry).
func (s *Server) Run(ctx context.Context, hooks ...func(context.Context) error) error {
	shutdownTimeout := s.cfg.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}
	srv := s.httpServer()

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Listen first so the bound address is known.
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.String("address", ln.Addr().String()),
			slog.String("driver", string(s.disk.Driver())),
		)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer shutdownCancel()

	var errs []error
	if err := srv.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	for _, hook := range hooks {
		if err := hook(shutdownCtx); err != nil {
			errs = append(errs, err)
			s.logger.Error("shutdown hook failed", slog.String("error", err.Error()))
		}
	}

	if len(errs) > 0 {
		s.logger.Error("shutdown completed with errors")
		return errors.Join(errs...)
	}

	s.logger.Info("shutdown completed")
	return nil
}
