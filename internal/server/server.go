// Package server is the diskd HTTP API: uploads, downloads and deletes
// against the configured disk, plus liveness and readiness checks.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/dmitrymomot/disk/internal/config"
	"github.com/dmitrymomot/disk/pkg/disk"
	"github.com/dmitrymomot/disk/pkg/logger"
	"github.com/dmitrymomot/disk/pkg/upload"
)

// Server serves the file API on a chi router.
type Server struct {
	handler http.Handler
	disk    *disk.Disk
	logger  *slog.Logger
	cfg     config.ServerConfig
}

// New builds the router. d and v are required; a nil log discards output.
func New(d *disk.Disk, v *upload.Validator, log *slog.Logger, cfg config.ServerConfig) *Server {
	if log == nil {
		log = logger.NewNope()
	}

	s := &Server{
		disk:   d,
		logger: log,
		cfg:    cfg,
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", livenessHandler())
	r.Get("/health/ready", readinessHandler(healthChecks{"disk": d.Healthcheck()}, defaultHealthTimeout, log))

	r.With(v.Middleware).Post("/files", s.handleUpload)
	r.Get("/files/*", s.handleDownload)
	r.Delete("/files/*", s.handleDelete)

	s.handler = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// DefaultRequestIDHeaders are checked in order for an upstream request ID.
var DefaultRequestIDHeaders = []string{"X-Request-ID", "X-Correlation-ID"}

// requestID reuses an upstream request ID or generates one, and exposes it
// to loggers through the request context.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		for _, h := range DefaultRequestIDHeaders {
			if v := r.Header.Get(h); v != "" {
				id = v
				break
			}
		}
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(logger.WithRequestID(r.Context(), id)))
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.InfoContext(r.Context(), "http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Int("bytes", ww.BytesWritten()),
			slog.String("remote_addr", r.RemoteAddr),
			slog.Duration("duration", time.Since(start)),
		)
	})
}
