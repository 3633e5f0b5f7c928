// Package server provides the HTTP surface of go-jf-stremio. It implements
// the Stremio addon protocol (manifest and stream resources) on top of the
// resolution pipeline, using chi/v5 for routing with CORS support, inbound
// rate limiting and structured request logging.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/opd-ai/go-jf-stremio/internal/jellyfin"
	"github.com/opd-ai/go-jf-stremio/internal/metrics"
	"github.com/opd-ai/go-jf-stremio/internal/stream"
	"github.com/opd-ai/go-jf-stremio/pkg/config"
)

// Resolver is the resolution pipeline the stream handler calls.
type Resolver interface {
	Resolve(ctx context.Context, creds jellyfin.Credentials, compositeID string) ([]stream.Descriptor, error)
}

// Server represents the HTTP server for go-jf-stremio. Whatever happens
// inside a request, clients receive either a stream list or an empty
// result, never a propagated failure.
type Server struct {
	config     *config.Config
	logger     *slog.Logger
	resolver   Resolver
	httpServer *http.Server
	router     chi.Router
}

// New creates a new HTTP server instance with the provided configuration.
// The server is configured with middleware for logging, CORS, rate limiting
// and request recovery.
func New(cfg *config.Config, resolver Resolver, logger *slog.Logger) *Server {
	s := &Server{
		config:   cfg,
		logger:   logger,
		resolver: resolver,
	}

	s.router = chi.NewRouter()
	s.setupMiddleware()
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures the middleware stack for the router.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware())
	s.router.Use(middleware.Recoverer)

	if s.config.Server.EnableCompression {
		s.router.Use(middleware.Compress(5))
	}

	if limit := s.config.Server.RateLimitPerMin; limit > 0 {
		s.router.Use(httprate.LimitByIP(limit, time.Minute))
	}

	// Stremio loads addon resources from the web app origin.
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	s.router.Use(middleware.Timeout(s.config.Server.RequestTimeout))
}

// setupRoutes configures all HTTP routes for the server. The userData path
// segment carries the caller's encoded server credentials.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Get("/manifest.json", s.handleManifest)
	s.router.Get("/configure", s.handleConfigure)

	s.router.Route("/{userData}", func(r chi.Router) {
		r.Get("/manifest.json", s.handleManifest)
		r.Get("/configure", s.handleConfigure)
		r.Get("/stream/{contentType}/{id}", s.handleStream)
	})
}

// Start starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server",
		"address", s.httpServer.Addr,
		"read_timeout", s.config.Server.ReadTimeout,
		"write_timeout", s.config.Server.WriteTimeout)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", "error", err)
		}
	}()

	<-ctx.Done()
	return s.Stop()
}

// Stop gracefully shuts down the HTTP server.
// Waits up to 30 seconds for active connections to complete.
func (s *Server) Stop() error {
	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("Error shutting down HTTP server", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped successfully")
	return nil
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// loggingMiddleware creates a structured logging middleware for HTTP
// requests and feeds the per-route duration histogram.
func (s *Server) loggingMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			duration := time.Since(start)
			route := chi.RouteContext(r.Context()).RoutePattern()
			if route != "" {
				metrics.RequestDuration.WithLabelValues(route).Observe(duration.Seconds())
			}

			s.logger.Info("HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", duration,
				"ip", r.RemoteAddr,
			)
		})
	}
}
