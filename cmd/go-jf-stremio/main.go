// Command go-jf-stremio serves a Stremio addon that resolves catalog ids
// against a personal Jellyfin server and answers with ranked direct-play
// streams. Server credentials are supplied per request by the installing
// client; the process itself holds no account state.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/time/rate"

	"github.com/opd-ai/go-jf-stremio/internal/jellyfin"
	"github.com/opd-ai/go-jf-stremio/internal/resolver"
	"github.com/opd-ai/go-jf-stremio/internal/server"
	"github.com/opd-ai/go-jf-stremio/pkg/config"
)

var version = "1.0.0"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	logger.Info("Starting go-jf-stremio",
		"version", version,
		"host", cfg.Server.Host,
		"port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// One connection pool and one outbound budget, shared by the per-request
	// clients built for each caller's server.
	httpClient := &http.Client{Timeout: cfg.Upstream.Timeout}
	var limiter *rate.Limiter
	if rps := cfg.Upstream.RequestsPerSecond; rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), int(rps)+1)
	}

	newCatalog := func(creds jellyfin.Credentials) resolver.Catalog {
		return jellyfin.New(creds, jellyfin.Options{
			RetryAttempts: cfg.Upstream.RetryAttempts,
			HTTPClient:    httpClient,
			Limiter:       limiter,
		}, logger)
	}

	svc := resolver.New(newCatalog, logger)
	srv := server.New(cfg, svc, logger)

	if err := srv.Start(ctx); err != nil {
		logger.Error("Server exited with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Shutdown complete")
}

// loadConfig reads the config file when one is given and falls back to
// defaults otherwise.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// newLogger builds the process logger from the logging configuration.
func newLogger(cfg config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.GetLogLevel()}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}
