// Storefront Proxy - serves a headless storefront API over VTEX.
// Designed for Cloud Run deployment with stateless operation.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"storefront-proxy/internal/adapter"
	"storefront-proxy/internal/cache"
	"storefront-proxy/internal/config"
	"storefront-proxy/internal/handler"
	"storefront-proxy/internal/loader"
	"storefront-proxy/internal/middleware"
	"storefront-proxy/internal/reconcile"
	"storefront-proxy/internal/session"
	"storefront-proxy/internal/storefront"
	"storefront-proxy/internal/transport"
	"storefront-proxy/internal/vtex"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Initialize structured logger
	logger := initLogger()

	// Load configuration
	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger.Info("configuration loaded",
		slog.String("store_id", cfg.StoreID),
		slog.String("account", cfg.Store.Account),
		slog.String("store_environment", cfg.Store.Environment),
		slog.String("channel", cfg.Store.Channel),
		slog.String("environment", cfg.Environment),
		slog.String("api_version", cfg.APIVersion),
	)

	platform, closeCache, err := createPlatform(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("creating platform: %w", err)
	}
	defer closeCache()

	// Request-scoped batching; one set of loaders per request.
	loaders := loader.NewFactory(platform, platform, cfg.Loaders())
	validator := reconcile.NewValidator(platform, loader.ContextProducts{}, logger)
	svc := storefront.New(platform, platform, validator, loaders,
		storefront.Config{Channel: cfg.Store.Channel}, logger)

	h := handler.New(svc, cfg.Session(), logger)

	// Setup routes
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	// Apply middleware chain: recovery → request id → logging → session → loaders
	// Recovery must be outermost to catch panics from logging middleware
	// Session rejects malformed Store-Context headers before any upstream call
	httpHandler := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logging(logger),
		session.Middleware(cfg.Session(), logger),
		middleware.Loaders(loaders),
	)(mux)

	// Create HTTP server with timeouts
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpHandler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Channel for shutdown signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Channel for server errors
	serverErr := make(chan error, 1)

	// Start server in goroutine
	go func() {
		logger.Info("server starting",
			slog.String("port", cfg.Port),
			slog.String("addr", server.Addr),
		)
		serverErr <- server.ListenAndServe()
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-serverErr:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-shutdown:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		// Give outstanding requests time to complete
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			// Force close if graceful shutdown fails
			server.Close()
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	logger.Info("server stopped")
	return nil
}

// createPlatform builds the VTEX client and, when REDIS_ADDR is set, puts the
// catalog lookups behind the Redis cache. The returned func releases the
// cache connection.
func createPlatform(ctx context.Context, cfg *config.Config, logger *slog.Logger) (adapter.Platform, func(), error) {
	rt, err := transport.New(transport.Options{Fingerprint: cfg.TLSFingerprint})
	if err != nil {
		return nil, nil, err
	}

	client, err := vtex.New(cfg.VTEX(rt, logger))
	if err != nil {
		return nil, nil, err
	}

	if cfg.RedisAddr == "" {
		logger.Info("catalog cache disabled")
		return client, func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	// A cache outage only costs latency; lookups fall through to VTEX.
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("catalog cache unreachable",
			slog.String("addr", cfg.RedisAddr),
			slog.String("error", err.Error()))
	}

	catalog := cache.NewCatalog(client, cache.NewRedisStore(rdb, cfg.CatalogCacheTTL/10),
		cfg.Store.Account, cfg.CatalogCacheTTL, logger)

	logger.Info("catalog cache enabled",
		slog.String("addr", cfg.RedisAddr),
		slog.Duration("ttl", cfg.CatalogCacheTTL))

	return adapter.Override(client, catalog), func() { rdb.Close() }, nil
}

// initLogger creates a structured logger configured for the environment.
// Production uses JSON format for GCP Cloud Logging compatibility.
// Development uses text format for readability.
func initLogger() *slog.Logger {
	level := slog.LevelInfo
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if err := level.UnmarshalText([]byte(v)); err != nil {
			level = slog.LevelInfo
		}
	}

	opts := &slog.HandlerOptions{
		Level: level,
		// Add source location in debug mode
		AddSource: level == slog.LevelDebug,
	}

	// JSON for production (Cloud Logging compatible), text for development
	if os.Getenv("ENVIRONMENT") == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
