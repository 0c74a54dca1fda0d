package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hoofprint/hoofprint/internal/adapters/http/api"
	app "github.com/hoofprint/hoofprint/internal/app"
	"github.com/hoofprint/hoofprint/internal/config"
	"github.com/hoofprint/hoofprint/pkg/logger"
	"github.com/hoofprint/hoofprint/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 10 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		// Logger isn't available yet, fall back to stderr
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Create and start the coordinator with configuration options
	svc := app.New(
		app.WithLogger(loggerInstance),
		app.WithListTTL(time.Duration(cfg.CacheListTTLS)*time.Second),
		app.WithPageTTL(time.Duration(cfg.CachePageTTLS)*time.Second),
		app.WithDetailTTL(time.Duration(cfg.CacheDetailTTLS)*time.Second),
		app.WithAnalyticsTTL(time.Duration(cfg.CacheAnalyticsTTLS)*time.Second),
		app.WithSweepInterval(time.Duration(cfg.CacheSweepIntervalS)*time.Second),
		app.WithTrailBatchSize(cfg.TrailBatchSize),
		app.WithRegistrationBatchSize(cfg.RegistrationBatchSize),
		app.WithDebounceWindow(cfg.DebounceWindow()),
		app.WithActorCallTimeout(cfg.ActorCallTimeout()),
		app.WithMaxPageLimit(cfg.MaxPageLimit),
		app.WithIndexPageSize(cfg.IndexPageSize),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	// Start service metrics updater
	go startServiceMetricsUpdater(ctx, svc)

	// HTTP mux and routes.
	mux := http.NewServeMux()

	// Register business API routes with the coordinator dependency.
	apiServer := api.NewServer(svc, svc)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// startServiceMetricsUpdater starts a background goroutine that refreshes
// coordinator gauges from the live stats snapshot.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateServiceMetrics updates coordinator-level metrics.
func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()

	// GetStats already refreshes per-kind entity gauges; mirror the cache
	// size here so the gauge tracks lazy expiry between sweeps.
	if entries, ok := stats["cacheEntries"].(int); ok {
		metrics.UpdateCacheSize(entries)
	}
}
