package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/tabcheck/internal/config"
	"github.com/JonMunkholm/tabcheck/internal/core"
	"github.com/JonMunkholm/tabcheck/internal/logging"
	"github.com/JonMunkholm/tabcheck/internal/web"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	rule, err := core.ParseSentinelRule(cfg.Profile.SentinelRule)
	if err != nil {
		slog.Error("invalid sentinel rule", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	opts := core.Options{
		DataDir:             cfg.Storage.DataDir,
		MaxRows:             cfg.Profile.MaxRows,
		MaxErrorsPerColumn:  cfg.Profile.MaxErrorsPerColumn,
		Workers:             cfg.Profile.Workers,
		SentinelRule:        rule,
		CacheTTL:            cfg.Cache.MemoryTTL,
		CacheCleanup:        cfg.Cache.CleanupInterval,
		MaxConcurrentChecks: cfg.Check.MaxConcurrent,
		CheckWaitTime:       cfg.Check.MaxWaitTime,
		CheckTimeout:        cfg.Check.Timeout,
	}

	// Check history is optional
	if cfg.Database.Enabled() {
		pool, err := openPool(ctx, cfg.Database)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		history := core.NewHistory(pool)
		if err := history.EnsureSchema(ctx); err != nil {
			slog.Error("failed to prepare history schema", "error", err)
			os.Exit(1)
		}
		opts.History = history
		slog.Info("check history enabled")
	}

	service, err := core.NewService(opts)
	if err != nil {
		slog.Error("failed to create service", "error", err)
		os.Exit(1)
	}

	server, err := web.NewServer(service, cfg)
	if err != nil {
		slog.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	// Background jobs stop on shutdown
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go service.StartHistoryPruner(jobCtx, core.RetentionConfig{
		MaxAge:   cfg.Database.HistoryRetention,
		Interval: cfg.Database.HistoryPruneInterval,
	})

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Let in-flight checks finish so their results reach the cache
		if status := service.LimiterStatus(); status.Active > 0 {
			slog.Info("waiting for checks to complete", "active", status.Active)
			if err := service.WaitForChecks(shutdownCtx); err != nil {
				slog.Warn("checks did not complete in time", "error", err)
			} else {
				slog.Info("all checks completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr(), "data_dir", cfg.Storage.DataDir)
	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// openPool connects to Postgres with the configured pool limits.
func openPool(ctx context.Context, db config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(db.URL)
	if err != nil {
		return nil, err
	}
	poolConfig.MaxConns = int32(db.MaxConns)
	poolConfig.MinConns = int32(db.MinConns)
	poolConfig.MaxConnLifetime = db.MaxConnLifetime
	poolConfig.MaxConnIdleTime = db.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
