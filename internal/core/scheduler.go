package core

// scheduler.go runs history maintenance in the background. The pruner is
// long-running and stops with its context; a failed pass is logged and
// retried on the next tick.

import (
	"context"
	"log/slog"
	"time"
)

// RetentionConfig controls history pruning.
type RetentionConfig struct {
	MaxAge   time.Duration // runs older than this are deleted (default: 90 days)
	Interval time.Duration // how often to prune (default: 24h)
}

func (c RetentionConfig) withDefaults() RetentionConfig {
	if c.MaxAge <= 0 {
		c.MaxAge = 90 * 24 * time.Hour
	}
	if c.Interval <= 0 {
		c.Interval = 24 * time.Hour
	}
	return c
}

// StartHistoryPruner deletes old check runs immediately and then every
// Interval until ctx is cancelled. It returns at once when history is
// not configured.
func (s *Service) StartHistoryPruner(ctx context.Context, cfg RetentionConfig) {
	if s.history == nil {
		return
	}
	cfg = cfg.withDefaults()
	slog.Info("history pruner started", "max_age", cfg.MaxAge, "interval", cfg.Interval)

	s.pruneHistory(ctx, cfg.MaxAge)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("history pruner stopped")
			return
		case <-ticker.C:
			s.pruneHistory(ctx, cfg.MaxAge)
		}
	}
}

// pruneHistory performs one pruning pass.
func (s *Service) pruneHistory(ctx context.Context, maxAge time.Duration) {
	start := time.Now()
	n, err := s.history.Prune(ctx, start.Add(-maxAge))
	if err != nil {
		slog.Error("history prune failed", "error", err)
		return
	}
	slog.Info("pruned check history",
		"runs_deleted", n,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
