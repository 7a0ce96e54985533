// Package maintenance runs periodic background tasks as Go tickers.
// All scheduled work is driven from the API process since it is already a
// persistent, long-running service (required for LISTEN/NOTIFY).
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/albapepper/bolao/internal/config"
)

// Config controls maintenance task intervals. Zero duration disables a task.
type Config struct {
	AutoSyncInterval       time.Duration // Score refresh of overdue matches
	PrizeReconcileInterval time.Duration // Prize pool recompute of current seasons
}

// ConfigFrom derives task intervals from the service configuration.
func ConfigFrom(cfg *config.Config) Config {
	c := Config{PrizeReconcileInterval: cfg.PrizeReconcileEvery}
	if cfg.AutoSyncEnabled {
		c.AutoSyncInterval = cfg.AutoSyncInterval
	}
	return c
}

// Tasks are the jobs the tickers run. A nil task is skipped.
type Tasks struct {
	AutoSync       func(ctx context.Context)
	ReconcilePools func(ctx context.Context)
}

// Start launches all configured maintenance tickers. Blocks until ctx is
// cancelled. Intended to be called with `go`.
func Start(ctx context.Context, cfg Config, tasks Tasks, logger *slog.Logger) {
	logger = logger.With("component", "maintenance")
	logger.Info("Maintenance tickers started",
		"auto_sync", cfg.AutoSyncInterval,
		"prize_reconcile", cfg.PrizeReconcileInterval)

	tickers := make([]*time.Ticker, 0, 2)
	defer func() {
		for _, t := range tickers {
			t.Stop()
		}
	}()

	if cfg.AutoSyncInterval > 0 && tasks.AutoSync != nil {
		t := time.NewTicker(cfg.AutoSyncInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, func() { tasks.AutoSync(ctx) })
	}

	if cfg.PrizeReconcileInterval > 0 && tasks.ReconcilePools != nil {
		t := time.NewTicker(cfg.PrizeReconcileInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, func() { tasks.ReconcilePools(ctx) })
	}

	<-ctx.Done()
	logger.Info("Maintenance tickers stopped")
}

// runLoop calls fn on every tick. A slow run makes the ticker drop ticks
// rather than overlap runs.
func runLoop(ctx context.Context, ch <-chan time.Time, fn func()) {
	for {
		select {
		case <-ch:
			fn()
		case <-ctx.Done():
			return
		}
	}
}
