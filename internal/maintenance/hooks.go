package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/albapepper/bolao/internal/prize"
	"github.com/albapepper/bolao/internal/store"
)

// SeasonLister lists the seasons being played. store.Store satisfies it.
type SeasonLister interface {
	ListCurrentSeasons(ctx context.Context) ([]store.Season, error)
}

// PoolRecomputer rebuilds a season's prize pool. *seed.Runner satisfies it.
type PoolRecomputer interface {
	RecomputePrizePool(ctx context.Context, seasonID int64) (prize.Pool, error)
}

// ReconcilePrizePools recomputes the prize pool of every current season from
// its payments and deposits. Entries changed outside the admin routes are
// picked up here. Returns the number of seasons refreshed.
func ReconcilePrizePools(ctx context.Context, seasons SeasonLister, pools PoolRecomputer, logger *slog.Logger) (int, error) {
	current, err := seasons.ListCurrentSeasons(ctx)
	if err != nil {
		return 0, fmt.Errorf("list current seasons: %w", err)
	}

	done := 0
	for _, s := range current {
		start := time.Now()
		p, err := pools.RecomputePrizePool(ctx, s.ID)
		dur := time.Since(start).Round(time.Millisecond)
		if err != nil {
			logger.Warn("Failed to reconcile prize pool",
				"season_id", s.ID, "duration", dur, "error", err)
			continue
		}
		done++
		logger.Debug("Reconciled prize pool",
			"season_id", s.ID, "total_cents", p.TotalCents(), "duration", dur)
	}
	return done, nil
}
