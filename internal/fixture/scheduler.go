package fixture

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/itbasis/go-clock"
	"golang.org/x/sync/errgroup"

	"github.com/albapepper/bolao/internal/seed"
	"github.com/albapepper/bolao/internal/store"
)

// Scheduler syncs seasons with matches that kicked off more than Delay ago
// and still have no final result.
type Scheduler struct {
	store   PendingLister
	syncer  Syncer
	clock   clock.Clock
	delay   time.Duration
	workers int
	logger  *slog.Logger
}

func NewScheduler(st PendingLister, syncer Syncer, delay time.Duration, workers int, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if workers < 1 {
		workers = defaultWorkers
	}
	return &Scheduler{
		store:   st,
		syncer:  syncer,
		clock:   clock.New(),
		delay:   delay,
		workers: workers,
		logger:  logger.With("component", "fixture"),
	}
}

// WithClock replaces the clock used to compute the kickoff cutoff.
func (s *Scheduler) WithClock(c clock.Clock) *Scheduler {
	s.clock = c
	return s
}

// ProcessPending syncs every pending season with a bounded worker pool. A
// failing season is recorded and does not stop the others.
func (s *Scheduler) ProcessPending(ctx context.Context) SchedulerResult {
	start := time.Now()
	var result SchedulerResult

	cutoff := s.clock.Now().Add(-s.delay)
	pending, err := s.store.PendingSeasons(ctx, cutoff)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("list pending seasons: %v", err))
		result.Duration = time.Since(start)
		return result
	}

	result.SeasonsFound = len(pending)
	if len(pending) == 0 {
		s.logger.Debug("No pending seasons to sync", "cutoff", cutoff)
		result.Duration = time.Since(start)
		return result
	}
	s.logger.Info("Found pending seasons", "count", len(pending), "cutoff", cutoff)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, ps := range pending {
		g.Go(func() error {
			r := s.syncSeason(gctx, ps)

			mu.Lock()
			defer mu.Unlock()
			result.Results = append(result.Results, r)
			result.MatchesUpdated += r.MatchesUpdated
			result.MatchesScored += r.MatchesScored
			if r.Success {
				result.SeasonsSucceeded++
			} else {
				result.SeasonsFailed++
				result.Errors = append(result.Errors, fmt.Sprintf("season %d: %s", r.SeasonID, r.Error))
			}
			return nil
		})
	}
	_ = g.Wait()

	result.Duration = time.Since(start)
	s.logger.Info("Auto sync complete", "summary", result.Summary())
	return result
}

func (s *Scheduler) syncSeason(ctx context.Context, ps store.PendingSeason) Result {
	start := time.Now()
	r := Result{SeasonID: ps.SeasonID, PendingMatches: ps.PendingMatches}
	ref := seed.SeasonRef{LocalID: ps.SeasonID}

	updated, err := s.syncer.UpdatePendingScores(ctx, ref)
	if updated != nil {
		r.MatchesUpdated = updated.MatchesUpdated
	}
	if err != nil {
		r.Error = fmt.Sprintf("update scores: %v", err)
		r.Duration = time.Since(start)
		s.logger.Warn("Season sync failed", "season_id", ps.SeasonID, "error", err)
		return r
	}

	scored, err := s.syncer.CalculateScores(ctx, ref)
	if scored != nil {
		r.MatchesScored = scored.MatchesScored
	}
	if err != nil {
		r.Error = fmt.Sprintf("calculate scores: %v", err)
		r.Duration = time.Since(start)
		s.logger.Warn("Season scoring failed", "season_id", ps.SeasonID, "error", err)
		return r
	}

	r.Success = true
	r.Duration = time.Since(start)
	s.logger.Info("Season synced", "summary", r.Summary())
	return r
}
