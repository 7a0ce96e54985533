// Package fixture finds seasons whose matches should have a result by now and
// refreshes their scores from SofaScore. It backs the background auto sync.
package fixture

import (
	"context"
	"fmt"
	"time"

	"github.com/albapepper/bolao/internal/seed"
	"github.com/albapepper/bolao/internal/store"
)

const defaultWorkers = 2

// PendingLister finds seasons with overdue results. store.Store satisfies it.
type PendingLister interface {
	PendingSeasons(ctx context.Context, startedBefore time.Time) ([]store.PendingSeason, error)
}

// Syncer refreshes and scores one season. *seed.Runner satisfies it.
type Syncer interface {
	UpdatePendingScores(ctx context.Context, ref seed.SeasonRef) (*seed.SeedResult, error)
	CalculateScores(ctx context.Context, ref seed.SeasonRef) (*seed.SeedResult, error)
}

// Result tracks the outcome of syncing a single season.
type Result struct {
	SeasonID       int64
	PendingMatches int
	MatchesUpdated int
	MatchesScored  int
	Success        bool
	Error          string
	Duration       time.Duration
}

// Summary returns a human-readable summary.
func (r *Result) Summary() string {
	status := "ok"
	if !r.Success {
		status = "FAILED"
	}
	return fmt.Sprintf("season=%d pending=%d updated=%d scored=%d status=%s dur=%s",
		r.SeasonID, r.PendingMatches, r.MatchesUpdated, r.MatchesScored,
		status, r.Duration.Round(time.Millisecond))
}

// SchedulerResult tracks the outcome of a full sync run.
type SchedulerResult struct {
	SeasonsFound     int
	SeasonsSucceeded int
	SeasonsFailed    int
	MatchesUpdated   int
	MatchesScored    int
	Duration         time.Duration
	Errors           []string
	Results          []Result
}

// Summary returns a human-readable summary.
func (r *SchedulerResult) Summary() string {
	return fmt.Sprintf(
		"found=%d succeeded=%d failed=%d updated=%d scored=%d dur=%s",
		r.SeasonsFound, r.SeasonsSucceeded, r.SeasonsFailed,
		r.MatchesUpdated, r.MatchesScored, r.Duration.Round(time.Millisecond))
}
