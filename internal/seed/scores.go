package seed

import (
	"context"
	"fmt"

	"github.com/albapepper/bolao/internal/prize"
	"github.com/albapepper/bolao/internal/provider"
	"github.com/albapepper/bolao/internal/scoring"
	"github.com/albapepper/bolao/internal/store"
)

var finishedOnly = []provider.EventStatus{provider.StatusFinished}

// CalculateScores scores predictions of finished matches that were not
// calculated yet, then rebuilds the season totals.
func (r *Runner) CalculateScores(ctx context.Context, ref SeasonRef) (*SeedResult, error) {
	season, err := r.season(ctx, ref)
	if err != nil {
		return nil, err
	}

	matches, err := r.store.ListMatches(ctx, store.MatchFilter{
		SeasonID:     season.ID,
		Statuses:     finishedOnly,
		Uncalculated: true,
	})
	if err != nil {
		return nil, fmt.Errorf("list finished matches: %w", err)
	}

	result := &SeedResult{}
	if len(matches) == 0 {
		r.logger.Info("No matches to score", "season_id", season.ID)
		return result, nil
	}

	if err := r.scoreMatches(ctx, matches, result); err != nil {
		return result, err
	}
	users, err := r.store.RebuildSeasonPoints(ctx, season.ID)
	if err != nil {
		return result, fmt.Errorf("rebuild season points: %w", err)
	}
	result.Users = users
	r.changed(season.ID)

	r.logger.Info("Scores calculated", "season_id", season.ID, "summary", result.Summary())
	return result, nil
}

// SyncPredictionsSeason recomputes every prediction of the season from the
// stored results. Points of matches that are no longer finished are cleared.
func (r *Runner) SyncPredictionsSeason(ctx context.Context, ref SeasonRef) (*SeedResult, error) {
	season, err := r.season(ctx, ref)
	if err != nil {
		return nil, err
	}

	r.logger.Info("Phase 1/3: Clearing unfinished predictions...", "season_id", season.ID)
	result := &SeedResult{}
	cleared, err := r.store.ClearUnfinishedPredictionScores(ctx, season.ID)
	if err != nil {
		return nil, fmt.Errorf("clear prediction scores: %w", err)
	}
	result.PredictionsClear = cleared

	r.logger.Info("Phase 2/3: Scoring finished matches...")
	matches, err := r.store.ListMatches(ctx, store.MatchFilter{
		SeasonID: season.ID,
		Statuses: finishedOnly,
	})
	if err != nil {
		return result, fmt.Errorf("list finished matches: %w", err)
	}
	if err := r.scoreMatches(ctx, matches, result); err != nil {
		return result, err
	}

	r.logger.Info("Phase 3/3: Rebuilding season points...")
	users, err := r.store.RebuildSeasonPoints(ctx, season.ID)
	if err != nil {
		return result, fmt.Errorf("rebuild season points: %w", err)
	}
	result.Users = users
	r.changed(season.ID)

	r.logger.Info("Season predictions synced", "season_id", season.ID, "summary", result.Summary())
	return result, nil
}

// CalculateMatch scores one finished match and rebuilds its season totals.
// A match without a final result is skipped.
func (r *Runner) CalculateMatch(ctx context.Context, matchID int64) (*SeedResult, error) {
	m, err := r.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("load match %d: %w", matchID, err)
	}

	result := &SeedResult{}
	if _, ok := m.Final(); !ok {
		r.logger.Debug("Match has no final result, skipping", "match_id", matchID, "status", m.Status)
		return result, nil
	}

	if err := r.scoreMatches(ctx, []store.Match{*m}, result); err != nil {
		return result, err
	}
	users, err := r.store.RebuildSeasonPoints(ctx, m.SeasonID)
	if err != nil {
		return result, fmt.Errorf("rebuild season points: %w", err)
	}
	result.Users = users
	r.changed(m.SeasonID)
	return result, nil
}

// scoreMatches evaluates every prediction of the given finished matches and
// marks the matches calculated once their predictions are written.
func (r *Runner) scoreMatches(ctx context.Context, matches []store.Match, result *SeedResult) error {
	finals := make(map[int64]scoring.Scoreline, len(matches))
	ids := make([]int64, 0, len(matches))
	for _, m := range matches {
		final, ok := m.Final()
		if !ok {
			result.AddErrorf("match %d is finished without a score", m.ID)
			continue
		}
		finals[m.ID] = final
		ids = append(ids, m.ID)
	}
	if len(ids) == 0 {
		return nil
	}

	preds, err := r.store.ListPredictionsForMatches(ctx, ids)
	if err != nil {
		return fmt.Errorf("list predictions: %w", err)
	}

	scores := make([]store.PredictionScore, 0, len(preds))
	for _, p := range preds {
		res := scoring.Evaluate(finals[p.MatchID], p.Scoreline())
		scores = append(scores, store.PredictionScore{
			PredictionID: p.ID,
			Points:       res.Points,
			Exact:        res.Exact,
			OutcomeHit:   res.OutcomeHit,
		})
	}

	n, err := chunks(scores, r.batchSize, func(batch []store.PredictionScore) (int, error) {
		if err := r.store.SetPredictionScores(ctx, batch); err != nil {
			return 0, err
		}
		return len(batch), nil
	})
	result.PredictionsScored += n
	if err != nil {
		return fmt.Errorf("save prediction scores: %w", err)
	}

	if err := r.store.MarkScoresCalculated(ctx, ids); err != nil {
		return fmt.Errorf("mark matches calculated: %w", err)
	}
	result.MatchesScored += len(ids)
	return nil
}

// RecomputePrizePool summarizes the season's payments and deposits into its
// prize pool row.
func (r *Runner) RecomputePrizePool(ctx context.Context, seasonID int64) (prize.Pool, error) {
	entries, err := r.store.ListSeasonEntries(ctx, seasonID)
	if err != nil {
		return prize.Pool{}, fmt.Errorf("list season entries: %w", err)
	}

	in := make([]prize.Entry, len(entries))
	for i, e := range entries {
		in[i] = prize.Entry{AmountCents: e.AmountCents, Status: e.Status}
	}
	pool := prize.Summarize(in)

	if err := r.store.SavePrizePool(ctx, seasonID, pool); err != nil {
		return prize.Pool{}, err
	}
	r.changed(seasonID)
	r.logger.Debug("Prize pool recomputed", "season_id", seasonID, "approved_cents", pool.ApprovedCents)
	return pool, nil
}
