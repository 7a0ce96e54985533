package seed

import (
	"context"
	"fmt"
	"sort"

	"github.com/albapepper/bolao/internal/provider"
	"github.com/albapepper/bolao/internal/store"
)

// ImportMatches writes every match of a season, creating the teams first.
func (r *Runner) ImportMatches(ctx context.Context, ref SeasonRef) (*SeedResult, error) {
	season, err := r.season(ctx, ref)
	if err != nil {
		return nil, err
	}

	r.logger.Info("Importing season matches", "season_id", season.ID, "sofascore_id", season.SofascoreID)
	events, err := r.provider.GetSeasonEvents(ctx, season.TournamentSofascoreID, season.SofascoreID)
	if err != nil {
		return nil, fmt.Errorf("fetch season events: %w", err)
	}
	return r.writeEvents(ctx, season, events)
}

// ImportRoundMatches writes the matches of one round. slug is required by
// SofaScore for named knockout rounds only.
func (r *Runner) ImportRoundMatches(ctx context.Context, ref SeasonRef, round int, slug string) (*SeedResult, error) {
	if round <= 0 {
		return nil, fmt.Errorf("%w: round is required", ErrInvalidInput)
	}
	season, err := r.season(ctx, ref)
	if err != nil {
		return nil, err
	}

	r.logger.Info("Importing round matches", "season_id", season.ID, "round", round, "slug", slug)
	events, err := r.provider.GetRoundEvents(ctx, season.TournamentSofascoreID, season.SofascoreID, round, slug)
	if err != nil {
		return nil, fmt.Errorf("fetch round %d events: %w", round, err)
	}
	return r.writeEvents(ctx, season, events)
}

func (r *Runner) writeEvents(ctx context.Context, season *store.Season, events []provider.Event) (*SeedResult, error) {
	result := &SeedResult{}

	r.logger.Info("Phase 1/2: Seeding teams...", "events", len(events))
	teams := eventTeams(events)
	n, err := chunks(teams, r.batchSize, func(batch []provider.Team) (int, error) {
		return r.store.UpsertTeams(ctx, batch)
	})
	result.Teams = n
	if err != nil {
		return result, fmt.Errorf("save teams: %w", err)
	}

	r.logger.Info("Phase 2/2: Seeding matches...")
	n, err = chunks(events, r.batchSize, func(batch []provider.Event) (int, error) {
		return r.store.UpsertMatches(ctx, season.ID, batch)
	})
	result.Matches = n
	if err != nil {
		return result, fmt.Errorf("save matches: %w", err)
	}

	r.changed(season.ID)
	r.logger.Info("Matches imported", "season_id", season.ID, "summary", result.Summary())
	return result, nil
}

// UpdateMatchScores refreshes status and score of stored matches from the
// full season listing.
func (r *Runner) UpdateMatchScores(ctx context.Context, ref SeasonRef) (*SeedResult, error) {
	season, err := r.season(ctx, ref)
	if err != nil {
		return nil, err
	}
	events, err := r.provider.GetSeasonEvents(ctx, season.TournamentSofascoreID, season.SofascoreID)
	if err != nil {
		return nil, fmt.Errorf("fetch season events: %w", err)
	}
	return r.applyScores(ctx, season, events)
}

// UpdatePendingScores refreshes only the rounds that still hold matches
// without a final result kicked off before the clock's now. It is the
// cheaper variant used by the background sync.
func (r *Runner) UpdatePendingScores(ctx context.Context, ref SeasonRef) (*SeedResult, error) {
	season, err := r.season(ctx, ref)
	if err != nil {
		return nil, err
	}

	pending, err := r.store.ListMatches(ctx, store.MatchFilter{
		SeasonID: season.ID,
		Statuses: []provider.EventStatus{provider.StatusScheduled, provider.StatusLive},
	})
	if err != nil {
		return nil, fmt.Errorf("list pending matches: %w", err)
	}

	now := r.clock.Now()
	// Knockout phases can reuse a round number under a different slug.
	seen := make(map[provider.Round]bool)
	var rounds []provider.Round
	for _, m := range pending {
		key := provider.Round{Number: m.Round, Slug: m.RoundSlug}
		if m.StartTime.After(now) || seen[key] {
			continue
		}
		seen[key] = true
		rounds = append(rounds, key)
	}
	if len(rounds) == 0 {
		return &SeedResult{}, nil
	}
	sort.Slice(rounds, func(i, j int) bool {
		if rounds[i].Number != rounds[j].Number {
			return rounds[i].Number < rounds[j].Number
		}
		return rounds[i].Slug < rounds[j].Slug
	})

	result := &SeedResult{}
	var events []provider.Event
	for _, rd := range rounds {
		evs, err := r.provider.GetRoundEvents(ctx, season.TournamentSofascoreID, season.SofascoreID, rd.Number, rd.Slug)
		if err != nil {
			result.AddErrorf("fetch round %d %q: %v", rd.Number, rd.Slug, err)
			continue
		}
		events = append(events, evs...)
	}

	applied, err := r.applyScores(ctx, season, events)
	if applied != nil {
		result.Add(*applied)
	}
	return result, err
}

func (r *Runner) applyScores(ctx context.Context, season *store.Season, events []provider.Event) (*SeedResult, error) {
	result := &SeedResult{}
	n, err := chunks(events, r.batchSize, func(batch []provider.Event) (int, error) {
		return r.store.UpdateMatchScores(ctx, batch)
	})
	result.MatchesUpdated = n
	if err != nil {
		return result, fmt.Errorf("update scores: %w", err)
	}
	if n > 0 {
		r.changed(season.ID)
	}
	r.logger.Info("Match scores updated", "season_id", season.ID, "events", len(events), "updated", n)
	return result, nil
}

// eventTeams returns each team playing in events once, in first-seen order.
func eventTeams(events []provider.Event) []provider.Team {
	seen := make(map[int]bool, len(events))
	var out []provider.Team
	for _, e := range events {
		for _, t := range []provider.Team{e.HomeTeam, e.AwayTeam} {
			if t.ID == 0 || seen[t.ID] {
				continue
			}
			seen[t.ID] = true
			out = append(out, t)
		}
	}
	return out
}
