package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/albapepper/bolao/internal/provider"
	"github.com/albapepper/bolao/internal/standings"
	"github.com/albapepper/bolao/internal/store"
)

// Concurrent provider calls per import_teams run. The client's rate limiter
// still applies on top of this.
const teamFetchConcurrency = 4

// Standings sources.
const (
	SourceProvider = "provider"
	SourceComputed = "computed"
)

// TeamImportOptions selects the optional parts of import_teams.
type TeamImportOptions struct {
	IncludePlayers bool
	UploadLogos    bool
}

// StandingsResult is the outcome of get_standings.
type StandingsResult struct {
	Source string          `json:"source"`
	Rows   []standings.Row `json:"rows"`
}

// ImportTeams writes the teams of a season, optionally with their squads and
// mirrored logos. Teams come from the standings table, falling back to the
// season's matches when the provider has no table (knockout cups).
func (r *Runner) ImportTeams(ctx context.Context, ref SeasonRef, opts TeamImportOptions) (*SeedResult, error) {
	season, err := r.season(ctx, ref)
	if err != nil {
		return nil, err
	}
	result := &SeedResult{}

	r.logger.Info("Phase 1/3: Collecting teams...", "season_id", season.ID)
	teams, err := r.seasonTeams(ctx, season)
	if err != nil {
		return nil, err
	}
	r.logger.Info("Teams found", "count", len(teams))

	if opts.UploadLogos {
		r.logger.Info("Phase 2/3: Mirroring logos...")
		if r.logos == nil {
			result.AddErrorf("logo upload requested but no logo storage is configured")
		} else {
			result.Logos = r.mirrorLogos(ctx, teams, result)
		}
	}

	n, err := chunks(teams, r.batchSize, func(batch []provider.Team) (int, error) {
		return r.store.UpsertTeams(ctx, batch)
	})
	result.Teams = n
	if err != nil {
		return result, fmt.Errorf("save teams: %w", err)
	}

	if opts.IncludePlayers {
		r.logger.Info("Phase 3/3: Seeding squads...")
		players, err := r.squads(ctx, teams, result)
		if err != nil {
			return result, err
		}
		n, err := chunks(players, r.batchSize, func(batch []provider.Player) (int, error) {
			return r.store.UpsertPlayers(ctx, batch)
		})
		result.Players = n
		if err != nil {
			return result, fmt.Errorf("save players: %w", err)
		}
	}

	r.logger.Info("Teams imported", "season_id", season.ID, "summary", result.Summary())
	return result, nil
}

func (r *Runner) seasonTeams(ctx context.Context, season *store.Season) ([]provider.Team, error) {
	rows, err := r.provider.GetStandings(ctx, season.TournamentSofascoreID, season.SofascoreID)
	if err != nil && !isNotFound(err) {
		return nil, fmt.Errorf("fetch standings: %w", err)
	}
	if len(rows) > 0 {
		seen := make(map[int]bool, len(rows))
		teams := make([]provider.Team, 0, len(rows))
		for _, row := range rows {
			if seen[row.Team.ID] {
				continue
			}
			seen[row.Team.ID] = true
			teams = append(teams, row.Team)
		}
		return teams, nil
	}

	events, err := r.provider.GetSeasonEvents(ctx, season.TournamentSofascoreID, season.SofascoreID)
	if err != nil {
		return nil, fmt.Errorf("fetch season events: %w", err)
	}
	return eventTeams(events), nil
}

// mirrorLogos copies each team logo to the logo store and points the team at
// the mirrored URL. Failures are recorded and leave the provider URL in place.
func (r *Runner) mirrorLogos(ctx context.Context, teams []provider.Team, result *SeedResult) int {
	var (
		mu       sync.Mutex
		uploaded int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(teamFetchConcurrency)

	for i := range teams {
		g.Go(func() error {
			t := &teams[i]
			body, contentType, err := r.provider.GetTeamLogo(gctx, t.ID)
			if err == nil {
				var url string
				url, err = r.logos.Upload(gctx, fmt.Sprintf("teams/%d.png", t.ID), contentType, bytes.NewReader(body))
				if err == nil {
					t.LogoURL = url
				}
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.AddErrorf("logo team %d: %v", t.ID, err)
				return nil
			}
			uploaded++
			return nil
		})
	}
	g.Wait() //nolint:errcheck
	return uploaded
}

// squads fetches every team's squad concurrently. Teams unknown to the
// provider are skipped; other errors are recorded per team.
func (r *Runner) squads(ctx context.Context, teams []provider.Team, result *SeedResult) ([]provider.Player, error) {
	var (
		mu      sync.Mutex
		players []provider.Player
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(teamFetchConcurrency)

	for _, t := range teams {
		g.Go(func() error {
			squad, err := r.provider.GetSquad(gctx, t.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case errors.Is(err, provider.ErrNotFound):
				r.logger.Debug("No squad for team", "team_id", t.ID)
			case err != nil:
				result.AddErrorf("squad team %d: %v", t.ID, err)
			default:
				players = append(players, squad...)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return players, nil
}

// GetStandings returns the provider's league table, or a table computed from
// stored results when the provider has none.
func (r *Runner) GetStandings(ctx context.Context, ref SeasonRef) (*StandingsResult, error) {
	season, err := r.season(ctx, ref)
	if err != nil {
		return nil, err
	}

	rows, err := r.provider.GetStandings(ctx, season.TournamentSofascoreID, season.SofascoreID)
	if err != nil && !isNotFound(err) {
		return nil, fmt.Errorf("fetch standings: %w", err)
	}
	if len(rows) > 0 {
		out := make([]standings.Row, len(rows))
		for i, row := range rows {
			out[i] = standings.Row{
				Position:     row.Position,
				Group:        row.Group,
				TeamID:       row.Team.ID,
				TeamName:     row.Team.Name,
				Played:       row.Played,
				Wins:         row.Wins,
				Draws:        row.Draws,
				Losses:       row.Losses,
				GoalsFor:     row.GoalsFor,
				GoalsAgainst: row.GoalsAgainst,
				GoalDiff:     row.GoalsFor - row.GoalsAgainst,
				Points:       row.Points,
			}
		}
		return &StandingsResult{Source: SourceProvider, Rows: out}, nil
	}

	computed, err := r.LocalStandings(ctx, season.ID)
	if err != nil {
		return nil, err
	}
	return &StandingsResult{Source: SourceComputed, Rows: computed}, nil
}

// LocalStandings builds the table from the season's finished matches.
// Team ids in the rows are local ids.
func (r *Runner) LocalStandings(ctx context.Context, seasonID int64) ([]standings.Row, error) {
	matches, err := r.store.ListMatches(ctx, store.MatchFilter{
		SeasonID: seasonID,
		Statuses: finishedOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("list finished matches: %w", err)
	}

	results := make([]standings.Result, 0, len(matches))
	for _, m := range matches {
		final, ok := m.Final()
		if !ok {
			continue
		}
		results = append(results, standings.Result{
			HomeTeamID:   int(m.HomeTeamID),
			HomeTeamName: m.HomeTeamName,
			AwayTeamID:   int(m.AwayTeamID),
			AwayTeamName: m.AwayTeamName,
			HomeScore:    final.Home,
			AwayScore:    final.Away,
		})
	}
	return standings.Build(results), nil
}
