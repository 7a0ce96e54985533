package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/albapepper/bolao/internal/provider"
	"github.com/albapepper/bolao/internal/scoring"
	"github.com/albapepper/bolao/internal/store"
)

// SetupResult is the outcome of setup_tournament.
type SetupResult struct {
	Tournament   *store.Tournament `json:"tournament"`
	Season       *store.Season     `json:"season"`
	Seasons      int               `json:"seasons"`
	Format       scoring.Format    `json:"format"`
	TotalRounds  int               `json:"total_rounds"`
	CurrentRound *int              `json:"current_round,omitempty"`
}

// RoundsResult is the outcome of get_rounds.
type RoundsResult struct {
	Rounds  []provider.Round `json:"rounds"`
	Current *provider.Round  `json:"current_round,omitempty"`
	Format  scoring.Format   `json:"format"`
}

func (r *Runner) SearchTournament(ctx context.Context, query string) ([]provider.Tournament, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", ErrInvalidInput)
	}
	out, err := r.provider.SearchTournaments(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search tournaments: %w", err)
	}
	return out, nil
}

func (r *Runner) GetSeasons(ctx context.Context, tournamentID int) ([]provider.Season, error) {
	if tournamentID <= 0 {
		return nil, fmt.Errorf("%w: tournament_id is required", ErrInvalidInput)
	}
	out, err := r.provider.GetSeasons(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("get seasons of tournament %d: %w", tournamentID, err)
	}
	return out, nil
}

// GetRounds returns the rounds of a season and the format they imply.
func (r *Runner) GetRounds(ctx context.Context, tournamentID, seasonID int) (*RoundsResult, error) {
	if tournamentID <= 0 || seasonID <= 0 {
		return nil, fmt.Errorf("%w: tournament_id and season_id are required", ErrInvalidInput)
	}
	set, err := r.rounds(ctx, tournamentID, seasonID)
	if err != nil {
		return nil, err
	}
	return &RoundsResult{
		Rounds:  set.Rounds,
		Current: set.Current,
		Format:  detectFormat(set.Rounds),
	}, nil
}

// rounds fetches the round list. A season without rounds yields an empty set.
func (r *Runner) rounds(ctx context.Context, tournamentID, seasonID int) (*provider.RoundSet, error) {
	set, err := r.provider.GetRounds(ctx, tournamentID, seasonID)
	if errors.Is(err, provider.ErrNotFound) {
		return &provider.RoundSet{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get rounds of season %d: %w", seasonID, err)
	}
	return set, nil
}

func detectFormat(rounds []provider.Round) scoring.Format {
	infos := make([]scoring.RoundInfo, len(rounds))
	for i, rd := range rounds {
		infos[i] = scoring.RoundInfo{Number: rd.Number, Name: rd.Name}
	}
	return scoring.DetectFormat(infos)
}

// SetupTournament imports a tournament with all its seasons. seasonID picks
// the season whose rounds decide the format; zero means the newest one.
func (r *Runner) SetupTournament(ctx context.Context, tournamentID, seasonID int) (*SetupResult, error) {
	if tournamentID <= 0 {
		return nil, fmt.Errorf("%w: tournament_id is required", ErrInvalidInput)
	}

	r.logger.Info("Setting up tournament", "tournament_id", tournamentID, "season_id", seasonID)

	r.logger.Info("Phase 1/3: Fetching tournament and seasons...")
	t, err := r.provider.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("get tournament %d: %w", tournamentID, err)
	}
	seasons, err := r.provider.GetSeasons(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("get seasons of tournament %d: %w", tournamentID, err)
	}
	if len(seasons) == 0 {
		return nil, fmt.Errorf("tournament %d has no seasons: %w", tournamentID, provider.ErrNotFound)
	}
	if seasonID == 0 {
		seasonID = seasons[0].ID
	} else if !hasSeason(seasons, seasonID) {
		return nil, fmt.Errorf("season %d of tournament %d: %w", seasonID, tournamentID, provider.ErrNotFound)
	}

	r.logger.Info("Phase 2/3: Detecting format...")
	set, err := r.rounds(ctx, tournamentID, seasonID)
	if err != nil {
		return nil, err
	}
	format := detectFormat(set.Rounds)
	r.logger.Info("Format detected", "format", format, "rounds", len(set.Rounds))

	r.logger.Info("Phase 3/3: Writing tournament and seasons...")
	saved, err := r.store.UpsertTournament(ctx, *t, format)
	if err != nil {
		return nil, fmt.Errorf("save tournament: %w", err)
	}
	n, err := r.store.UpsertSeasons(ctx, saved.ID, seasons)
	if err != nil {
		return nil, fmt.Errorf("save seasons: %w", err)
	}
	season, err := r.store.GetSeasonBySofascoreID(ctx, seasonID)
	if err != nil {
		return nil, fmt.Errorf("load season %d: %w", seasonID, err)
	}

	var current *int
	if set.Current != nil {
		c := set.Current.Number
		current = &c
	}
	if err := r.store.SetSeasonRounds(ctx, season.ID, current, len(set.Rounds)); err != nil {
		return nil, fmt.Errorf("save rounds: %w", err)
	}
	season.CurrentRound = current
	season.TotalRounds = len(set.Rounds)
	r.changed(season.ID)

	r.logger.Info("Tournament ready",
		"tournament", saved.Name, "seasons", n, "format", format)

	return &SetupResult{
		Tournament:   saved,
		Season:       season,
		Seasons:      n,
		Format:       format,
		TotalRounds:  len(set.Rounds),
		CurrentRound: current,
	}, nil
}

func hasSeason(seasons []provider.Season, id int) bool {
	for _, s := range seasons {
		if s.ID == id {
			return true
		}
	}
	return false
}
