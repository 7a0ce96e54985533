package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/itbasis/go-clock"

	"github.com/albapepper/bolao/internal/provider"
	"github.com/albapepper/bolao/internal/store"
)

const defaultBatchSize = 100

// Provider is the match-data source. *sofascore.FootballHandler implements it.
type Provider interface {
	SearchTournaments(ctx context.Context, query string) ([]provider.Tournament, error)
	GetTournament(ctx context.Context, tournamentID int) (*provider.Tournament, error)
	GetSeasons(ctx context.Context, tournamentID int) ([]provider.Season, error)
	GetRounds(ctx context.Context, tournamentID, seasonID int) (*provider.RoundSet, error)
	GetSeasonEvents(ctx context.Context, tournamentID, seasonID int) ([]provider.Event, error)
	GetRoundEvents(ctx context.Context, tournamentID, seasonID, round int, slug string) ([]provider.Event, error)
	GetStandings(ctx context.Context, tournamentID, seasonID int) ([]provider.StandingRow, error)
	GetSquad(ctx context.Context, teamID int) ([]provider.Player, error)
	GetTeamLogo(ctx context.Context, teamID int) ([]byte, string, error)
}

// LogoStore mirrors team logos and returns their public URL.
type LogoStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// Runner executes admin actions. It is safe for concurrent use.
type Runner struct {
	store     store.Store
	provider  Provider
	logos     LogoStore
	clock     clock.Clock
	batchSize int
	onChange  func(seasonID int64)
	logger    *slog.Logger
}

func NewRunner(st store.Store, p Provider, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		store:     st,
		provider:  p,
		clock:     clock.New(),
		batchSize: defaultBatchSize,
		logger:    logger,
	}
}

// WithLogoStore enables logo mirroring for import_teams.
func (r *Runner) WithLogoStore(l LogoStore) *Runner {
	r.logos = l
	return r
}

func (r *Runner) WithBatchSize(n int) *Runner {
	if n > 0 {
		r.batchSize = n
	}
	return r
}

// OnSeasonChange registers fn to run after an action changed a season's
// matches, points or prize pool. The API uses it to drop cached responses.
func (r *Runner) OnSeasonChange(fn func(seasonID int64)) *Runner {
	r.onChange = fn
	return r
}

func (r *Runner) changed(seasonID int64) {
	if r.onChange != nil {
		r.onChange(seasonID)
	}
}

func (r *Runner) WithClock(c clock.Clock) *Runner {
	if c != nil {
		r.clock = c
	}
	return r
}

// SeasonRef identifies a season either by local id or by SofaScore id.
// The local id wins when both are set.
type SeasonRef struct {
	LocalID     int64
	SofascoreID int
}

func (ref SeasonRef) String() string {
	if ref.LocalID != 0 {
		return fmt.Sprintf("season %d", ref.LocalID)
	}
	return fmt.Sprintf("sofascore season %d", ref.SofascoreID)
}

// season resolves ref against the store. The season must have been set up.
func (r *Runner) season(ctx context.Context, ref SeasonRef) (*store.Season, error) {
	var (
		s   *store.Season
		err error
	)
	switch {
	case ref.LocalID > 0:
		s, err = r.store.GetSeason(ctx, ref.LocalID)
	case ref.SofascoreID > 0:
		s, err = r.store.GetSeasonBySofascoreID(ctx, ref.SofascoreID)
	default:
		return nil, fmt.Errorf("%w: season_id or local_season_id is required", ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", ref, err)
	}
	return s, nil
}

// chunks calls fn with consecutive slices of at most size items. It stops at
// the first error and wraps it in a BatchError carrying the processed count.
func chunks[T any](items []T, size int, fn func([]T) (int, error)) (int, error) {
	processed := 0
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		n, err := fn(items[start:end])
		if err != nil {
			return processed, &BatchError{Processed: processed, Err: err}
		}
		processed += n
	}
	return processed, nil
}

// isNotFound reports provider or store misses.
func isNotFound(err error) bool {
	return errors.Is(err, provider.ErrNotFound) || errors.Is(err, store.ErrNotFound)
}
