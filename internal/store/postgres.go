package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/itbasis/go-clock"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/albapepper/bolao/internal/config"
	"github.com/albapepper/bolao/internal/db"
	"github.com/albapepper/bolao/internal/provider"
	"github.com/albapepper/bolao/internal/scoring"
)

// Postgres codes mapped onto store errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgNotNullViolation    = "23502"
)

// Postgres implements Store on a pgx pool.
type Postgres struct {
	pool  *db.Pool
	clock clock.Clock
}

// New wraps an open pool.
func New(pool *db.Pool, clk clock.Clock) *Postgres {
	if clk == nil {
		clk = clock.New()
	}
	return &Postgres{pool: pool, clock: clk}
}

// mapErr translates driver errors into store errors, keeping the original
// in the chain.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s", ErrNotFound, pgErr.ConstraintName)
		case pgCheckViolation, pgNotNullViolation:
			return fmt.Errorf("%w: %s", ErrInvalid, pgErr.Message)
		}
	}
	return err
}

// inTx runs fn inside a transaction, rolling back on error.
func (s *Postgres) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// sendBatch executes every queued statement and returns the summed rows affected.
func sendBatch(ctx context.Context, tx pgx.Tx, b *pgx.Batch) (int, error) {
	br := tx.SendBatch(ctx, b)
	defer br.Close()

	total := 0
	for i := 0; i < b.Len(); i++ {
		tag, err := br.Exec()
		if err != nil {
			return total, mapErr(err)
		}
		total += int(tag.RowsAffected())
	}
	return total, nil
}

func (s *Postgres) HealthCheck(ctx context.Context) error {
	return s.pool.HealthCheck(ctx)
}

// --------------------------------------------------------------------------
// Tournaments
// --------------------------------------------------------------------------

func scanTournament(row pgx.Row) (*Tournament, error) {
	var t Tournament
	var format string
	err := row.Scan(&t.ID, &t.SofascoreID, &t.Name, &t.Slug, &t.Category,
		&t.Country, &t.LogoURL, &format, &t.IsActive, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	t.Format = scoring.Format(format)
	return &t, nil
}

func (s *Postgres) UpsertTournament(ctx context.Context, t provider.Tournament, format scoring.Format) (*Tournament, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO `+config.TournamentsTable+` AS t (sofascore_id, name, slug, category, country, logo_url, format)
		VALUES (@id, @name, @slug, @category, @country, @logo, @format)
		ON CONFLICT (sofascore_id) DO UPDATE SET
			name = EXCLUDED.name,
			slug = COALESCE(EXCLUDED.slug, t.slug),
			category = COALESCE(EXCLUDED.category, t.category),
			country = COALESCE(EXCLUDED.country, t.country),
			logo_url = COALESCE(EXCLUDED.logo_url, t.logo_url),
			format = EXCLUDED.format,
			updated_at = NOW()
		RETURNING t.id, t.sofascore_id, t.name, COALESCE(t.slug, ''), COALESCE(t.category, ''),
			COALESCE(t.country, ''), COALESCE(t.logo_url, ''), t.format, t.is_active, t.created_at`,
		pgx.NamedArgs{
			"id":       t.ID,
			"name":     t.Name,
			"slug":     nilEmpty(t.Slug),
			"category": nilEmpty(t.Category),
			"country":  nilEmpty(t.Country),
			"logo":     nilEmpty(t.LogoURL),
			"format":   string(format),
		})

	out, err := scanTournament(row)
	if err != nil {
		return nil, fmt.Errorf("upsert tournament %d: %w", t.ID, mapErr(err))
	}
	return out, nil
}

func (s *Postgres) GetTournamentBySofascoreID(ctx context.Context, sofascoreID int) (*Tournament, error) {
	t, err := scanTournament(s.pool.QueryRow(ctx, "tournament_by_sofascore_id", sofascoreID))
	if err != nil {
		return nil, mapErr(err)
	}
	return t, nil
}

func (s *Postgres) ListTournaments(ctx context.Context) ([]Tournament, error) {
	rows, err := s.pool.Query(ctx, db.TournamentSelect+" ORDER BY t.is_active DESC, t.name")
	if err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}
	defer rows.Close()

	var out []Tournament
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tournament: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// --------------------------------------------------------------------------
// Seasons
// --------------------------------------------------------------------------

func scanSeason(row pgx.Row) (*Season, error) {
	var s Season
	err := row.Scan(&s.ID, &s.TournamentID, &s.SofascoreID, &s.TournamentSofascoreID,
		&s.Name, &s.Year, &s.CurrentRound, &s.TotalRounds, &s.IsCurrent, &s.EntryFeeCents)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Postgres) querySeasons(ctx context.Context, sql string, args ...any) ([]Season, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query seasons: %w", err)
	}
	defer rows.Close()

	var out []Season
	for rows.Next() {
		season, err := scanSeason(rows)
		if err != nil {
			return nil, fmt.Errorf("scan season: %w", err)
		}
		out = append(out, *season)
	}
	return out, rows.Err()
}

// UpsertSeasons writes seasons in provider order; the first one is the
// current season.
func (s *Postgres) UpsertSeasons(ctx context.Context, tournamentID int64, seasons []provider.Season) (int, error) {
	if len(seasons) == 0 {
		return 0, nil
	}

	b := &pgx.Batch{}
	for i, season := range seasons {
		b.Queue(`
			INSERT INTO `+config.SeasonsTable+` AS s (tournament_id, sofascore_id, name, year, is_current)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (sofascore_id) DO UPDATE SET
				tournament_id = EXCLUDED.tournament_id,
				name = EXCLUDED.name,
				year = COALESCE(EXCLUDED.year, s.year),
				is_current = EXCLUDED.is_current,
				updated_at = NOW()`,
			tournamentID, season.ID, season.Name, nilEmpty(season.Year), i == 0)
	}

	var n int
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		var err error
		n, err = sendBatch(ctx, tx, b)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("upsert seasons: %w", err)
	}
	return n, nil
}

func (s *Postgres) SetSeasonRounds(ctx context.Context, seasonID int64, current *int, total int) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE `+config.SeasonsTable+`
		SET current_round = $2, total_rounds = $3, updated_at = NOW()
		WHERE id = $1`, seasonID, current, total)
	if err != nil {
		return fmt.Errorf("set season rounds: %w", mapErr(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) GetSeason(ctx context.Context, id int64) (*Season, error) {
	season, err := scanSeason(s.pool.QueryRow(ctx, "season_by_id", id))
	if err != nil {
		return nil, mapErr(err)
	}
	return season, nil
}

func (s *Postgres) GetSeasonBySofascoreID(ctx context.Context, sofascoreID int) (*Season, error) {
	season, err := scanSeason(s.pool.QueryRow(ctx, "season_by_sofascore_id", sofascoreID))
	if err != nil {
		return nil, mapErr(err)
	}
	return season, nil
}

func (s *Postgres) ListSeasons(ctx context.Context, tournamentID int64) ([]Season, error) {
	return s.querySeasons(ctx, db.SeasonSelect+`
		WHERE s.tournament_id = $1
		ORDER BY s.is_current DESC, s.year DESC NULLS LAST, s.id DESC`, tournamentID)
}

func (s *Postgres) ListCurrentSeasons(ctx context.Context) ([]Season, error) {
	return s.querySeasons(ctx, db.SeasonSelect+`
		WHERE s.is_current AND t.is_active
		ORDER BY s.id`)
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

// nilEmpty returns nil for empty strings so they are stored as NULL.
func nilEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
