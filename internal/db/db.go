// Package db provides a pgxpool-based connection pool with prepared statement
// registration and health checking.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/albapepper/bolao/internal/config"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	if cfg.DBPoolMinConns > 0 {
		poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	}
	if cfg.DBPoolMaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	}
	if cfg.DBPoolMaxLife > 0 {
		poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	}
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// --------------------------------------------------------------------------
// Shared SELECT fragments. Column order is the scan order used by store.
// --------------------------------------------------------------------------

const TournamentSelect = `
	SELECT t.id, t.sofascore_id, t.name, COALESCE(t.slug, ''), COALESCE(t.category, ''),
		COALESCE(t.country, ''), COALESCE(t.logo_url, ''), t.format, t.is_active, t.created_at
	FROM ` + config.TournamentsTable + ` t`

const SeasonSelect = `
	SELECT s.id, s.tournament_id, s.sofascore_id, t.sofascore_id, s.name, COALESCE(s.year, ''),
		s.current_round, s.total_rounds, s.is_current, s.entry_fee_cents
	FROM ` + config.SeasonsTable + ` s
	JOIN ` + config.TournamentsTable + ` t ON t.id = s.tournament_id`

const MatchSelect = `
	SELECT m.id, m.sofascore_id, m.season_id, m.round, COALESCE(m.round_name, ''), COALESCE(m.round_slug, ''),
		m.home_team_id, ht.name, m.away_team_id, at.name, m.start_time, m.status,
		m.home_score, m.away_score, m.scores_calculated
	FROM ` + config.MatchesTable + ` m
	JOIN ` + config.TeamsTable + ` ht ON ht.id = m.home_team_id
	JOIN ` + config.TeamsTable + ` at ON at.id = m.away_team_id`

const PredictionSelect = `
	SELECT p.id, p.user_id, p.match_id, p.home_goals, p.away_goals, p.points,
		p.exact, p.outcome_hit, p.created_at, p.updated_at
	FROM ` + config.PredictionsTable + ` p`

// registerPreparedStatements registers the statements on the hot API paths.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		// Health
		"health_check": "SELECT 1",

		// Auth
		"profile_by_id": "SELECT id, display_name, role FROM " + config.ProfilesTable + " WHERE id = $1",

		// Lookups
		"tournament_by_sofascore_id": TournamentSelect + " WHERE t.sofascore_id = $1",
		"season_by_id":               SeasonSelect + " WHERE s.id = $1",
		"season_by_sofascore_id":     SeasonSelect + " WHERE s.sofascore_id = $1",
		"match_by_id":                MatchSelect + " WHERE m.id = $1",

		// Leaderboard
		"leaderboard": `
			SELECT utp.user_id, COALESCE(NULLIF(up.display_name, ''), 'anonymous'),
				utp.total_points, utp.exact_hits, utp.outcome_hits, utp.predictions
			FROM ` + config.PointsTable + ` utp
			JOIN ` + config.ProfilesTable + ` up ON up.id = utp.user_id
			WHERE utp.season_id = $1`,

		// Prize pool
		"prize_pool_by_season": `
			SELECT season_id, approved_cents, pending_cents, approved_count, pending_count, updated_at
			FROM ` + config.PrizePoolsTable + ` WHERE season_id = $1`,
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
