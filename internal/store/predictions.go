package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/albapepper/bolao/internal/config"
	"github.com/albapepper/bolao/internal/db"
	"github.com/albapepper/bolao/internal/ranking"
	"github.com/albapepper/bolao/internal/scoring"
)

func scanPrediction(row pgx.Row) (*Prediction, error) {
	var p Prediction
	err := row.Scan(&p.ID, &p.UserID, &p.MatchID, &p.HomeGoals, &p.AwayGoals, &p.Points,
		&p.Exact, &p.OutcomeHit, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Postgres) queryPredictions(ctx context.Context, sql string, args ...any) ([]Prediction, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()

	var out []Prediction
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// UpsertPrediction stores a user's guess for a match. One prediction per
// user and match; resubmitting replaces the goals.
func (s *Postgres) UpsertPrediction(ctx context.Context, userID uuid.UUID, matchID int64, sl scoring.Scoreline) (*Prediction, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO `+config.PredictionsTable+` AS p (user_id, match_id, home_goals, away_goals)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, match_id) DO UPDATE SET
			home_goals = EXCLUDED.home_goals,
			away_goals = EXCLUDED.away_goals,
			updated_at = NOW()
		RETURNING p.id, p.user_id, p.match_id, p.home_goals, p.away_goals, p.points,
			p.exact, p.outcome_hit, p.created_at, p.updated_at`,
		userID, matchID, sl.Home, sl.Away)

	p, err := scanPrediction(row)
	if err != nil {
		return nil, fmt.Errorf("upsert prediction: %w", mapErr(err))
	}
	return p, nil
}

func (s *Postgres) ListPredictionsForMatches(ctx context.Context, matchIDs []int64) ([]Prediction, error) {
	if len(matchIDs) == 0 {
		return nil, nil
	}
	return s.queryPredictions(ctx, db.PredictionSelect+`
		WHERE p.match_id = ANY($1)
		ORDER BY p.match_id, p.id`, matchIDs)
}

func (s *Postgres) ListUserPredictions(ctx context.Context, userID uuid.UUID, seasonID int64) ([]Prediction, error) {
	return s.queryPredictions(ctx, db.PredictionSelect+`
		JOIN `+config.MatchesTable+` m ON m.id = p.match_id
		WHERE p.user_id = $1 AND ($2::bigint = 0 OR m.season_id = $2)
		ORDER BY m.start_time, m.id`, userID, seasonID)
}

// SetPredictionScores writes scores in one transaction.
func (s *Postgres) SetPredictionScores(ctx context.Context, scores []PredictionScore) error {
	if len(scores) == 0 {
		return nil
	}

	now := s.clock.Now()
	b := &pgx.Batch{}
	for _, sc := range scores {
		b.Queue(`
			UPDATE `+config.PredictionsTable+`
			SET points = $2, exact = $3, outcome_hit = $4, scored_at = $5, updated_at = NOW()
			WHERE id = $1`,
			sc.PredictionID, sc.Points, sc.Exact, sc.OutcomeHit, now)
	}

	return s.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := sendBatch(ctx, tx, b); err != nil {
			return fmt.Errorf("set prediction scores: %w", err)
		}
		return nil
	})
}

// ClearUnfinishedPredictionScores removes points from predictions whose
// match is no longer finished (e.g. a result annulled by the provider).
func (s *Postgres) ClearUnfinishedPredictionScores(ctx context.Context, seasonID int64) (int, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE `+config.PredictionsTable+` p
		SET points = NULL, exact = FALSE, outcome_hit = FALSE, scored_at = NULL, updated_at = NOW()
		FROM `+config.MatchesTable+` m
		WHERE m.id = p.match_id
			AND m.season_id = $1
			AND m.status <> 'finished'
			AND p.points IS NOT NULL`, seasonID)
	if err != nil {
		return 0, fmt.Errorf("clear prediction scores: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// RebuildSeasonPoints recomputes user_tournament_points for a season from
// the scored predictions. Returns the number of users with points.
// outcome_hits counts outcome-only hits; exact hits are counted apart.
func (s *Postgres) RebuildSeasonPoints(ctx context.Context, seasonID int64) (int, error) {
	var n int
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM `+config.PointsTable+` WHERE season_id = $1`, seasonID); err != nil {
			return fmt.Errorf("clear season points: %w", err)
		}
		tag, err := tx.Exec(ctx, `
			INSERT INTO `+config.PointsTable+` (
				user_id, season_id, total_points, exact_hits, outcome_hits, predictions
			)
			SELECT p.user_id, m.season_id,
				SUM(p.points),
				COUNT(*) FILTER (WHERE p.exact),
				COUNT(*) FILTER (WHERE p.outcome_hit AND NOT p.exact),
				COUNT(*)
			FROM `+config.PredictionsTable+` p
			JOIN `+config.MatchesTable+` m ON m.id = p.match_id
			WHERE m.season_id = $1 AND p.points IS NOT NULL
			GROUP BY p.user_id, m.season_id`, seasonID)
		if err != nil {
			return fmt.Errorf("insert season points: %w", mapErr(err))
		}
		n = int(tag.RowsAffected())
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Leaderboard returns the ranked season table.
func (s *Postgres) Leaderboard(ctx context.Context, seasonID int64) ([]ranking.Entry, error) {
	rows, err := s.pool.Query(ctx, "leaderboard", seasonID)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	defer rows.Close()

	entries := make([]ranking.Entry, 0, 32)
	for rows.Next() {
		var e ranking.Entry
		if err := rows.Scan(&e.UserID, &e.DisplayName, &e.TotalPoints,
			&e.ExactHits, &e.OutcomeHits, &e.Predictions); err != nil {
			return nil, fmt.Errorf("scan leaderboard: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ranking.Rank(entries), nil
}
