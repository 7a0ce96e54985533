package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/albapepper/bolao/internal/config"
	"github.com/albapepper/bolao/internal/db"
	"github.com/albapepper/bolao/internal/provider"
)

// UpsertTeams writes teams keyed by SofaScore id.
func (s *Postgres) UpsertTeams(ctx context.Context, teams []provider.Team) (int, error) {
	if len(teams) == 0 {
		return 0, nil
	}

	b := &pgx.Batch{}
	for _, t := range teams {
		b.Queue(`
			INSERT INTO `+config.TeamsTable+` AS t (sofascore_id, name, short_name, name_code, slug, country, logo_url)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (sofascore_id) DO UPDATE SET
				name = EXCLUDED.name,
				short_name = COALESCE(EXCLUDED.short_name, t.short_name),
				name_code = COALESCE(EXCLUDED.name_code, t.name_code),
				slug = COALESCE(EXCLUDED.slug, t.slug),
				country = COALESCE(EXCLUDED.country, t.country),
				logo_url = COALESCE(EXCLUDED.logo_url, t.logo_url),
				updated_at = NOW()`,
			t.ID, t.Name, nilEmpty(t.ShortName), nilEmpty(t.NameCode),
			nilEmpty(t.Slug), nilEmpty(t.Country), nilEmpty(t.LogoURL))
	}

	var n int
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		var err error
		n, err = sendBatch(ctx, tx, b)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("upsert teams: %w", err)
	}
	return n, nil
}

// UpsertPlayers writes players; the team is resolved through its SofaScore id.
func (s *Postgres) UpsertPlayers(ctx context.Context, players []provider.Player) (int, error) {
	if len(players) == 0 {
		return 0, nil
	}

	b := &pgx.Batch{}
	for _, p := range players {
		b.Queue(`
			INSERT INTO `+config.PlayersTable+` AS p (
				sofascore_id, team_id, name, short_name, position,
				shirt_number, nationality, date_of_birth
			) VALUES (
				$1, (SELECT id FROM `+config.TeamsTable+` WHERE sofascore_id = $2),
				$3, $4, $5, $6, $7, $8
			)
			ON CONFLICT (sofascore_id) DO UPDATE SET
				team_id = COALESCE(EXCLUDED.team_id, p.team_id),
				name = EXCLUDED.name,
				short_name = COALESCE(EXCLUDED.short_name, p.short_name),
				position = COALESCE(EXCLUDED.position, p.position),
				shirt_number = COALESCE(EXCLUDED.shirt_number, p.shirt_number),
				nationality = COALESCE(EXCLUDED.nationality, p.nationality),
				date_of_birth = COALESCE(EXCLUDED.date_of_birth, p.date_of_birth),
				updated_at = NOW()`,
			p.ID, p.TeamID, p.Name, nilEmpty(p.ShortName), nilEmpty(p.Position),
			p.ShirtNumber, nilEmpty(p.Nationality), p.DateOfBirth)
	}

	var n int
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		var err error
		n, err = sendBatch(ctx, tx, b)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("upsert players: %w", err)
	}
	return n, nil
}

// resetCalculated clears scores_calculated whenever the result changes, so
// a corrected score is scored again.
const resetCalculated = `
	scores_calculated = CASE
		WHEN m.status IS DISTINCT FROM EXCLUDED.status
			OR m.home_score IS DISTINCT FROM EXCLUDED.home_score
			OR m.away_score IS DISTINCT FROM EXCLUDED.away_score
		THEN FALSE ELSE m.scores_calculated END`

// UpsertMatches writes one chunk of season matches in a single transaction.
// Teams must already exist.
func (s *Postgres) UpsertMatches(ctx context.Context, seasonID int64, events []provider.Event) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	b := &pgx.Batch{}
	for _, e := range events {
		b.Queue(`
			INSERT INTO `+config.MatchesTable+` AS m (
				sofascore_id, season_id, round, round_name, round_slug,
				home_team_id, away_team_id, start_time, status, home_score, away_score
			) VALUES (
				$1, $2, $3, $4, $5,
				(SELECT id FROM `+config.TeamsTable+` WHERE sofascore_id = $6),
				(SELECT id FROM `+config.TeamsTable+` WHERE sofascore_id = $7),
				$8, $9, $10, $11
			)
			ON CONFLICT (sofascore_id) DO UPDATE SET
				season_id = EXCLUDED.season_id,
				round = EXCLUDED.round,
				round_name = EXCLUDED.round_name,
				round_slug = EXCLUDED.round_slug,
				home_team_id = EXCLUDED.home_team_id,
				away_team_id = EXCLUDED.away_team_id,
				start_time = EXCLUDED.start_time,
				status = EXCLUDED.status,
				home_score = EXCLUDED.home_score,
				away_score = EXCLUDED.away_score,`+resetCalculated+`,
				updated_at = NOW()`,
			e.ID, seasonID, e.Round.Number, nilEmpty(e.Round.Name), nilEmpty(e.Round.Slug),
			e.HomeTeam.ID, e.AwayTeam.ID, e.StartTime, string(e.Status), e.HomeScore, e.AwayScore)
	}

	var n int
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		var err error
		n, err = sendBatch(ctx, tx, b)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("upsert matches: %w", err)
	}
	return n, nil
}

// UpdateMatchScores refreshes status, kickoff and score of matches that are
// already stored. Unknown events are ignored; unchanged rows are not counted.
func (s *Postgres) UpdateMatchScores(ctx context.Context, events []provider.Event) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	b := &pgx.Batch{}
	for _, e := range events {
		b.Queue(`
			UPDATE `+config.MatchesTable+` AS m SET
				status = $2,
				home_score = $3,
				away_score = $4,
				start_time = $5,
				scores_calculated = CASE
					WHEN m.status IS DISTINCT FROM $2
						OR m.home_score IS DISTINCT FROM $3
						OR m.away_score IS DISTINCT FROM $4
					THEN FALSE ELSE m.scores_calculated END,
				updated_at = NOW()
			WHERE m.sofascore_id = $1
				AND (m.status IS DISTINCT FROM $2
					OR m.home_score IS DISTINCT FROM $3
					OR m.away_score IS DISTINCT FROM $4
					OR m.start_time IS DISTINCT FROM $5)`,
			e.ID, string(e.Status), e.HomeScore, e.AwayScore, e.StartTime)
	}

	var n int
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		var err error
		n, err = sendBatch(ctx, tx, b)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("update match scores: %w", err)
	}
	return n, nil
}

func scanMatch(row pgx.Row) (*Match, error) {
	var m Match
	var status string
	err := row.Scan(&m.ID, &m.SofascoreID, &m.SeasonID, &m.Round, &m.RoundName, &m.RoundSlug,
		&m.HomeTeamID, &m.HomeTeamName, &m.AwayTeamID, &m.AwayTeamName, &m.StartTime, &status,
		&m.HomeScore, &m.AwayScore, &m.ScoresCalculated)
	if err != nil {
		return nil, err
	}
	m.Status = provider.EventStatus(status)
	return &m, nil
}

func (s *Postgres) GetMatch(ctx context.Context, id int64) (*Match, error) {
	m, err := scanMatch(s.pool.QueryRow(ctx, "match_by_id", id))
	if err != nil {
		return nil, mapErr(err)
	}
	return m, nil
}

func (s *Postgres) ListMatches(ctx context.Context, f MatchFilter) ([]Match, error) {
	statuses := make([]string, 0, len(f.Statuses))
	for _, st := range f.Statuses {
		statuses = append(statuses, string(st))
	}

	rows, err := s.pool.Query(ctx, db.MatchSelect+`
		WHERE (@season_id::bigint = 0 OR m.season_id = @season_id)
			AND (@round::int IS NULL OR m.round = @round)
			AND (cardinality(@statuses::text[]) = 0 OR m.status = ANY(@statuses))
			AND (NOT @uncalculated::bool OR NOT m.scores_calculated)
		ORDER BY m.start_time, m.id`,
		pgx.NamedArgs{
			"season_id":    f.SeasonID,
			"round":        f.Round,
			"statuses":     statuses,
			"uncalculated": f.Uncalculated,
		})
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	var out []Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (s *Postgres) MarkScoresCalculated(ctx context.Context, matchIDs []int64) error {
	if len(matchIDs) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx, `
		UPDATE `+config.MatchesTable+`
		SET scores_calculated = TRUE, updated_at = NOW()
		WHERE id = ANY($1)`, matchIDs)
	if err != nil {
		return fmt.Errorf("mark scores calculated: %w", err)
	}
	return nil
}

// PendingSeasons lists active seasons that have matches kicked off before
// startedBefore without a final result, or finished matches not yet scored.
func (s *Postgres) PendingSeasons(ctx context.Context, startedBefore time.Time) ([]PendingSeason, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT s.id, s.sofascore_id, t.sofascore_id, COUNT(*)
		FROM `+config.MatchesTable+` m
		JOIN `+config.SeasonsTable+` s ON s.id = m.season_id
		JOIN `+config.TournamentsTable+` t ON t.id = s.tournament_id
		WHERE t.is_active
			AND (
				(m.status IN ('scheduled', 'live') AND m.start_time <= $1)
				OR (m.status = 'finished' AND NOT m.scores_calculated)
			)
		GROUP BY s.id, s.sofascore_id, t.sofascore_id
		ORDER BY MIN(m.start_time)`, startedBefore)
	if err != nil {
		return nil, fmt.Errorf("pending seasons: %w", err)
	}
	defer rows.Close()

	var out []PendingSeason
	for rows.Next() {
		var p PendingSeason
		if err := rows.Scan(&p.SeasonID, &p.SofascoreID, &p.TournamentSofascoreID, &p.PendingMatches); err != nil {
			return nil, fmt.Errorf("scan pending season: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
