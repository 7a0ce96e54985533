package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/albapepper/bolao/internal/config"
	"github.com/albapepper/bolao/internal/prize"
)

func (s *Postgres) GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	var p Profile
	var role string
	if err := s.pool.QueryRow(ctx, "profile_by_id", id).Scan(&p.ID, &p.DisplayName, &role); err != nil {
		return nil, mapErr(err)
	}
	p.Role = Role(role)
	return &p, nil
}

func entryTable(kind EntryKind) (string, error) {
	switch kind {
	case KindPayment:
		return config.PaymentsTable, nil
	case KindDeposit:
		return config.DepositsTable, nil
	}
	return "", fmt.Errorf("%w: entry kind %q", ErrInvalid, kind)
}

func scanEntry(row pgx.Row, kind EntryKind) (*PaymentEntry, error) {
	e := PaymentEntry{Kind: kind}
	var status string
	err := row.Scan(&e.ID, &e.UserID, &e.SeasonID, &e.AmountCents, &status,
		&e.ReviewedBy, &e.ReviewedAt, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.Status = prize.Status(status)
	return &e, nil
}

// SetEntryStatus reviews a payment or deposit. Moving an entry back to
// pending clears the reviewer.
func (s *Postgres) SetEntryStatus(ctx context.Context, kind EntryKind, id int64, status prize.Status, reviewer uuid.UUID) (*PaymentEntry, error) {
	table, err := entryTable(kind)
	if err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: status %q", ErrInvalid, status)
	}

	args := pgx.NamedArgs{
		"id":          id,
		"status":      string(status),
		"reviewed_by": &reviewer,
		"reviewed_at": s.clock.Now(),
	}
	if status == prize.Pending {
		args["reviewed_by"] = nil
		args["reviewed_at"] = nil
	}

	row := s.pool.QueryRow(ctx, `
		UPDATE `+table+` SET
			status = @status,
			reviewed_by = @reviewed_by,
			reviewed_at = @reviewed_at,
			updated_at = NOW()
		WHERE id = @id
		RETURNING id, user_id, season_id, amount_cents, status, reviewed_by, reviewed_at, created_at`, args)

	e, err := scanEntry(row, kind)
	if err != nil {
		return nil, fmt.Errorf("set %s status: %w", kind, mapErr(err))
	}
	return e, nil
}

// ListSeasonEntries returns every payment and deposit of a season.
func (s *Postgres) ListSeasonEntries(ctx context.Context, seasonID int64) ([]PaymentEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT 'payment', id, user_id, season_id, amount_cents, status, reviewed_by, reviewed_at, created_at
		FROM `+config.PaymentsTable+` WHERE season_id = $1
		UNION ALL
		SELECT 'deposit', id, user_id, season_id, amount_cents, status, reviewed_by, reviewed_at, created_at
		FROM `+config.DepositsTable+` WHERE season_id = $1
		ORDER BY 9, 2`, seasonID)
	if err != nil {
		return nil, fmt.Errorf("list season entries: %w", err)
	}
	defer rows.Close()

	var out []PaymentEntry
	for rows.Next() {
		var e PaymentEntry
		var kind, status string
		if err := rows.Scan(&kind, &e.ID, &e.UserID, &e.SeasonID, &e.AmountCents, &status,
			&e.ReviewedBy, &e.ReviewedAt, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Kind = EntryKind(kind)
		e.Status = prize.Status(status)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Postgres) SavePrizePool(ctx context.Context, seasonID int64, p prize.Pool) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO `+config.PrizePoolsTable+` (
			season_id, approved_cents, pending_cents, approved_count, pending_count, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (season_id) DO UPDATE SET
			approved_cents = EXCLUDED.approved_cents,
			pending_cents = EXCLUDED.pending_cents,
			approved_count = EXCLUDED.approved_count,
			pending_count = EXCLUDED.pending_count,
			updated_at = EXCLUDED.updated_at`,
		seasonID, p.ApprovedCents, p.PendingCents, p.ApprovedCount, p.PendingCount, s.clock.Now())
	if err != nil {
		return fmt.Errorf("save prize pool: %w", mapErr(err))
	}
	return nil
}

func (s *Postgres) GetPrizePool(ctx context.Context, seasonID int64) (*PrizePool, error) {
	var pp PrizePool
	err := s.pool.QueryRow(ctx, "prize_pool_by_season", seasonID).Scan(&pp.SeasonID,
		&pp.ApprovedCents, &pp.PendingCents, &pp.ApprovedCount, &pp.PendingCount, &pp.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &pp, nil
}
