package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/albapepper/bolao/internal/prize"
	"github.com/albapepper/bolao/internal/provider"
	"github.com/albapepper/bolao/internal/scoring"
)

// Role of a user profile.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type Tournament struct {
	ID          int64          `json:"id"`
	SofascoreID int            `json:"sofascore_id"`
	Name        string         `json:"name"`
	Slug        string         `json:"slug,omitempty"`
	Category    string         `json:"category,omitempty"`
	Country     string         `json:"country,omitempty"`
	LogoURL     string         `json:"logo_url,omitempty"`
	Format      scoring.Format `json:"format"`
	IsActive    bool           `json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
}

type Season struct {
	ID                    int64  `json:"id"`
	TournamentID          int64  `json:"tournament_id"`
	SofascoreID           int    `json:"sofascore_id"`
	TournamentSofascoreID int    `json:"tournament_sofascore_id"`
	Name                  string `json:"name"`
	Year                  string `json:"year,omitempty"`
	CurrentRound          *int   `json:"current_round,omitempty"`
	TotalRounds           int    `json:"total_rounds"`
	IsCurrent             bool   `json:"is_current"`
	EntryFeeCents         int64  `json:"entry_fee_cents"`
}

type Match struct {
	ID               int64                `json:"id"`
	SofascoreID      int                  `json:"sofascore_id"`
	SeasonID         int64                `json:"season_id"`
	Round            int                  `json:"round"`
	RoundName        string               `json:"round_name,omitempty"`
	RoundSlug        string               `json:"round_slug,omitempty"`
	HomeTeamID       int64                `json:"home_team_id"`
	HomeTeamName     string               `json:"home_team_name"`
	AwayTeamID       int64                `json:"away_team_id"`
	AwayTeamName     string               `json:"away_team_name"`
	StartTime        time.Time            `json:"start_time"`
	Status           provider.EventStatus `json:"status"`
	HomeScore        *int                 `json:"home_score,omitempty"`
	AwayScore        *int                 `json:"away_score,omitempty"`
	ScoresCalculated bool                 `json:"scores_calculated"`
}

// Final returns the final scoreline, ok=false when the match has none yet.
func (m Match) Final() (scoring.Scoreline, bool) {
	if m.Status != provider.StatusFinished || m.HomeScore == nil || m.AwayScore == nil {
		return scoring.Scoreline{}, false
	}
	return scoring.Scoreline{Home: *m.HomeScore, Away: *m.AwayScore}, true
}

// Locked reports whether predictions on the match are closed at now.
func (m Match) Locked(now time.Time) bool {
	return m.Status != provider.StatusScheduled || !now.Before(m.StartTime)
}

// MatchFilter narrows ListMatches. Zero values mean "any".
type MatchFilter struct {
	SeasonID     int64
	Round        *int
	Statuses     []provider.EventStatus
	Uncalculated bool
}

type Prediction struct {
	ID         int64     `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	MatchID    int64     `json:"match_id"`
	HomeGoals  int       `json:"home_goals"`
	AwayGoals  int       `json:"away_goals"`
	Points     *int      `json:"points,omitempty"`
	Exact      bool      `json:"exact"`
	OutcomeHit bool      `json:"outcome_hit"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Scoreline returns the predicted score.
func (p Prediction) Scoreline() scoring.Scoreline {
	return scoring.Scoreline{Home: p.HomeGoals, Away: p.AwayGoals}
}

// PredictionScore is the scoring outcome written back to one prediction.
type PredictionScore struct {
	PredictionID int64
	Points       int
	Exact        bool
	OutcomeHit   bool
}

type Profile struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
	Role        Role      `json:"role"`
}

// IsAdmin reports whether the profile may run admin actions.
func (p Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// EntryKind selects the payments or deposits table.
type EntryKind string

const (
	KindPayment EntryKind = "payment"
	KindDeposit EntryKind = "deposit"
)

// Valid reports whether k names a known table.
func (k EntryKind) Valid() bool {
	return k == KindPayment || k == KindDeposit
}

// PaymentEntry is a row from payments or deposits.
type PaymentEntry struct {
	ID          int64        `json:"id"`
	Kind        EntryKind    `json:"kind"`
	UserID      uuid.UUID    `json:"user_id"`
	SeasonID    int64        `json:"season_id"`
	AmountCents int64        `json:"amount_cents"`
	Status      prize.Status `json:"status"`
	ReviewedBy  *uuid.UUID   `json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time   `json:"reviewed_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

type PrizePool struct {
	SeasonID int64 `json:"season_id"`
	prize.Pool
	UpdatedAt time.Time `json:"updated_at"`
}

// PendingSeason is a season with matches whose result should be known by now.
type PendingSeason struct {
	SeasonID              int64
	SofascoreID           int
	TournamentSofascoreID int
	PendingMatches        int
}
