// Package store persists the pool's tournaments, matches, predictions and
// payments in Postgres.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/albapepper/bolao/internal/prize"
	"github.com/albapepper/bolao/internal/provider"
	"github.com/albapepper/bolao/internal/ranking"
	"github.com/albapepper/bolao/internal/scoring"
)

var (
	ErrNotFound = errors.New("store: not found")
	ErrConflict = errors.New("store: conflict")
	ErrInvalid  = errors.New("store: invalid value")
)

type Store interface {
	HealthCheck(ctx context.Context) error

	// Tournaments and seasons
	UpsertTournament(ctx context.Context, t provider.Tournament, format scoring.Format) (*Tournament, error)
	GetTournamentBySofascoreID(ctx context.Context, sofascoreID int) (*Tournament, error)
	ListTournaments(ctx context.Context) ([]Tournament, error)
	UpsertSeasons(ctx context.Context, tournamentID int64, seasons []provider.Season) (int, error)
	SetSeasonRounds(ctx context.Context, seasonID int64, current *int, total int) error
	GetSeason(ctx context.Context, id int64) (*Season, error)
	GetSeasonBySofascoreID(ctx context.Context, sofascoreID int) (*Season, error)
	ListSeasons(ctx context.Context, tournamentID int64) ([]Season, error)
	ListCurrentSeasons(ctx context.Context) ([]Season, error)

	// Teams, players, matches
	UpsertTeams(ctx context.Context, teams []provider.Team) (int, error)
	UpsertPlayers(ctx context.Context, players []provider.Player) (int, error)
	UpsertMatches(ctx context.Context, seasonID int64, events []provider.Event) (int, error)
	UpdateMatchScores(ctx context.Context, events []provider.Event) (int, error)
	GetMatch(ctx context.Context, id int64) (*Match, error)
	ListMatches(ctx context.Context, f MatchFilter) ([]Match, error)
	MarkScoresCalculated(ctx context.Context, matchIDs []int64) error
	PendingSeasons(ctx context.Context, startedBefore time.Time) ([]PendingSeason, error)

	// Predictions and points
	UpsertPrediction(ctx context.Context, userID uuid.UUID, matchID int64, score scoring.Scoreline) (*Prediction, error)
	ListPredictionsForMatches(ctx context.Context, matchIDs []int64) ([]Prediction, error)
	ListUserPredictions(ctx context.Context, userID uuid.UUID, seasonID int64) ([]Prediction, error)
	SetPredictionScores(ctx context.Context, scores []PredictionScore) error
	ClearUnfinishedPredictionScores(ctx context.Context, seasonID int64) (int, error)
	RebuildSeasonPoints(ctx context.Context, seasonID int64) (int, error)
	Leaderboard(ctx context.Context, seasonID int64) ([]ranking.Entry, error)

	// Users and payments
	GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error)
	SetEntryStatus(ctx context.Context, kind EntryKind, id int64, status prize.Status, reviewer uuid.UUID) (*PaymentEntry, error)
	ListSeasonEntries(ctx context.Context, seasonID int64) ([]PaymentEntry, error)
	SavePrizePool(ctx context.Context, seasonID int64, p prize.Pool) error
	GetPrizePool(ctx context.Context, seasonID int64) (*PrizePool, error)
}
