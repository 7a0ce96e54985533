package mockstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/albapepper/bolao/internal/prize"
	"github.com/albapepper/bolao/internal/provider"
	"github.com/albapepper/bolao/internal/ranking"
	"github.com/albapepper/bolao/internal/scoring"
	"github.com/albapepper/bolao/internal/store"
)

type Store struct {
	mock.Mock
}

var _ store.Store = (*Store)(nil)

func (s *Store) HealthCheck(ctx context.Context) error {
	args := s.Called(ctx)
	return args.Error(0)
}

func (s *Store) UpsertTournament(ctx context.Context, t provider.Tournament, format scoring.Format) (*store.Tournament, error) {
	args := s.Called(ctx, t, format)

	var r *store.Tournament
	if args.Get(0) != nil {
		r = args.Get(0).(*store.Tournament)
	}
	return r, args.Error(1)
}

func (s *Store) GetTournamentBySofascoreID(ctx context.Context, sofascoreID int) (*store.Tournament, error) {
	args := s.Called(ctx, sofascoreID)

	var r *store.Tournament
	if args.Get(0) != nil {
		r = args.Get(0).(*store.Tournament)
	}
	return r, args.Error(1)
}

func (s *Store) ListTournaments(ctx context.Context) ([]store.Tournament, error) {
	args := s.Called(ctx)

	var r []store.Tournament
	if args.Get(0) != nil {
		r = args.Get(0).([]store.Tournament)
	}
	return r, args.Error(1)
}

func (s *Store) UpsertSeasons(ctx context.Context, tournamentID int64, seasons []provider.Season) (int, error) {
	args := s.Called(ctx, tournamentID, seasons)
	return args.Int(0), args.Error(1)
}

func (s *Store) SetSeasonRounds(ctx context.Context, seasonID int64, current *int, total int) error {
	args := s.Called(ctx, seasonID, current, total)
	return args.Error(0)
}

func (s *Store) GetSeason(ctx context.Context, id int64) (*store.Season, error) {
	args := s.Called(ctx, id)

	var r *store.Season
	if args.Get(0) != nil {
		r = args.Get(0).(*store.Season)
	}
	return r, args.Error(1)
}

func (s *Store) GetSeasonBySofascoreID(ctx context.Context, sofascoreID int) (*store.Season, error) {
	args := s.Called(ctx, sofascoreID)

	var r *store.Season
	if args.Get(0) != nil {
		r = args.Get(0).(*store.Season)
	}
	return r, args.Error(1)
}

func (s *Store) ListSeasons(ctx context.Context, tournamentID int64) ([]store.Season, error) {
	args := s.Called(ctx, tournamentID)

	var r []store.Season
	if args.Get(0) != nil {
		r = args.Get(0).([]store.Season)
	}
	return r, args.Error(1)
}

func (s *Store) ListCurrentSeasons(ctx context.Context) ([]store.Season, error) {
	args := s.Called(ctx)

	var r []store.Season
	if args.Get(0) != nil {
		r = args.Get(0).([]store.Season)
	}
	return r, args.Error(1)
}

func (s *Store) UpsertTeams(ctx context.Context, teams []provider.Team) (int, error) {
	args := s.Called(ctx, teams)
	return args.Int(0), args.Error(1)
}

func (s *Store) UpsertPlayers(ctx context.Context, players []provider.Player) (int, error) {
	args := s.Called(ctx, players)
	return args.Int(0), args.Error(1)
}

func (s *Store) UpsertMatches(ctx context.Context, seasonID int64, events []provider.Event) (int, error) {
	args := s.Called(ctx, seasonID, events)
	return args.Int(0), args.Error(1)
}

func (s *Store) UpdateMatchScores(ctx context.Context, events []provider.Event) (int, error) {
	args := s.Called(ctx, events)
	return args.Int(0), args.Error(1)
}

func (s *Store) GetMatch(ctx context.Context, id int64) (*store.Match, error) {
	args := s.Called(ctx, id)

	var r *store.Match
	if args.Get(0) != nil {
		r = args.Get(0).(*store.Match)
	}
	return r, args.Error(1)
}

func (s *Store) ListMatches(ctx context.Context, f store.MatchFilter) ([]store.Match, error) {
	args := s.Called(ctx, f)

	var r []store.Match
	if args.Get(0) != nil {
		r = args.Get(0).([]store.Match)
	}
	return r, args.Error(1)
}

func (s *Store) MarkScoresCalculated(ctx context.Context, matchIDs []int64) error {
	args := s.Called(ctx, matchIDs)
	return args.Error(0)
}

func (s *Store) PendingSeasons(ctx context.Context, startedBefore time.Time) ([]store.PendingSeason, error) {
	args := s.Called(ctx, startedBefore)

	var r []store.PendingSeason
	if args.Get(0) != nil {
		r = args.Get(0).([]store.PendingSeason)
	}
	return r, args.Error(1)
}

func (s *Store) UpsertPrediction(ctx context.Context, userID uuid.UUID, matchID int64, score scoring.Scoreline) (*store.Prediction, error) {
	args := s.Called(ctx, userID, matchID, score)

	var r *store.Prediction
	if args.Get(0) != nil {
		r = args.Get(0).(*store.Prediction)
	}
	return r, args.Error(1)
}

func (s *Store) ListPredictionsForMatches(ctx context.Context, matchIDs []int64) ([]store.Prediction, error) {
	args := s.Called(ctx, matchIDs)

	var r []store.Prediction
	if args.Get(0) != nil {
		r = args.Get(0).([]store.Prediction)
	}
	return r, args.Error(1)
}

func (s *Store) ListUserPredictions(ctx context.Context, userID uuid.UUID, seasonID int64) ([]store.Prediction, error) {
	args := s.Called(ctx, userID, seasonID)

	var r []store.Prediction
	if args.Get(0) != nil {
		r = args.Get(0).([]store.Prediction)
	}
	return r, args.Error(1)
}

func (s *Store) SetPredictionScores(ctx context.Context, scores []store.PredictionScore) error {
	args := s.Called(ctx, scores)
	return args.Error(0)
}

func (s *Store) ClearUnfinishedPredictionScores(ctx context.Context, seasonID int64) (int, error) {
	args := s.Called(ctx, seasonID)
	return args.Int(0), args.Error(1)
}

func (s *Store) RebuildSeasonPoints(ctx context.Context, seasonID int64) (int, error) {
	args := s.Called(ctx, seasonID)
	return args.Int(0), args.Error(1)
}

func (s *Store) Leaderboard(ctx context.Context, seasonID int64) ([]ranking.Entry, error) {
	args := s.Called(ctx, seasonID)

	var r []ranking.Entry
	if args.Get(0) != nil {
		r = args.Get(0).([]ranking.Entry)
	}
	return r, args.Error(1)
}

func (s *Store) GetProfile(ctx context.Context, id uuid.UUID) (*store.Profile, error) {
	args := s.Called(ctx, id)

	var r *store.Profile
	if args.Get(0) != nil {
		r = args.Get(0).(*store.Profile)
	}
	return r, args.Error(1)
}

func (s *Store) SetEntryStatus(ctx context.Context, kind store.EntryKind, id int64, status prize.Status, reviewer uuid.UUID) (*store.PaymentEntry, error) {
	args := s.Called(ctx, kind, id, status, reviewer)

	var r *store.PaymentEntry
	if args.Get(0) != nil {
		r = args.Get(0).(*store.PaymentEntry)
	}
	return r, args.Error(1)
}

func (s *Store) ListSeasonEntries(ctx context.Context, seasonID int64) ([]store.PaymentEntry, error) {
	args := s.Called(ctx, seasonID)

	var r []store.PaymentEntry
	if args.Get(0) != nil {
		r = args.Get(0).([]store.PaymentEntry)
	}
	return r, args.Error(1)
}

func (s *Store) SavePrizePool(ctx context.Context, seasonID int64, p prize.Pool) error {
	args := s.Called(ctx, seasonID, p)
	return args.Error(0)
}

func (s *Store) GetPrizePool(ctx context.Context, seasonID int64) (*store.PrizePool, error) {
	args := s.Called(ctx, seasonID)

	var r *store.PrizePool
	if args.Get(0) != nil {
		r = args.Get(0).(*store.PrizePool)
	}
	return r, args.Error(1)
}
