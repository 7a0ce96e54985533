package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/itbasis/go-clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/bolao/internal/config"
	"github.com/albapepper/bolao/internal/containers"
	"github.com/albapepper/bolao/internal/db"
	"github.com/albapepper/bolao/internal/prize"
	"github.com/albapepper/bolao/internal/provider"
	"github.com/albapepper/bolao/internal/scoring"
)

var (
	// One database for every test in the package.
	testPool  *db.Pool
	testStore *Postgres

	// Keeps SofaScore ids unique across tests.
	idCtr = int32(1000)
)

func TestMain(m *testing.M) {
	container := containers.NewDBContainer(filepath.Join("..", "..", "schema", "schema.sql"))

	defer func() {
		// Catch all panics to make sure the shutdown is successfully run
		if r := recover(); r != nil {
			if container != nil {
				container.Shutdown()
			}
			fmt.Println("panic")
		}
	}()

	var err error
	testPool, err = db.New(context.Background(), &config.Config{
		DatabaseURL:    container.ConnectionString(),
		DBPoolMinConns: 1,
		DBPoolMaxConns: 4,
		DBPoolMaxLife:  time.Minute,
	})
	if err != nil {
		fmt.Printf("error connecting to db: %v", err)
		os.Exit(-1)
	}
	testStore = New(testPool, clock.New())

	code := m.Run()
	testPool.Close()
	container.Shutdown()
	os.Exit(code)
}

func nextID() int {
	return int(atomic.AddInt32(&idCtr, 1))
}

func intPtr(n int) *int { return &n }

type fixture struct {
	tournament *Tournament
	season     *Season
	home, away provider.Team
}

// newFixture creates a tournament with one current season and two teams.
func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()

	tour, err := testStore.UpsertTournament(ctx, provider.Tournament{
		ID: nextID(), Name: "Copa do Brasil", Slug: "copa-do-brasil", Category: "Brazil", Country: "BR",
	}, scoring.Knockout)
	require.NoError(t, err)

	seasonSofaID := nextID()
	n, err := testStore.UpsertSeasons(ctx, tour.ID, []provider.Season{
		{ID: seasonSofaID, Name: "Copa do Brasil 2025", Year: "2025"},
		{ID: nextID(), Name: "Copa do Brasil 2024", Year: "2024"},
	})
	require.NoError(t, err)
	require.Equal(t, 2, n)

	season, err := testStore.GetSeasonBySofascoreID(ctx, seasonSofaID)
	require.NoError(t, err)

	home := provider.Team{ID: nextID(), Name: "Corinthians", NameCode: "COR"}
	away := provider.Team{ID: nextID(), Name: "Vasco da Gama", NameCode: "VAS"}
	_, err = testStore.UpsertTeams(ctx, []provider.Team{home, away})
	require.NoError(t, err)

	return fixture{tournament: tour, season: season, home: home, away: away}
}

func (f fixture) event(status provider.EventStatus, start time.Time, home, away *int) provider.Event {
	return provider.Event{
		ID:        nextID(),
		Round:     provider.Round{Number: 1, Name: "Final", Slug: "final"},
		Status:    status,
		StartTime: start.UTC().Truncate(time.Second),
		HomeTeam:  f.home,
		AwayTeam:  f.away,
		HomeScore: home,
		AwayScore: away,
	}
}

func newProfile(t *testing.T, name string, role Role) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := testPool.Exec(context.Background(),
		"INSERT INTO users_profiles (id, display_name, role) VALUES ($1, $2, $3)", id, name, string(role))
	require.NoError(t, err)
	return id
}

func TestTournamentAndSeasons(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	assert.Equal(t, scoring.Knockout, f.tournament.Format)
	assert.True(t, f.tournament.IsActive)

	got, err := testStore.GetTournamentBySofascoreID(ctx, f.tournament.SofascoreID)
	require.NoError(t, err)
	assert.Equal(t, "copa-do-brasil", got.Slug)

	// re-running setup changes the format and keeps the row
	again, err := testStore.UpsertTournament(ctx, provider.Tournament{ID: f.tournament.SofascoreID, Name: "Copa do Brasil"}, scoring.Mixed)
	require.NoError(t, err)
	assert.Equal(t, f.tournament.ID, again.ID)
	assert.Equal(t, scoring.Mixed, again.Format)
	assert.Equal(t, "copa-do-brasil", again.Slug, "empty slug does not wipe the stored one")

	seasons, err := testStore.ListSeasons(ctx, f.tournament.ID)
	require.NoError(t, err)
	require.Len(t, seasons, 2)
	assert.True(t, seasons[0].IsCurrent)
	assert.Equal(t, f.season.ID, seasons[0].ID)
	assert.False(t, seasons[1].IsCurrent)
	assert.Equal(t, f.tournament.SofascoreID, seasons[0].TournamentSofascoreID)

	require.NoError(t, testStore.SetSeasonRounds(ctx, f.season.ID, intPtr(3), 7))
	season, err := testStore.GetSeason(ctx, f.season.ID)
	require.NoError(t, err)
	require.NotNil(t, season.CurrentRound)
	assert.Equal(t, 3, *season.CurrentRound)
	assert.Equal(t, 7, season.TotalRounds)

	assert.ErrorIs(t, testStore.SetSeasonRounds(ctx, -1, nil, 0), ErrNotFound)

	_, err = testStore.GetTournamentBySofascoreID(ctx, -1)
	assert.ErrorIs(t, err, ErrNotFound)

	current, err := testStore.ListCurrentSeasons(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, current)
}

func TestMatches(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	now := time.Now()

	finished := f.event(provider.StatusFinished, now.Add(-3*time.Hour), intPtr(2), intPtr(1))
	upcoming := f.event(provider.StatusScheduled, now.Add(24*time.Hour), nil, nil)
	overdue := f.event(provider.StatusScheduled, now.Add(-4*time.Hour), nil, nil)

	n, err := testStore.UpsertMatches(ctx, f.season.ID, []provider.Event{finished, upcoming, overdue})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	all, err := testStore.ListMatches(ctx, MatchFilter{SeasonID: f.season.ID})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, overdue.ID, all[0].SofascoreID, "ordered by kickoff")
	assert.Equal(t, "Corinthians", all[0].HomeTeamName)
	assert.Equal(t, "Final", all[0].RoundName)

	done, err := testStore.ListMatches(ctx, MatchFilter{
		SeasonID:     f.season.ID,
		Statuses:     []provider.EventStatus{provider.StatusFinished},
		Uncalculated: true,
	})
	require.NoError(t, err)
	require.Len(t, done, 1)
	score, ok := done[0].Final()
	require.True(t, ok)
	assert.Equal(t, scoring.Scoreline{Home: 2, Away: 1}, score)

	require.NoError(t, testStore.MarkScoresCalculated(ctx, []int64{done[0].ID}))
	done, err = testStore.ListMatches(ctx, MatchFilter{SeasonID: f.season.ID, Uncalculated: true,
		Statuses: []provider.EventStatus{provider.StatusFinished}})
	require.NoError(t, err)
	assert.Empty(t, done)

	pending, err := testStore.PendingSeasons(ctx, now.Add(-2*time.Hour))
	require.NoError(t, err)
	var found *PendingSeason
	for i := range pending {
		if pending[i].SeasonID == f.season.ID {
			found = &pending[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, 1, found.PendingMatches, "only the overdue match")
	assert.Equal(t, f.season.SofascoreID, found.SofascoreID)

	// a score correction re-opens the match for scoring
	corrected := finished
	corrected.HomeScore = intPtr(3)
	unknown := f.event(provider.StatusFinished, now, intPtr(0), intPtr(0))
	n, err = testStore.UpdateMatchScores(ctx, []provider.Event{corrected, upcoming, unknown})
	require.NoError(t, err)
	assert.Equal(t, 1, n, "unchanged and unknown matches are not counted")

	m, err := testStore.GetMatch(ctx, all[1].ID)
	require.NoError(t, err)
	require.NotNil(t, m.HomeScore)
	assert.Equal(t, 3, *m.HomeScore)
	assert.False(t, m.ScoresCalculated)

	_, err = testStore.GetMatch(ctx, -1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpsertMatches_missingTeam(t *testing.T) {
	f := newFixture(t)
	e := f.event(provider.StatusScheduled, time.Now(), nil, nil)
	e.AwayTeam = provider.Team{ID: -5, Name: "Unknown"}

	_, err := testStore.UpsertMatches(context.Background(), f.season.ID, []provider.Event{e})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestPlayers(t *testing.T) {
	f := newFixture(t)
	n, err := testStore.UpsertPlayers(context.Background(), []provider.Player{
		{ID: nextID(), TeamID: f.home.ID, Name: "Yuri Alberto", Position: "F", ShirtNumber: intPtr(9)},
		{ID: nextID(), TeamID: -1, Name: "Free Agent"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestPredictionsAndPoints(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	now := time.Now()

	ana := newProfile(t, "ana", RoleUser)
	bruno := newProfile(t, "bruno", RoleUser)

	m1 := f.event(provider.StatusScheduled, now.Add(time.Hour), nil, nil)
	m2 := f.event(provider.StatusScheduled, now.Add(2*time.Hour), nil, nil)
	_, err := testStore.UpsertMatches(ctx, f.season.ID, []provider.Event{m1, m2})
	require.NoError(t, err)
	matches, err := testStore.ListMatches(ctx, MatchFilter{SeasonID: f.season.ID})
	require.NoError(t, err)
	require.Len(t, matches, 2)

	p, err := testStore.UpsertPrediction(ctx, ana, matches[0].ID, scoring.Scoreline{Home: 1, Away: 0})
	require.NoError(t, err)
	p2, err := testStore.UpsertPrediction(ctx, ana, matches[0].ID, scoring.Scoreline{Home: 2, Away: 1})
	require.NoError(t, err)
	assert.Equal(t, p.ID, p2.ID, "one prediction per user and match")
	assert.Equal(t, 2, p2.HomeGoals)
	assert.Nil(t, p2.Points)

	_, err = testStore.UpsertPrediction(ctx, bruno, matches[0].ID, scoring.Scoreline{Home: 3, Away: 0})
	require.NoError(t, err)
	_, err = testStore.UpsertPrediction(ctx, bruno, matches[1].ID, scoring.Scoreline{Home: 0, Away: 0})
	require.NoError(t, err)

	_, err = testStore.UpsertPrediction(ctx, uuid.New(), matches[0].ID, scoring.Scoreline{})
	assert.ErrorIs(t, err, ErrNotFound, "unknown profile")
	_, err = testStore.UpsertPrediction(ctx, ana, matches[1].ID, scoring.Scoreline{Home: -1})
	assert.ErrorIs(t, err, ErrInvalid)

	preds, err := testStore.ListPredictionsForMatches(ctx, []int64{matches[0].ID})
	require.NoError(t, err)
	require.Len(t, preds, 2)

	scores := make([]PredictionScore, 0, len(preds))
	for _, pr := range preds {
		r := scoring.Evaluate(scoring.Scoreline{Home: 2, Away: 1}, pr.Scoreline())
		scores = append(scores, PredictionScore{PredictionID: pr.ID, Points: r.Points, Exact: r.Exact, OutcomeHit: r.OutcomeHit})
	}
	require.NoError(t, testStore.SetPredictionScores(ctx, scores))

	// bruno also had points on a match that is not finished
	other, err := testStore.ListPredictionsForMatches(ctx, []int64{matches[1].ID})
	require.NoError(t, err)
	require.NoError(t, testStore.SetPredictionScores(ctx, []PredictionScore{{PredictionID: other[0].ID, Points: 10, Exact: true, OutcomeHit: true}}))

	cleared, err := testStore.ClearUnfinishedPredictionScores(ctx, f.season.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, cleared, "both matches are still scheduled in the database")

	require.NoError(t, testStore.SetPredictionScores(ctx, scores))
	users, err := testStore.RebuildSeasonPoints(ctx, f.season.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, users)

	board, err := testStore.Leaderboard(ctx, f.season.ID)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, ana, board[0].UserID)
	assert.Equal(t, 10, board[0].TotalPoints)
	assert.Equal(t, 1, board[0].ExactHits)
	assert.Equal(t, 1, board[0].Position)
	assert.Equal(t, 5, board[1].TotalPoints)
	assert.Equal(t, 1, board[1].OutcomeHits)
	assert.Equal(t, 2, board[1].Position)

	mine, err := testStore.ListUserPredictions(ctx, bruno, f.season.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestPaymentsAndPrizePool(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user := newProfile(t, "carla", RoleUser)
	admin := newProfile(t, "admin", RoleAdmin)

	var paymentID, depositID int64
	require.NoError(t, testPool.QueryRow(ctx,
		"INSERT INTO payments (user_id, season_id, amount_cents) VALUES ($1, $2, 5000) RETURNING id",
		user, f.season.ID).Scan(&paymentID))
	require.NoError(t, testPool.QueryRow(ctx,
		"INSERT INTO deposits (user_id, season_id, amount_cents) VALUES ($1, $2, 2000) RETURNING id",
		user, f.season.ID).Scan(&depositID))

	prof, err := testStore.GetProfile(ctx, admin)
	require.NoError(t, err)
	assert.True(t, prof.IsAdmin())

	e, err := testStore.SetEntryStatus(ctx, KindPayment, paymentID, prize.Approved, admin)
	require.NoError(t, err)
	assert.Equal(t, prize.Approved, e.Status)
	require.NotNil(t, e.ReviewedBy)
	assert.Equal(t, admin, *e.ReviewedBy)
	assert.NotNil(t, e.ReviewedAt)

	_, err = testStore.SetEntryStatus(ctx, KindDeposit, -1, prize.Approved, admin)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = testStore.SetEntryStatus(ctx, EntryKind("refund"), depositID, prize.Approved, admin)
	assert.ErrorIs(t, err, ErrInvalid)

	entries, err := testStore.ListSeasonEntries(ctx, f.season.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	pe := make([]prize.Entry, 0, len(entries))
	for _, en := range entries {
		pe = append(pe, prize.Entry{AmountCents: en.AmountCents, Status: en.Status})
	}
	pool := prize.Summarize(pe)
	require.NoError(t, testStore.SavePrizePool(ctx, f.season.ID, pool))

	got, err := testStore.GetPrizePool(ctx, f.season.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), got.ApprovedCents)
	assert.Equal(t, int64(2000), got.PendingCents)

	e, err = testStore.SetEntryStatus(ctx, KindPayment, paymentID, prize.Pending, admin)
	require.NoError(t, err)
	assert.Nil(t, e.ReviewedBy)

	_, err = testStore.GetPrizePool(ctx, -1)
	assert.ErrorIs(t, err, ErrNotFound)
}
