package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/bolao/internal/prize"
	"github.com/albapepper/bolao/internal/provider"
	"github.com/albapepper/bolao/internal/provider/sofascore"
	"github.com/albapepper/bolao/internal/scoring"
	"github.com/albapepper/bolao/internal/store"
	"github.com/albapepper/bolao/internal/store/mockstore"
	"github.com/albapepper/bolao/internal/testutils"
)

const localSeasonID int64 = 10

func newTestRunner(t *testing.T) (*Runner, *mockstore.Store) {
	t.Helper()
	r, st, _ := newTestRunnerWithServer(t)
	return r, st
}

func newTestRunnerWithServer(t *testing.T) (*Runner, *mockstore.Store, *testutils.FakeSofascoreServer) {
	t.Helper()
	fake := testutils.NewFakeSofascoreServer()
	t.Cleanup(fake.Close)

	client := sofascore.NewClient(testutils.FakeAPIKey, "", 60000, nil).WithBaseURL(fake.URL())
	st := &mockstore.Store{}
	t.Cleanup(func() { st.AssertExpectations(t) })

	return NewRunner(st, sofascore.NewFootballHandler(client, nil), nil), st, fake
}

// expectSeasonOf registers a local season backed by another fake provider season.
func expectSeasonOf(st *mockstore.Store, sofascoreID int) {
	season := fakeSeason()
	season.SofascoreID = sofascoreID
	st.On("GetSeason", mock.Anything, localSeasonID).Return(season, nil)
}

func fakeSeason() *store.Season {
	return &store.Season{
		ID:                    localSeasonID,
		TournamentID:          1,
		SofascoreID:           testutils.FakeSeasonID,
		TournamentSofascoreID: testutils.FakeTournamentID,
		Name:                  "Brasileirão 2025",
	}
}

func expectSeason(st *mockstore.Store) {
	st.On("GetSeason", mock.Anything, localSeasonID).Return(fakeSeason(), nil)
}

func intPtr(v int) *int { return &v }

func finishedMatch(id int64, home, away int) store.Match {
	return store.Match{
		ID:           id,
		SeasonID:     localSeasonID,
		Round:        1,
		HomeTeamID:   id*2 - 1,
		HomeTeamName: fmt.Sprintf("Home %d", id),
		AwayTeamID:   id * 2,
		AwayTeamName: fmt.Sprintf("Away %d", id),
		Status:       provider.StatusFinished,
		HomeScore:    intPtr(home),
		AwayScore:    intPtr(away),
	}
}

func TestChunks(t *testing.T) {
	var sizes []int
	n, err := chunks([]int{1, 2, 3, 4, 5}, 2, func(b []int) (int, error) {
		sizes = append(sizes, len(b))
		return len(b), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, []int{2, 2, 1}, sizes)

	boom := errors.New("boom")
	n, err = chunks([]int{1, 2, 3, 4, 5}, 2, func(b []int) (int, error) {
		if b[0] == 3 {
			return 0, boom
		}
		return len(b), nil
	})
	assert.Equal(t, 2, n)
	var be *BatchError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, 2, be.Processed)
	assert.ErrorIs(t, err, boom)
}

func TestSearchTournament(t *testing.T) {
	r, _ := newTestRunner(t)
	ctx := context.Background()

	_, err := r.SearchTournament(ctx, "   ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	got, err := r.SearchTournament(ctx, "brasileirao")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestGetSeasonsAndRounds(t *testing.T) {
	r, _ := newTestRunner(t)
	ctx := context.Background()

	_, err := r.GetSeasons(ctx, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	seasons, err := r.GetSeasons(ctx, testutils.FakeTournamentID)
	require.NoError(t, err)
	assert.Len(t, seasons, 2)

	rounds, err := r.GetRounds(ctx, testutils.FakeTournamentID, testutils.FakeSeasonID)
	require.NoError(t, err)
	assert.Len(t, rounds.Rounds, 3)
	assert.Equal(t, scoring.League, rounds.Format)
	require.NotNil(t, rounds.Current)
	assert.Equal(t, 2, rounds.Current.Number)

	rounds, err = r.GetRounds(ctx, testutils.FakeTournamentID, 1)
	require.NoError(t, err, "a season without rounds is not an error")
	assert.Empty(t, rounds.Rounds)
	assert.Equal(t, scoring.League, rounds.Format)
}

func TestSetupTournament(t *testing.T) {
	r, st := newTestRunner(t)
	ctx := context.Background()

	saved := &store.Tournament{ID: 1, SofascoreID: testutils.FakeTournamentID, Name: "Brasileirão Série A", Format: scoring.League}
	st.On("UpsertTournament", mock.Anything,
		mock.MatchedBy(func(tr provider.Tournament) bool { return tr.ID == testutils.FakeTournamentID }),
		scoring.League).Return(saved, nil)
	st.On("UpsertSeasons", mock.Anything, int64(1),
		mock.MatchedBy(func(s []provider.Season) bool { return len(s) == 2 })).Return(2, nil)
	st.On("GetSeasonBySofascoreID", mock.Anything, testutils.FakeSeasonID).Return(fakeSeason(), nil)
	st.On("SetSeasonRounds", mock.Anything, localSeasonID,
		mock.MatchedBy(func(c *int) bool { return c != nil && *c == 2 }), 3).Return(nil)

	res, err := r.SetupTournament(ctx, testutils.FakeTournamentID, 0)
	require.NoError(t, err)
	assert.Equal(t, saved, res.Tournament)
	assert.Equal(t, 2, res.Seasons)
	assert.Equal(t, scoring.League, res.Format)
	assert.Equal(t, 3, res.TotalRounds)
	assert.Equal(t, 3, res.Season.TotalRounds)
}

func TestSetupTournament_errors(t *testing.T) {
	r, _ := newTestRunner(t)
	ctx := context.Background()

	_, err := r.SetupTournament(ctx, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = r.SetupTournament(ctx, 1, 0)
	assert.ErrorIs(t, err, provider.ErrNotFound)

	_, err = r.SetupTournament(ctx, testutils.FakeTournamentID, 999)
	assert.ErrorIs(t, err, provider.ErrNotFound, "season must belong to the tournament")
}

func TestSeasonRef(t *testing.T) {
	r, st := newTestRunner(t)
	ctx := context.Background()

	_, err := r.ImportMatches(ctx, SeasonRef{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	st.On("GetSeasonBySofascoreID", mock.Anything, 42).Return(nil, store.ErrNotFound)
	_, err = r.ImportMatches(ctx, SeasonRef{SofascoreID: 42})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestImportMatches(t *testing.T) {
	r, st := newTestRunner(t)
	r.WithBatchSize(2)
	expectSeason(st)

	st.On("UpsertTeams", mock.Anything, mock.MatchedBy(func(ts []provider.Team) bool { return len(ts) == 2 })).
		Return(2, nil).Twice()
	st.On("UpsertMatches", mock.Anything, localSeasonID, mock.MatchedBy(func(es []provider.Event) bool { return len(es) == 2 })).
		Return(2, nil).Twice()

	res, err := r.ImportMatches(context.Background(), SeasonRef{LocalID: localSeasonID})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Teams)
	assert.Equal(t, 4, res.Matches)
}

func TestImportMatches_batchError(t *testing.T) {
	r, st := newTestRunner(t)
	r.WithBatchSize(2)
	expectSeason(st)

	st.On("UpsertTeams", mock.Anything, mock.Anything).Return(2, nil).Twice()
	st.On("UpsertMatches", mock.Anything, localSeasonID, mock.Anything).Return(2, nil).Once()
	st.On("UpsertMatches", mock.Anything, localSeasonID, mock.Anything).Return(0, store.ErrNotFound).Once()

	res, err := r.ImportMatches(context.Background(), SeasonRef{LocalID: localSeasonID})
	var be *BatchError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, 2, be.Processed)
	assert.Equal(t, 2, res.Matches)
}

func TestImportRoundMatches(t *testing.T) {
	r, st := newTestRunner(t)
	ctx := context.Background()

	_, err := r.ImportRoundMatches(ctx, SeasonRef{LocalID: localSeasonID}, 0, "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	expectSeason(st)
	st.On("UpsertTeams", mock.Anything, mock.MatchedBy(func(ts []provider.Team) bool { return len(ts) == 2 })).Return(2, nil)
	st.On("UpsertMatches", mock.Anything, localSeasonID, mock.MatchedBy(func(es []provider.Event) bool {
		return len(es) == 1 && es[0].ID == 1003 && es[0].Status == provider.StatusLive
	})).Return(1, nil)

	res, err := r.ImportRoundMatches(ctx, SeasonRef{LocalID: localSeasonID}, 2, "")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Matches)
}

func TestUpdateMatchScores(t *testing.T) {
	r, st := newTestRunner(t)
	expectSeason(st)
	st.On("UpdateMatchScores", mock.Anything, mock.MatchedBy(func(es []provider.Event) bool { return len(es) == 4 })).
		Return(1, nil)

	res, err := r.UpdateMatchScores(context.Background(), SeasonRef{LocalID: localSeasonID})
	require.NoError(t, err)
	assert.Equal(t, 1, res.MatchesUpdated)
}

func TestUpdatePendingScores(t *testing.T) {
	r, st := newTestRunner(t)
	expectSeason(st)

	now := time.Now()
	st.On("ListMatches", mock.Anything, store.MatchFilter{
		SeasonID: localSeasonID,
		Statuses: []provider.EventStatus{provider.StatusScheduled, provider.StatusLive},
	}).Return([]store.Match{
		{ID: 3, Round: 2, Status: provider.StatusScheduled, StartTime: now.Add(-time.Hour)},
		{ID: 5, Round: 3, Status: provider.StatusScheduled, StartTime: now.Add(48 * time.Hour)},
	}, nil)
	st.On("UpdateMatchScores", mock.Anything, mock.MatchedBy(func(es []provider.Event) bool {
		return len(es) == 1 && es[0].ID == 1003
	})).Return(1, nil)

	res, err := r.UpdatePendingScores(context.Background(), SeasonRef{LocalID: localSeasonID})
	require.NoError(t, err)
	assert.Equal(t, 1, res.MatchesUpdated)
	assert.Empty(t, res.Errors)
}

func TestUpdatePendingScores_sharedRoundNumber(t *testing.T) {
	r, st, fake := newTestRunnerWithServer(t)
	expectSeason(st)

	past := time.Now().Add(-time.Hour)
	st.On("ListMatches", mock.Anything, mock.Anything).Return([]store.Match{
		{ID: 7, Round: 1, RoundSlug: "quarterfinals", Status: provider.StatusScheduled, StartTime: past},
		{ID: 3, Round: 1, Status: provider.StatusLive, StartTime: past},
		{ID: 4, Round: 1, Status: provider.StatusScheduled, StartTime: past},
	}, nil)
	st.On("UpdateMatchScores", mock.Anything, mock.Anything).Return(1, nil)

	res, err := r.UpdatePendingScores(context.Background(), SeasonRef{LocalID: localSeasonID})
	require.NoError(t, err)
	assert.Empty(t, res.Errors)
	assert.Equal(t, []string{"1/", "1/quarterfinals"}, fake.RoundRequests())
}

func TestCalculateScores(t *testing.T) {
	r, st := newTestRunner(t)
	expectSeason(st)

	noScore := finishedMatch(2, 0, 0)
	noScore.HomeScore = nil
	st.On("ListMatches", mock.Anything, store.MatchFilter{
		SeasonID:     localSeasonID,
		Statuses:     finishedOnly,
		Uncalculated: true,
	}).Return([]store.Match{finishedMatch(1, 2, 1), noScore}, nil)

	st.On("ListPredictionsForMatches", mock.Anything, []int64{1}).Return([]store.Prediction{
		{ID: 100, MatchID: 1, HomeGoals: 2, AwayGoals: 1},
		{ID: 101, MatchID: 1, HomeGoals: 1, AwayGoals: 0},
		{ID: 102, MatchID: 1, HomeGoals: 0, AwayGoals: 0},
	}, nil)
	st.On("SetPredictionScores", mock.Anything, []store.PredictionScore{
		{PredictionID: 100, Points: 10, Exact: true, OutcomeHit: true},
		{PredictionID: 101, Points: 5, OutcomeHit: true},
		{PredictionID: 102, Points: 0},
	}).Return(nil)
	st.On("MarkScoresCalculated", mock.Anything, []int64{1}).Return(nil)
	st.On("RebuildSeasonPoints", mock.Anything, localSeasonID).Return(3, nil)

	res, err := r.CalculateScores(context.Background(), SeasonRef{LocalID: localSeasonID})
	require.NoError(t, err)
	assert.Equal(t, 1, res.MatchesScored)
	assert.Equal(t, 3, res.PredictionsScored)
	assert.Equal(t, 3, res.Users)
	assert.Len(t, res.Errors, 1, "finished match without score is reported")
}

func TestCalculateScores_nothingToDo(t *testing.T) {
	r, st := newTestRunner(t)
	expectSeason(st)
	st.On("ListMatches", mock.Anything, mock.Anything).Return(nil, nil)

	res, err := r.CalculateScores(context.Background(), SeasonRef{LocalID: localSeasonID})
	require.NoError(t, err)
	assert.Zero(t, res.PredictionsScored)
	st.AssertNotCalled(t, "RebuildSeasonPoints", mock.Anything, mock.Anything)
}

func TestSyncPredictionsSeason(t *testing.T) {
	r, st := newTestRunner(t)
	expectSeason(st)

	st.On("ClearUnfinishedPredictionScores", mock.Anything, localSeasonID).Return(1, nil)
	st.On("ListMatches", mock.Anything, store.MatchFilter{
		SeasonID: localSeasonID,
		Statuses: finishedOnly,
	}).Return([]store.Match{finishedMatch(1, 0, 0), finishedMatch(2, 1, 3)}, nil)
	st.On("ListPredictionsForMatches", mock.Anything, []int64{1, 2}).Return([]store.Prediction{
		{ID: 1, MatchID: 1, HomeGoals: 1, AwayGoals: 1},
		{ID: 2, MatchID: 2, HomeGoals: 1, AwayGoals: 3},
	}, nil)
	st.On("SetPredictionScores", mock.Anything, []store.PredictionScore{
		{PredictionID: 1, Points: 5, OutcomeHit: true},
		{PredictionID: 2, Points: 10, Exact: true, OutcomeHit: true},
	}).Return(nil)
	st.On("MarkScoresCalculated", mock.Anything, []int64{1, 2}).Return(nil)
	st.On("RebuildSeasonPoints", mock.Anything, localSeasonID).Return(2, nil)

	res, err := r.SyncPredictionsSeason(context.Background(), SeasonRef{LocalID: localSeasonID})
	require.NoError(t, err)
	assert.Equal(t, 1, res.PredictionsClear)
	assert.Equal(t, 2, res.MatchesScored)
	assert.Equal(t, 2, res.PredictionsScored)
	assert.Equal(t, 2, res.Users)
}

func TestCalculateMatch(t *testing.T) {
	r, st := newTestRunner(t)
	ctx := context.Background()

	live := finishedMatch(7, 1, 0)
	live.Status = provider.StatusLive
	st.On("GetMatch", mock.Anything, int64(7)).Return(&live, nil)

	res, err := r.CalculateMatch(ctx, 7)
	require.NoError(t, err)
	assert.Zero(t, res.MatchesScored, "live match is skipped")

	done := finishedMatch(8, 1, 0)
	st.On("GetMatch", mock.Anything, int64(8)).Return(&done, nil)
	st.On("ListPredictionsForMatches", mock.Anything, []int64{8}).Return([]store.Prediction{
		{ID: 1, MatchID: 8, HomeGoals: 3, AwayGoals: 0},
	}, nil)
	st.On("SetPredictionScores", mock.Anything, []store.PredictionScore{
		{PredictionID: 1, Points: 5, OutcomeHit: true},
	}).Return(nil)
	st.On("MarkScoresCalculated", mock.Anything, []int64{8}).Return(nil)
	st.On("RebuildSeasonPoints", mock.Anything, localSeasonID).Return(1, nil)

	res, err = r.CalculateMatch(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, 1, res.MatchesScored)
	assert.Equal(t, 1, res.Users)

	st.On("GetMatch", mock.Anything, int64(9)).Return(nil, store.ErrNotFound)
	_, err = r.CalculateMatch(ctx, 9)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

type memLogos struct {
	mu   sync.Mutex
	keys []string
}

func (m *memLogos) Upload(_ context.Context, key, contentType string, body io.Reader) (string, error) {
	if _, err := io.ReadAll(body); err != nil {
		return "", err
	}
	if contentType != "image/png" {
		return "", fmt.Errorf("unexpected content type %q", contentType)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys = append(m.keys, key)
	return "https://cdn.test/" + key, nil
}

func TestImportTeams(t *testing.T) {
	r, st := newTestRunner(t)
	logos := &memLogos{}
	r.WithLogoStore(logos)
	expectSeason(st)

	st.On("UpsertTeams", mock.Anything, mock.MatchedBy(func(ts []provider.Team) bool {
		if len(ts) != 4 {
			return false
		}
		for _, tm := range ts {
			if tm.LogoURL != fmt.Sprintf("https://cdn.test/teams/%d.png", tm.ID) {
				return false
			}
		}
		return true
	})).Return(4, nil)
	st.On("UpsertPlayers", mock.Anything, mock.MatchedBy(func(ps []provider.Player) bool {
		return len(ps) == 3 && ps[0].TeamID == testutils.FakeTeamID
	})).Return(3, nil)

	res, err := r.ImportTeams(context.Background(), SeasonRef{LocalID: localSeasonID},
		TeamImportOptions{IncludePlayers: true, UploadLogos: true})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Teams)
	assert.Equal(t, 4, res.Logos)
	assert.Equal(t, 3, res.Players, "teams without a squad are skipped")
	assert.Empty(t, res.Errors)
	assert.Len(t, logos.keys, 4)
}

func TestImportTeams_fallsBackToEvents(t *testing.T) {
	r, st := newTestRunner(t)
	expectSeasonOf(st, testutils.FakeCupSeasonID)

	var saved []provider.Team
	st.On("UpsertTeams", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { saved = args.Get(1).([]provider.Team) }).
		Return(4, nil)

	res, err := r.ImportTeams(context.Background(), SeasonRef{LocalID: localSeasonID}, TeamImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Teams)
	require.Len(t, saved, 4)
	ids := make(map[int]bool)
	for _, tm := range saved {
		ids[tm.ID] = true
	}
	assert.True(t, ids[testutils.FakeTeamID])
	assert.Len(t, ids, 4, "each team once")
}

func TestImportTeams_noLogoStore(t *testing.T) {
	r, st := newTestRunner(t)
	expectSeason(st)
	st.On("UpsertTeams", mock.Anything, mock.Anything).Return(4, nil)

	res, err := r.ImportTeams(context.Background(), SeasonRef{LocalID: localSeasonID},
		TeamImportOptions{UploadLogos: true})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Teams)
	assert.Len(t, res.Errors, 1)
	st.AssertNotCalled(t, "UpsertPlayers", mock.Anything, mock.Anything)
}

func TestGetStandings(t *testing.T) {
	r, st := newTestRunner(t)
	ctx := context.Background()
	expectSeason(st)

	res, err := r.GetStandings(ctx, SeasonRef{LocalID: localSeasonID})
	require.NoError(t, err)
	assert.Equal(t, SourceProvider, res.Source)
	require.Len(t, res.Rows, 4)
	assert.Equal(t, "Palmeiras", res.Rows[0].TeamName)
	assert.Equal(t, 1, res.Rows[0].GoalDiff)
}

func TestGetStandings_groups(t *testing.T) {
	r, st := newTestRunner(t)
	expectSeasonOf(st, testutils.FakeGroupSeasonID)

	res, err := r.GetStandings(context.Background(), SeasonRef{LocalID: localSeasonID})
	require.NoError(t, err)
	assert.Equal(t, SourceProvider, res.Source)
	require.Len(t, res.Rows, 4)

	leaders := map[string]string{}
	for _, row := range res.Rows {
		if row.Position == 1 {
			leaders[row.Group] = row.TeamName
		}
	}
	assert.Equal(t, map[string]string{"Group A": "Palmeiras", "Group B": "Flamengo"}, leaders)
}

func TestGetStandings_computedFallback(t *testing.T) {
	r, st := newTestRunner(t)

	season := fakeSeason()
	season.SofascoreID = 1
	st.On("GetSeason", mock.Anything, localSeasonID).Return(season, nil)
	st.On("ListMatches", mock.Anything, store.MatchFilter{SeasonID: localSeasonID, Statuses: finishedOnly}).
		Return([]store.Match{finishedMatch(1, 3, 0), finishedMatch(2, 1, 1)}, nil)

	res, err := r.GetStandings(context.Background(), SeasonRef{LocalID: localSeasonID})
	require.NoError(t, err)
	assert.Equal(t, SourceComputed, res.Source)
	require.Len(t, res.Rows, 4)
	assert.Equal(t, "Home 1", res.Rows[0].TeamName)
	assert.Equal(t, 3, res.Rows[0].Points)
	assert.Equal(t, 4, res.Rows[3].Position)
}

func TestRecomputePrizePool(t *testing.T) {
	r, st := newTestRunner(t)

	st.On("ListSeasonEntries", mock.Anything, localSeasonID).Return([]store.PaymentEntry{
		{ID: 1, Kind: store.KindPayment, AmountCents: 5000, Status: prize.Approved},
		{ID: 2, Kind: store.KindPayment, AmountCents: 5000, Status: prize.Pending},
		{ID: 1, Kind: store.KindDeposit, AmountCents: 2500, Status: prize.Approved},
		{ID: 2, Kind: store.KindDeposit, AmountCents: 9999, Status: prize.Rejected},
	}, nil)
	want := prize.Pool{ApprovedCents: 7500, PendingCents: 5000, ApprovedCount: 2, PendingCount: 1}
	st.On("SavePrizePool", mock.Anything, localSeasonID, want).Return(nil)

	var changed []int64
	r.OnSeasonChange(func(id int64) { changed = append(changed, id) })

	got, err := r.RecomputePrizePool(context.Background(), localSeasonID)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, []int64{localSeasonID}, changed)
}
