package sofascore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/bolao/internal/provider"
	"github.com/albapepper/bolao/internal/testutils"
)

func newTestHandler(t *testing.T) (*FootballHandler, *testutils.FakeSofascoreServer) {
	t.Helper()
	fake := testutils.NewFakeSofascoreServer()
	t.Cleanup(fake.Close)

	c := NewClient(testutils.FakeAPIKey, "", 60000, nil).WithBaseURL(fake.URL())
	return NewFootballHandler(c, nil), fake
}

func TestSearchTournaments(t *testing.T) {
	h, _ := newTestHandler(t)

	got, err := h.SearchTournaments(context.Background(), "brasileirao")
	require.NoError(t, err)
	require.Len(t, got, 2, "team results are skipped")
	assert.Equal(t, 325, got[0].ID)
	assert.Equal(t, "Brasileirão Série A", got[0].Name)
	assert.Equal(t, "Brazil", got[0].Category)
	assert.Equal(t, "BR", got[0].Country)
}

func TestGetTournament(t *testing.T) {
	h, _ := newTestHandler(t)
	ctx := context.Background()

	got, err := h.GetTournament(ctx, testutils.FakeTournamentID)
	require.NoError(t, err)
	assert.Equal(t, "brasileirao-serie-a", got.Slug)

	_, err = h.GetTournament(ctx, 1)
	assert.ErrorIs(t, err, provider.ErrNotFound)
}

func TestGetSeasonsAndRounds(t *testing.T) {
	h, _ := newTestHandler(t)
	ctx := context.Background()

	seasons, err := h.GetSeasons(ctx, testutils.FakeTournamentID)
	require.NoError(t, err)
	require.Len(t, seasons, 2)
	assert.Equal(t, provider.Season{ID: 72034, Name: "Brasileirão 2025", Year: "2025"}, seasons[0])

	rounds, err := h.GetRounds(ctx, testutils.FakeTournamentID, testutils.FakeSeasonID)
	require.NoError(t, err)
	assert.Len(t, rounds.Rounds, 3)
	require.NotNil(t, rounds.Current)
	assert.Equal(t, 2, rounds.Current.Number)
}

func TestGetSeasonEvents(t *testing.T) {
	h, _ := newTestHandler(t)

	events, err := h.GetSeasonEvents(context.Background(), testutils.FakeTournamentID, testutils.FakeSeasonID)
	require.NoError(t, err)
	require.Len(t, events, 4, "1001 appears in both lists and must be de-duplicated")

	// ordered by kickoff
	for i := 1; i < len(events); i++ {
		assert.False(t, events[i].StartTime.Before(events[i-1].StartTime))
	}

	byID := make(map[int]provider.Event)
	for _, e := range events {
		byID[e.ID] = e
	}

	finished := byID[1001]
	assert.Equal(t, provider.StatusFinished, finished.Status)
	require.True(t, finished.Finished())
	assert.Equal(t, 2, *finished.HomeScore)
	assert.Equal(t, 1, *finished.AwayScore)
	assert.Equal(t, "PAL", finished.HomeTeam.NameCode)

	scheduled := byID[1003]
	assert.Equal(t, provider.StatusScheduled, scheduled.Status)
	assert.Nil(t, scheduled.HomeScore)
	assert.Equal(t, 2, scheduled.Round.Number)

	assert.Equal(t, provider.StatusPostponed, byID[1004].Status)
	assert.Equal(t, time.Unix(1743804000, 0).UTC(), byID[1002].StartTime)
}

func TestGetRoundEvents(t *testing.T) {
	h, _ := newTestHandler(t)

	events, err := h.GetRoundEvents(context.Background(), testutils.FakeTournamentID, testutils.FakeSeasonID, 2, "")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, provider.StatusLive, events[0].Status)
	require.NotNil(t, events[0].AwayScore)
	assert.Equal(t, 1, *events[0].AwayScore)
}

func TestGetStandings(t *testing.T) {
	h, _ := newTestHandler(t)
	ctx := context.Background()

	rows, err := h.GetStandings(ctx, testutils.FakeTournamentID, testutils.FakeSeasonID)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Palmeiras", rows[0].Team.Name)
	assert.Equal(t, 3, rows[0].Points)
	assert.Equal(t, "", rows[0].Group, "single table has no group name")

	rows, err = h.GetStandings(ctx, testutils.FakeTournamentID, 1)
	require.NoError(t, err, "missing standings are not an error")
	assert.Empty(t, rows)
}

func TestGetSquad(t *testing.T) {
	h, _ := newTestHandler(t)

	players, err := h.GetSquad(context.Background(), testutils.FakeTeamID)
	require.NoError(t, err)
	require.Len(t, players, 3)

	assert.Equal(t, testutils.FakeTeamID, players[0].TeamID)
	require.NotNil(t, players[0].ShirtNumber)
	assert.Equal(t, 21, *players[0].ShirtNumber)
	require.NotNil(t, players[0].DateOfBirth)
	assert.Equal(t, "Brazil", players[0].Nationality)
	assert.Nil(t, players[2].ShirtNumber)
}

func TestGetTeamLogo(t *testing.T) {
	h, _ := newTestHandler(t)

	body, contentType, err := h.GetTeamLogo(context.Background(), testutils.FakeTeamID)
	require.NoError(t, err)
	assert.Equal(t, testutils.FakeLogo, body)
	assert.Equal(t, "image/png", contentType)
}

func TestClient_nonOKStatus(t *testing.T) {
	fake := testutils.NewFakeSofascoreServer()
	defer fake.Close()

	c := NewClient("wrong-key", "", 60000, nil).WithBaseURL(fake.URL())
	_, err := NewFootballHandler(c, nil).GetSeasons(context.Background(), testutils.FakeTournamentID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "returned 403")
	assert.NotErrorIs(t, err, provider.ErrNotFound)
}

type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *mapCache) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[key]
	return b, ok
}

func (m *mapCache) Set(_ context.Context, key string, data []byte, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = data
}

func TestClient_cache(t *testing.T) {
	fake := testutils.NewFakeSofascoreServer()
	defer fake.Close()

	cache := &mapCache{data: make(map[string][]byte)}
	c := NewClient(testutils.FakeAPIKey, "", 60000, nil).
		WithBaseURL(fake.URL()).
		WithCache(cache, time.Minute)
	h := NewFootballHandler(c, nil)
	ctx := context.Background()

	_, err := h.GetSeasons(ctx, testutils.FakeTournamentID)
	require.NoError(t, err)
	_, err = h.GetSeasons(ctx, testutils.FakeTournamentID)
	require.NoError(t, err)

	assert.Equal(t, int64(1), fake.Requests())
}

func TestNormalizeStatus(t *testing.T) {
	tests := map[string]provider.EventStatus{
		"notstarted": provider.StatusScheduled,
		"inprogress": provider.StatusLive,
		"finished":   provider.StatusFinished,
		"postponed":  provider.StatusPostponed,
		"canceled":   provider.StatusCancelled,
		"delayed":    provider.StatusScheduled,
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, normalizeStatus(in))
		})
	}
}
