package sofascore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/albapepper/bolao/internal/provider"
)

// TeamImageURL is the public SofaScore logo URL for a team.
const TeamImageURL = "https://api.sofascore.app/api/v1/team/%d/image"

// FootballHandler fetches and normalizes football data from SofaScore.
type FootballHandler struct {
	client *Client
	logger *slog.Logger
}

// NewFootballHandler creates a football handler on top of a client.
func NewFootballHandler(client *Client, logger *slog.Logger) *FootballHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FootballHandler{client: client, logger: logger}
}

func isNotFound(err error) bool {
	return errors.Is(err, provider.ErrNotFound)
}

func idParams(kv ...interface{}) url.Values {
	p := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		p.Set(kv[i].(string), fmt.Sprint(kv[i+1]))
	}
	return p
}

// --------------------------------------------------------------------------
// Raw shapes
// --------------------------------------------------------------------------

type ssCategory struct {
	Name   string `json:"name"`
	Alpha2 string `json:"alpha2"`
}

type ssTournament struct {
	ID       int         `json:"id"`
	Name     string      `json:"name"`
	Slug     string      `json:"slug"`
	Category *ssCategory `json:"category"`
}

type ssTeam struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
	NameCode  string `json:"nameCode"`
	Slug      string `json:"slug"`
	Country   *struct {
		Name string `json:"name"`
	} `json:"country"`
}

type ssRound struct {
	Round int    `json:"round"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
}

type ssEvent struct {
	ID        int     `json:"id"`
	RoundInfo ssRound `json:"roundInfo"`
	Status    struct {
		Code        int    `json:"code"`
		Description string `json:"description"`
		Type        string `json:"type"`
	} `json:"status"`
	StartTimestamp int64       `json:"startTimestamp"`
	HomeTeam       ssTeam      `json:"homeTeam"`
	AwayTeam       ssTeam      `json:"awayTeam"`
	HomeScore      interface{} `json:"homeScore"`
	AwayScore      interface{} `json:"awayScore"`
}

// --------------------------------------------------------------------------
// Normalization
// --------------------------------------------------------------------------

func normalizeTournament(raw ssTournament) provider.Tournament {
	t := provider.Tournament{
		ID:      raw.ID,
		Name:    raw.Name,
		Slug:    raw.Slug,
		LogoURL: fmt.Sprintf("https://api.sofascore.app/api/v1/unique-tournament/%d/image", raw.ID),
	}
	if raw.Category != nil {
		t.Category = raw.Category.Name
		t.Country = raw.Category.Alpha2
	}
	return t
}

func normalizeTeam(raw ssTeam) provider.Team {
	t := provider.Team{
		ID:        raw.ID,
		Name:      raw.Name,
		ShortName: raw.ShortName,
		NameCode:  raw.NameCode,
		Slug:      raw.Slug,
		LogoURL:   fmt.Sprintf(TeamImageURL, raw.ID),
	}
	if raw.Country != nil {
		t.Country = raw.Country.Name
	}
	return t
}

// normalizeStatus maps SofaScore status types onto the canonical lifecycle.
func normalizeStatus(statusType string) provider.EventStatus {
	switch statusType {
	case "inprogress":
		return provider.StatusLive
	case "finished":
		return provider.StatusFinished
	case "postponed":
		return provider.StatusPostponed
	case "canceled", "cancelled":
		return provider.StatusCancelled
	default:
		return provider.StatusScheduled
	}
}

func normalizeEvent(raw ssEvent) provider.Event {
	e := provider.Event{
		ID: raw.ID,
		Round: provider.Round{
			Number: raw.RoundInfo.Round,
			Name:   raw.RoundInfo.Name,
			Slug:   raw.RoundInfo.Slug,
		},
		Status:    normalizeStatus(raw.Status.Type),
		StartTime: time.Unix(raw.StartTimestamp, 0).UTC(),
		HomeTeam:  normalizeTeam(raw.HomeTeam),
		AwayTeam:  normalizeTeam(raw.AwayTeam),
	}
	// Scores only mean something once the ball is rolling.
	if e.Status == provider.StatusLive || e.Status == provider.StatusFinished {
		e.HomeScore = provider.ScorePtr(raw.HomeScore)
		e.AwayScore = provider.ScorePtr(raw.AwayScore)
	}
	return e
}

func (h *FootballHandler) decodeEvents(items []json.RawMessage) []provider.Event {
	events := make([]provider.Event, 0, len(items))
	for _, item := range items {
		var raw ssEvent
		if err := json.Unmarshal(item, &raw); err != nil {
			h.logger.Warn("decode event", "error", err)
			continue
		}
		events = append(events, normalizeEvent(raw))
	}
	return events
}

// --------------------------------------------------------------------------
// Tournaments and seasons
// --------------------------------------------------------------------------

// SearchTournaments returns unique tournaments matching a free-text query.
func (h *FootballHandler) SearchTournaments(ctx context.Context, query string) ([]provider.Tournament, error) {
	body, err := h.client.get(ctx, "/search", idParams("q", query, "type", "all"))
	if err != nil {
		return nil, fmt.Errorf("search tournaments: %w", err)
	}

	var resp struct {
		Results []struct {
			Type   string          `json:"type"`
			Entity json.RawMessage `json:"entity"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode search: %w", err)
	}

	var out []provider.Tournament
	for _, r := range resp.Results {
		if r.Type != "uniqueTournament" {
			continue
		}
		var raw ssTournament
		if err := json.Unmarshal(r.Entity, &raw); err != nil {
			h.logger.Warn("decode search entity", "error", err)
			continue
		}
		out = append(out, normalizeTournament(raw))
	}
	return out, nil
}

// GetTournament fetches a unique tournament by id.
func (h *FootballHandler) GetTournament(ctx context.Context, tournamentID int) (*provider.Tournament, error) {
	body, err := h.client.get(ctx, "/tournaments/detail", idParams("tournamentId", tournamentID))
	if err != nil {
		return nil, fmt.Errorf("fetch tournament %d: %w", tournamentID, err)
	}

	var resp struct {
		UniqueTournament *ssTournament `json:"uniqueTournament"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode tournament: %w", err)
	}
	if resp.UniqueTournament == nil {
		return nil, fmt.Errorf("tournament %d: %w", tournamentID, provider.ErrNotFound)
	}

	t := normalizeTournament(*resp.UniqueTournament)
	return &t, nil
}

// GetSeasons lists the seasons of a tournament, newest first.
func (h *FootballHandler) GetSeasons(ctx context.Context, tournamentID int) ([]provider.Season, error) {
	body, err := h.client.get(ctx, "/tournaments/get-seasons", idParams("tournamentId", tournamentID))
	if err != nil {
		return nil, fmt.Errorf("fetch seasons: %w", err)
	}

	var resp struct {
		Seasons []struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
			Year string `json:"year"`
		} `json:"seasons"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode seasons: %w", err)
	}

	seasons := make([]provider.Season, 0, len(resp.Seasons))
	for _, s := range resp.Seasons {
		seasons = append(seasons, provider.Season{ID: s.ID, Name: s.Name, Year: s.Year})
	}
	return seasons, nil
}

// GetRounds lists the rounds of a season and the current one.
func (h *FootballHandler) GetRounds(ctx context.Context, tournamentID, seasonID int) (*provider.RoundSet, error) {
	body, err := h.client.get(ctx, "/tournaments/get-rounds",
		idParams("tournamentId", tournamentID, "seasonId", seasonID))
	if err != nil {
		return nil, fmt.Errorf("fetch rounds: %w", err)
	}

	var resp struct {
		CurrentRound *ssRound  `json:"currentRound"`
		Rounds       []ssRound `json:"rounds"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode rounds: %w", err)
	}

	set := &provider.RoundSet{Rounds: make([]provider.Round, 0, len(resp.Rounds))}
	for _, r := range resp.Rounds {
		set.Rounds = append(set.Rounds, provider.Round{Number: r.Round, Name: r.Name, Slug: r.Slug})
	}
	if resp.CurrentRound != nil {
		set.Current = &provider.Round{
			Number: resp.CurrentRound.Round,
			Name:   resp.CurrentRound.Name,
			Slug:   resp.CurrentRound.Slug,
		}
	}
	return set, nil
}

// --------------------------------------------------------------------------
// Matches
// --------------------------------------------------------------------------

// GetSeasonEvents fetches every match of a season, played and upcoming,
// de-duplicated and ordered by kickoff.
func (h *FootballHandler) GetSeasonEvents(ctx context.Context, tournamentID, seasonID int) ([]provider.Event, error) {
	seen := make(map[int]bool)
	var events []provider.Event

	for _, path := range []string{"/tournaments/get-last-matches", "/tournaments/get-next-matches"} {
		items, err := h.client.getPaginated(ctx, path,
			idParams("tournamentId", tournamentID, "seasonId", seasonID))
		if err != nil {
			// A season that has not started has no last matches, and a
			// finished one has no next matches.
			if isNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("fetch season events: %w", err)
		}
		for _, e := range h.decodeEvents(items) {
			if seen[e.ID] {
				continue
			}
			seen[e.ID] = true
			events = append(events, e)
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].StartTime.Before(events[j].StartTime)
	})
	h.logger.Info("Fetched season events", "tournament_id", tournamentID, "season_id", seasonID, "count", len(events))
	return events, nil
}

// GetRoundEvents fetches the matches of one round. slug is needed for named
// knockout rounds that share a number with another phase.
func (h *FootballHandler) GetRoundEvents(ctx context.Context, tournamentID, seasonID, round int, slug string) ([]provider.Event, error) {
	params := idParams("tournamentId", tournamentID, "seasonId", seasonID, "round", round)
	if slug != "" {
		params.Set("slug", slug)
	}
	body, err := h.client.get(ctx, "/tournaments/get-round-matches", params)
	if err != nil {
		return nil, fmt.Errorf("fetch round %d events: %w", round, err)
	}

	var resp pageResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode round events: %w", err)
	}
	return h.decodeEvents(resp.Events), nil
}

// --------------------------------------------------------------------------
// Standings
// --------------------------------------------------------------------------

// GetStandings fetches the total standings tables. Tournaments with groups
// return one table per group.
func (h *FootballHandler) GetStandings(ctx context.Context, tournamentID, seasonID int) ([]provider.StandingRow, error) {
	body, err := h.client.get(ctx, "/tournaments/get-standings",
		idParams("tournamentId", tournamentID, "seasonId", seasonID, "type", "total"))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch standings: %w", err)
	}

	var resp struct {
		Standings []struct {
			Name string `json:"name"`
			Rows []struct {
				Position      int    `json:"position"`
				Team          ssTeam `json:"team"`
				Matches       int    `json:"matches"`
				Wins          int    `json:"wins"`
				Draws         int    `json:"draws"`
				Losses        int    `json:"losses"`
				ScoresFor     int    `json:"scoresFor"`
				ScoresAgainst int    `json:"scoresAgainst"`
				Points        int    `json:"points"`
			} `json:"rows"`
		} `json:"standings"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode standings: %w", err)
	}

	var rows []provider.StandingRow
	for _, table := range resp.Standings {
		group := ""
		if len(resp.Standings) > 1 {
			group = table.Name
		}
		for _, r := range table.Rows {
			rows = append(rows, provider.StandingRow{
				Position:     r.Position,
				Group:        group,
				Team:         normalizeTeam(r.Team),
				Played:       r.Matches,
				Wins:         r.Wins,
				Draws:        r.Draws,
				Losses:       r.Losses,
				GoalsFor:     r.ScoresFor,
				GoalsAgainst: r.ScoresAgainst,
				Points:       r.Points,
			})
		}
	}
	return rows, nil
}

// --------------------------------------------------------------------------
// Squads and logos
// --------------------------------------------------------------------------

// GetSquad fetches a team's players.
func (h *FootballHandler) GetSquad(ctx context.Context, teamID int) ([]provider.Player, error) {
	body, err := h.client.get(ctx, "/teams/get-squad", idParams("teamId", teamID))
	if err != nil {
		return nil, fmt.Errorf("fetch squad for team %d: %w", teamID, err)
	}

	var resp struct {
		Players []struct {
			Player struct {
				ID                   int    `json:"id"`
				Name                 string `json:"name"`
				ShortName            string `json:"shortName"`
				Position             string `json:"position"`
				JerseyNumber         string `json:"jerseyNumber"`
				DateOfBirthTimestamp *int64 `json:"dateOfBirthTimestamp"`
				Country              *struct {
					Name string `json:"name"`
				} `json:"country"`
			} `json:"player"`
		} `json:"players"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode squad: %w", err)
	}

	players := make([]provider.Player, 0, len(resp.Players))
	for _, item := range resp.Players {
		raw := item.Player
		p := provider.Player{
			ID:        raw.ID,
			TeamID:    teamID,
			Name:      raw.Name,
			ShortName: raw.ShortName,
			Position:  raw.Position,
		}
		if n, err := strconv.Atoi(raw.JerseyNumber); err == nil {
			p.ShirtNumber = &n
		}
		if raw.DateOfBirthTimestamp != nil {
			dob := time.Unix(*raw.DateOfBirthTimestamp, 0).UTC()
			p.DateOfBirth = &dob
		}
		if raw.Country != nil {
			p.Nationality = raw.Country.Name
		}
		players = append(players, p)
	}
	return players, nil
}

// GetTeamLogo downloads a team's logo image.
func (h *FootballHandler) GetTeamLogo(ctx context.Context, teamID int) ([]byte, string, error) {
	body, contentType, err := h.client.do(ctx, "/teams/get-logo", idParams("teamId", teamID))
	if err != nil {
		return nil, "", fmt.Errorf("fetch logo for team %d: %w", teamID, err)
	}
	if contentType == "" {
		contentType = "image/png"
	}
	return body, contentType, nil
}
