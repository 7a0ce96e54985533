// Package provider defines canonical data types that the match-data provider
// normalizes into. These structs are the contract between the provider
// handler and the seed runner: the provider outputs these, the seed runner
// writes them to Postgres.
package provider

import (
	"errors"
	"time"
)

// ErrNotFound is returned when the provider has no resource for the given id.
var ErrNotFound = errors.New("provider: not found")

// Tournament is a competition (e.g. Brasileirão Série A, Copa do Brasil).
type Tournament struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug,omitempty"`
	Category string `json:"category,omitempty"`
	Country  string `json:"country,omitempty"`
	LogoURL  string `json:"logo_url,omitempty"`
}

// Season is one edition of a tournament.
type Season struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Year string `json:"year,omitempty"`
}

// Round is a numbered, optionally named, phase within a season.
type Round struct {
	Number int    `json:"round"`
	Name   string `json:"name,omitempty"`
	Slug   string `json:"slug,omitempty"`
}

// RoundSet is every round of a season plus the one currently being played.
type RoundSet struct {
	Rounds  []Round `json:"rounds"`
	Current *Round  `json:"current_round,omitempty"`
}

// Team is the canonical team shape written to the teams table.
type Team struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name,omitempty"`
	NameCode  string `json:"name_code,omitempty"`
	Slug      string `json:"slug,omitempty"`
	Country   string `json:"country,omitempty"`
	LogoURL   string `json:"logo_url,omitempty"`
}

// Player is the canonical player shape written to the players table.
type Player struct {
	ID          int        `json:"id"`
	TeamID      int        `json:"team_id"`
	Name        string     `json:"name"`
	ShortName   string     `json:"short_name,omitempty"`
	Position    string     `json:"position,omitempty"`
	ShirtNumber *int       `json:"shirt_number,omitempty"`
	Nationality string     `json:"nationality,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
}

// EventStatus is the normalized lifecycle state of a match.
type EventStatus string

const (
	StatusScheduled EventStatus = "scheduled"
	StatusLive      EventStatus = "live"
	StatusFinished  EventStatus = "finished"
	StatusPostponed EventStatus = "postponed"
	StatusCancelled EventStatus = "cancelled"
)

// Event is a single match.
type Event struct {
	ID        int         `json:"id"`
	Round     Round       `json:"round"`
	Status    EventStatus `json:"status"`
	StartTime time.Time   `json:"start_time"`
	HomeTeam  Team        `json:"home_team"`
	AwayTeam  Team        `json:"away_team"`
	HomeScore *int        `json:"home_score,omitempty"`
	AwayScore *int        `json:"away_score,omitempty"`
}

// Finished reports whether the match is over and has a score.
func (e Event) Finished() bool {
	return e.Status == StatusFinished && e.HomeScore != nil && e.AwayScore != nil
}

// StandingRow is one line of a provider league table.
type StandingRow struct {
	Position     int    `json:"position"`
	Group        string `json:"group,omitempty"`
	Team         Team   `json:"team"`
	Played       int    `json:"played"`
	Wins         int    `json:"wins"`
	Draws        int    `json:"draws"`
	Losses       int    `json:"losses"`
	GoalsFor     int    `json:"goals_for"`
	GoalsAgainst int    `json:"goals_against"`
	Points       int    `json:"points"`
}
