// Package seed runs the SofaScore import and scoring actions against the store.
package seed

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned when an action is called with missing or
// out-of-range parameters.
var ErrInvalidInput = errors.New("seed: invalid input")

// BatchError reports a failed chunk write together with the number of
// records committed before it.
type BatchError struct {
	Processed int
	Err       error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch failed after %d records: %v", e.Processed, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// SeedResult tracks counts and non-fatal errors from an action.
type SeedResult struct {
	Teams             int      `json:"teams"`
	Players           int      `json:"players"`
	Logos             int      `json:"logos"`
	Matches           int      `json:"matches"`
	MatchesUpdated    int      `json:"matches_updated"`
	MatchesScored     int      `json:"matches_scored"`
	PredictionsScored int      `json:"predictions_scored"`
	PredictionsClear  int      `json:"predictions_cleared"`
	Users             int      `json:"users"`
	Errors            []string `json:"errors,omitempty"`
}

// Add merges another SeedResult into this one.
func (r *SeedResult) Add(other SeedResult) {
	r.Teams += other.Teams
	r.Players += other.Players
	r.Logos += other.Logos
	r.Matches += other.Matches
	r.MatchesUpdated += other.MatchesUpdated
	r.MatchesScored += other.MatchesScored
	r.PredictionsScored += other.PredictionsScored
	r.PredictionsClear += other.PredictionsClear
	r.Users += other.Users
	r.Errors = append(r.Errors, other.Errors...)
}

// AddErrorf records a formatted error message.
func (r *SeedResult) AddErrorf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Summary returns a human-readable summary of the action.
func (r *SeedResult) Summary() string {
	return fmt.Sprintf(
		"teams=%d players=%d logos=%d matches=%d updated=%d scored_matches=%d scored_predictions=%d users=%d errors=%d",
		r.Teams, r.Players, r.Logos, r.Matches, r.MatchesUpdated,
		r.MatchesScored, r.PredictionsScored, r.Users, len(r.Errors),
	)
}
