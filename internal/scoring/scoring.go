// Package scoring holds the prediction scoring rule and tournament format
// detection. Everything here is pure and safe for concurrent use.
package scoring

import "strings"

// Points awarded per prediction.
const (
	ExactPoints   = 10
	OutcomePoints = 5
	MissPoints    = 0
)

// Outcome is the result class of a scoreline.
type Outcome string

const (
	Home Outcome = "home"
	Away Outcome = "away"
	Draw Outcome = "draw"
)

// Scoreline is a pair of goal counts.
type Scoreline struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// Classify returns the outcome of a scoreline.
func Classify(s Scoreline) Outcome {
	switch {
	case s.Home > s.Away:
		return Home
	case s.Away > s.Home:
		return Away
	default:
		return Draw
	}
}

// Result is the evaluation of one prediction against an actual score.
type Result struct {
	Points     int     `json:"points"`
	Outcome    Outcome `json:"outcome"`
	Exact      bool    `json:"exact"`
	OutcomeHit bool    `json:"outcome_hit"`
}

// Evaluate scores a prediction. Outcome is the class of the actual result.
func Evaluate(actual, predicted Scoreline) Result {
	r := Result{Outcome: Classify(actual), Points: MissPoints}
	switch {
	case actual == predicted:
		r.Exact = true
		r.OutcomeHit = true
		r.Points = ExactPoints
	case r.Outcome == Classify(predicted):
		r.OutcomeHit = true
		r.Points = OutcomePoints
	}
	return r
}

// Points is shorthand for Evaluate(actual, predicted).Points.
func Points(actual, predicted Scoreline) int {
	return Evaluate(actual, predicted).Points
}

// Format is how a tournament season is played.
type Format string

const (
	League   Format = "league"
	Knockout Format = "knockout"
	Mixed    Format = "mixed"
)

// RoundInfo is the minimum needed to classify a round.
type RoundInfo struct {
	Number int
	Name   string
}

// Named reports whether the round carries a name (e.g. "Quarterfinals").
func (r RoundInfo) Named() bool {
	return strings.TrimSpace(r.Name) != ""
}

// DetectFormat infers the format from the round set. Rounds with names are
// knockout phases, numbered-only rounds are league matchdays. An empty set
// is treated as a league.
func DetectFormat(rounds []RoundInfo) Format {
	var named, unnamed bool
	for _, r := range rounds {
		if r.Named() {
			named = true
		} else {
			unnamed = true
		}
	}
	switch {
	case named && unnamed:
		return Mixed
	case named:
		return Knockout
	default:
		return League
	}
}
