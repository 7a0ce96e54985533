// Package ranking orders users on a season leaderboard.
package ranking

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Entry is one user's accumulated points in a season.
type Entry struct {
	Position    int       `json:"position"`
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"display_name"`
	TotalPoints int       `json:"total_points"`
	ExactHits   int       `json:"exact_hits"`
	OutcomeHits int       `json:"outcome_hits"`
	Predictions int       `json:"predictions"`
}

func tied(a, b Entry) bool {
	return a.TotalPoints == b.TotalPoints && a.ExactHits == b.ExactHits && a.OutcomeHits == b.OutcomeHits
}

// Rank sorts entries and assigns competition positions: users level on
// points, exact hits and outcome hits share a position and the next
// position is skipped (1, 1, 3). The input slice is sorted in place.
func Rank(entries []Entry) []Entry {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		if a.ExactHits != b.ExactHits {
			return a.ExactHits > b.ExactHits
		}
		if a.OutcomeHits != b.OutcomeHits {
			return a.OutcomeHits > b.OutcomeHits
		}
		return strings.ToLower(a.DisplayName) < strings.ToLower(b.DisplayName)
	})

	for i := range entries {
		if i > 0 && tied(entries[i-1], entries[i]) {
			entries[i].Position = entries[i-1].Position
			continue
		}
		entries[i].Position = i + 1
	}
	return entries
}
