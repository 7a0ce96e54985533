// Package standings computes a league table from finished match results.
package standings

import (
	"sort"
	"strings"
)

// Points per result.
const (
	WinPoints  = 3
	DrawPoints = 1
)

// Result is one finished match between two teams.
type Result struct {
	HomeTeamID   int
	HomeTeamName string
	AwayTeamID   int
	AwayTeamName string
	HomeScore    int
	AwayScore    int
}

// Row is one team's line in the table.
// Group names the table the row belongs to when a tournament has several.
type Row struct {
	Position     int    `json:"position"`
	Group        string `json:"group,omitempty"`
	TeamID       int    `json:"team_id"`
	TeamName     string `json:"team_name"`
	Played       int    `json:"played"`
	Wins         int    `json:"wins"`
	Draws        int    `json:"draws"`
	Losses       int    `json:"losses"`
	GoalsFor     int    `json:"goals_for"`
	GoalsAgainst int    `json:"goals_against"`
	GoalDiff     int    `json:"goal_diff"`
	Points       int    `json:"points"`
}

// Build aggregates results into a sorted table. Ties on points are broken by
// wins, goal difference, goals scored and finally team name.
func Build(results []Result) []Row {
	index := make(map[int]*Row)
	entry := func(id int, name string) *Row {
		r, ok := index[id]
		if !ok {
			r = &Row{TeamID: id, TeamName: name}
			index[id] = r
		}
		return r
	}

	for _, m := range results {
		home := entry(m.HomeTeamID, m.HomeTeamName)
		away := entry(m.AwayTeamID, m.AwayTeamName)

		home.Played++
		away.Played++
		home.GoalsFor += m.HomeScore
		home.GoalsAgainst += m.AwayScore
		away.GoalsFor += m.AwayScore
		away.GoalsAgainst += m.HomeScore

		switch {
		case m.HomeScore > m.AwayScore:
			home.Wins++
			home.Points += WinPoints
			away.Losses++
		case m.AwayScore > m.HomeScore:
			away.Wins++
			away.Points += WinPoints
			home.Losses++
		default:
			home.Draws++
			away.Draws++
			home.Points += DrawPoints
			away.Points += DrawPoints
		}
	}

	rows := make([]Row, 0, len(index))
	for _, r := range index {
		r.GoalDiff = r.GoalsFor - r.GoalsAgainst
		rows = append(rows, *r)
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.GoalDiff != b.GoalDiff {
			return a.GoalDiff > b.GoalDiff
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		return strings.ToLower(a.TeamName) < strings.ToLower(b.TeamName)
	})

	for i := range rows {
		rows[i].Position = i + 1
	}
	return rows
}
