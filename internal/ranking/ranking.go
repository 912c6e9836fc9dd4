// Package ranking computes effort scores and orders group members by them.
//
// The effort score is the share of a member's salary they have saved, as a
// percentage rounded to one decimal place. Scores are always recomputed from
// salary and total saved and are never stored.
package ranking

import (
	"math"
	"sort"

	"moneyrats/internal/models"
)

// Entry is one line of a ranking.
type Entry struct {
	Position   int     `json:"position"`
	UserID     uint    `json:"user_id"`
	Name       string  `json:"name"`
	Salary     float64 `json:"salary"`
	TotalSaved float64 `json:"total_saved"`
	Effort     float64 `json:"effort"`
}

// Score returns totalSaved as a percentage of salary, rounded half away from
// zero to one decimal. A non-positive salary scores 0, as does any input that
// would yield a negative or non-finite value.
func Score(totalSaved, salary float64) float64 {
	if !(salary > 0) {
		return 0
	}
	percent := totalSaved / salary * 100
	score := math.Round(percent*10) / 10
	if math.IsNaN(score) || math.IsInf(score, 0) || score < 0 {
		return 0
	}
	return score
}

// Rank scores each member and sorts them by descending effort. Members with
// equal scores keep their relative input order. The input is not modified.
func Rank(members []models.User) []Entry {
	entries := make([]Entry, 0, len(members))
	for i := range members {
		m := &members[i]
		entries = append(entries, Entry{
			UserID:     m.ID,
			Name:       m.Name,
			Salary:     m.Salary,
			TotalSaved: m.TotalSaved,
			Effort:     Score(m.TotalSaved, m.Salary),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Effort > entries[j].Effort
	})

	for i := range entries {
		entries[i].Position = i + 1
	}
	return entries
}
