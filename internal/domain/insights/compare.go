package insights

import (
	"strconv"
	"strings"

	"github.com/okian/recrai/internal/domain/model"
	"github.com/okian/recrai/internal/domain/ranking"
)

const (
	compareTopSkills = 3
	unnamed          = "Talento"
	missing          = "—"
)

// CompareRow is one criterion across the compared candidates. Best marks the
// columns holding the highest value, when the row has such a notion.
type CompareRow struct {
	Label  string   `json:"label"`
	Values []string `json:"values"`
	Best   []bool   `json:"best,omitempty"`
}

// CompareTable lays candidates out side by side.
type CompareTable struct {
	IDs     []string     `json:"ids"`
	Columns []string     `json:"columns"`
	Rows    []CompareRow `json:"rows"`
}

// Compare builds the table for the given candidates in order.
func Compare(candidates []model.Candidate) CompareTable {
	t := CompareTable{
		IDs:     make([]string, len(candidates)),
		Columns: make([]string, len(candidates)),
	}
	scores := make([]int, len(candidates))
	best := 0
	for i, c := range candidates {
		t.IDs[i] = c.ID
		t.Columns[i] = c.Name
		if t.Columns[i] == "" {
			t.Columns[i] = unnamed
		}
		scores[i] = ranking.NormalizeScore(c.Score)
		best = max(best, scores[i])
	}

	score := CompareRow{Label: "Score", Values: make([]string, len(candidates)), Best: make([]bool, len(candidates))}
	skills := CompareRow{Label: "Top Skills", Values: make([]string, len(candidates))}
	strengths := CompareRow{Label: "Strengths", Values: make([]string, len(candidates))}
	rec := CompareRow{Label: "Recommendation", Values: make([]string, len(candidates))}
	for i, c := range candidates {
		score.Values[i] = strconv.Itoa(scores[i])
		score.Best[i] = scores[i] == best
		skills.Values[i] = strings.Join(ranking.Top(c.Skills, compareTopSkills), ", ")
		strengths.Values[i] = strings.Join(c.Strengths, ", ")
		rec.Values[i] = c.FinalRecommendations
		if rec.Values[i] == "" {
			rec.Values[i] = missing
		}
	}
	t.Rows = []CompareRow{score, skills, strengths, rec}
	return t
}
