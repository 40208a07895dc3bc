// Package insights aggregates candidate sets into the series shown on the
// dashboard and the side-by-side compare table.
package insights

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/okian/recrai/internal/domain/model"
	"github.com/okian/recrai/internal/domain/ranking"
)

const (
	histogramBins   = 11
	topAreas        = 6
	defaultTopSkill = 8
	// IntakeDays is the length of the daily intake series.
	IntakeDays = 14
	// OtherArea labels blank areas and the overflow bucket.
	OtherArea = "Outros"

	day = 24 * time.Hour
)

// Bucket is one labelled count.
type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Dashboard is the full set of aggregates for one scope.
type Dashboard struct {
	JobID       string   `json:"job_id,omitempty"`
	Talents     int      `json:"talents"`
	Jobs        int      `json:"jobs"`
	Evaluations int      `json:"evaluations"`
	Histogram   []Bucket `json:"histogram"`
	Areas       []Bucket `json:"areas"`
	TopSkills   []Bucket `json:"top_skills"`
	DailyIntake []int    `json:"daily_intake"`
}

// ScopeToJob keeps candidates whose job_id equals jobID. A blank jobID keeps
// everyone.
func ScopeToJob(candidates []model.Candidate, jobID string) []model.Candidate {
	if jobID == "" {
		return candidates
	}
	out := make([]model.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.JobID == jobID {
			out = append(out, c)
		}
	}
	return out
}

// Build computes every dashboard series for the candidates scoped to jobID.
func Build(jobs []model.Job, candidates []model.Candidate, jobID string, now time.Time) Dashboard {
	scoped := ScopeToJob(candidates, jobID)
	return Dashboard{
		JobID:       jobID,
		Talents:     len(scoped),
		Jobs:        len(jobs),
		Evaluations: len(scoped),
		Histogram:   ScoreHistogram(scoped),
		Areas:       AreaBreakdown(scoped),
		TopSkills:   TopSkills(scoped, defaultTopSkill),
		DailyIntake: DailyIntake(scoped, now),
	}
}

// ScoreHistogram counts normalized scores into ten-point bins; the last bin
// holds exactly 100.
func ScoreHistogram(candidates []model.Candidate) []Bucket {
	bins := make([]Bucket, histogramBins)
	for i := range bins {
		if i == histogramBins-1 {
			bins[i].Label = "100"
			continue
		}
		bins[i].Label = strconv.Itoa(i*10) + "-" + strconv.Itoa(i*10+9)
	}
	for _, c := range candidates {
		bins[min(histogramBins-1, ranking.NormalizeScore(c.Score)/10)].Count++
	}
	return bins
}

// AreaBreakdown counts candidates per area, largest first, keeping the top six
// and folding the rest into OtherArea.
func AreaBreakdown(candidates []model.Candidate) []Bucket {
	all := countBy(candidates, func(c model.Candidate) []string {
		a := strings.TrimSpace(c.Area)
		if a == "" {
			a = OtherArea
		}
		return []string{a}
	})
	if len(all) <= topAreas {
		return all
	}
	out := slices.Clone(all[:topAreas])
	rest := 0
	for _, b := range all[topAreas:] {
		rest += b.Count
	}
	return append(out, Bucket{Label: OtherArea, Count: rest})
}

// TopSkills returns the n most frequent skills as written by the API.
func TopSkills(candidates []model.Candidate, n int) []Bucket {
	all := countBy(candidates, func(c model.Candidate) []string { return c.Skills })
	return ranking.Top(all, n)
}

// countBy counts keys in first-seen order, then sorts by count descending
// without disturbing that order among equals.
func countBy(candidates []model.Candidate, keys func(model.Candidate) []string) []Bucket {
	pos := make(map[string]int)
	var out []Bucket
	for _, c := range candidates {
		for _, k := range keys(c) {
			if i, ok := pos[k]; ok {
				out[i].Count++
				continue
			}
			pos[k] = len(out)
			out = append(out, Bucket{Label: k, Count: 1})
		}
	}
	slices.SortStableFunc(out, func(a, b Bucket) int { return b.Count - a.Count })
	if out == nil {
		out = []Bucket{}
	}
	return out
}

// DailyIntake counts candidates created on each of the last IntakeDays days,
// oldest first. A blank creation time counts as now; unparseable ones are
// skipped.
func DailyIntake(candidates []model.Candidate, now time.Time) []int {
	series := make([]int, IntakeDays)
	for _, c := range candidates {
		created := now
		if strings.TrimSpace(c.CreatedAt) != "" {
			t, ok := c.Created()
			if !ok {
				continue
			}
			created = t
		}
		diff := now.Sub(created)
		if diff < 0 {
			continue
		}
		if d := int(diff / day); d < IntakeDays {
			series[IntakeDays-1-d]++
		}
	}
	return series
}
