// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"time"
)

// Candidate is a résumé record as served by the recruiting API.
// Every field except ID may be absent; absent fields read as empty.
type Candidate struct {
	ID      string   `json:"id" yaml:"id"`
	Name    string   `json:"name,omitempty" yaml:"name"`
	Area    string   `json:"area,omitempty" yaml:"area"`
	Summary string   `json:"summary,omitempty" yaml:"summary"`
	Skills  []string `json:"skills,omitempty" yaml:"skills"`
	// Score is a number or a numeric string on a 0-10 or 0-100 scale.
	Score     any    `json:"score" yaml:"score"`
	CreatedAt string `json:"created_at,omitempty" yaml:"created_at"`

	JobID                string   `json:"job_id,omitempty" yaml:"job_id"`
	JobTitle             string   `json:"job_title,omitempty" yaml:"job_title"`
	Strengths            []string `json:"strengths,omitempty" yaml:"strengths"`
	AreasForDevelopment  []string `json:"areas_for_development,omitempty" yaml:"areas_for_development"`
	FinalRecommendations string   `json:"final_recommendations,omitempty" yaml:"final_recommendations"`
}

// ProfileSources returns the strings a candidate is matched on: every skill,
// then area, then summary. The returned slice is freshly allocated.
func (c Candidate) ProfileSources() []string {
	out := make([]string, 0, len(c.Skills)+2)
	out = append(out, c.Skills...)
	return append(out, c.Area, c.Summary)
}

// createdLayouts lists the timestamp shapes seen from the API.
var createdLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Created parses CreatedAt. ok is false when the field is blank or unparseable.
func (c Candidate) Created() (t time.Time, ok bool) {
	s := strings.TrimSpace(c.CreatedAt)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range createdLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
