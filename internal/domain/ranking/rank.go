package ranking

import (
	"slices"

	"github.com/okian/recrai/internal/domain/matching"
	"github.com/okian/recrai/internal/domain/model"
)

// FitScorer computes requirement fit for one candidate.
type FitScorer interface {
	Fit(requirements []string, c model.Candidate) int
}

// CandidateRank is a candidate scored against one job.
type CandidateRank struct {
	Candidate       model.Candidate `json:"candidate"`
	Fit             int             `json:"fit"`
	NormalizedScore int             `json:"normalized_score"`
	Combined        int             `json:"combined"`
}

// JobSuggestion is a job scored against one candidate.
type JobSuggestion struct {
	Job             model.Job `json:"job"`
	Fit             int       `json:"fit"`
	NormalizedScore int       `json:"normalized_score"`
	Combined        int       `json:"combined"`
}

// NewCandidateRank builds the ranked view of c for a known fit.
func NewCandidateRank(c model.Candidate, fit int) CandidateRank {
	norm := NormalizeScore(c.Score)
	return CandidateRank{Candidate: c, Fit: fit, NormalizedScore: norm, Combined: blend(fit, norm)}
}

// NewJobSuggestion builds the suggestion view of j for a candidate's raw score.
func NewJobSuggestion(j model.Job, fit int, rawScore any) JobSuggestion {
	norm := NormalizeScore(rawScore)
	return JobSuggestion{Job: j, Fit: fit, NormalizedScore: norm, Combined: blend(fit, norm)}
}

// SortCandidates orders ranks by combined value, highest first. Equal values
// keep their relative input order. The slice is sorted in place.
func SortCandidates(ranks []CandidateRank) {
	slices.SortStableFunc(ranks, func(a, b CandidateRank) int { return b.Combined - a.Combined })
}

// SortSuggestions is SortCandidates for job suggestions.
func SortSuggestions(s []JobSuggestion) {
	slices.SortStableFunc(s, func(a, b JobSuggestion) int { return b.Combined - a.Combined })
}

// Top truncates a sorted slice to limit entries; limit <= 0 keeps everything.
func Top[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

// Option applies a configuration option to the Ranker.
type Option func(*Ranker)

// WithScorer sets the fit scorer.
func WithScorer(s FitScorer) Option {
	return func(r *Ranker) {
		if s != nil {
			r.scorer = s
		}
	}
}

// Ranker ranks candidates for a job and jobs for a candidate with the same
// formula.
type Ranker struct {
	scorer FitScorer
}

// NewRanker creates a ranker backed by the default substring scorer.
func NewRanker(opts ...Option) *Ranker {
	r := &Ranker{scorer: matching.NewScorer()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RankCandidates scores every candidate against job and returns at most limit
// entries ordered by combined rank. The input slice is not modified.
func (r *Ranker) RankCandidates(job model.Job, candidates []model.Candidate, limit int) []CandidateRank {
	out := make([]CandidateRank, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, NewCandidateRank(c, r.scorer.Fit(job.Requirements, c)))
	}
	SortCandidates(out)
	return Top(out, limit)
}

// SuggestJobs scores the candidate against every job and returns at most limit
// suggestions ordered by combined rank.
func (r *Ranker) SuggestJobs(c model.Candidate, jobs []model.Job, limit int) []JobSuggestion {
	out := make([]JobSuggestion, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, NewJobSuggestion(j, r.scorer.Fit(j.Requirements, c), c.Score))
	}
	SortSuggestions(out)
	return Top(out, limit)
}
