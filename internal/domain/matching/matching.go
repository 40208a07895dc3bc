// Package matching estimates how well a candidate covers a job's stated
// requirements.
package matching

import (
	"fmt"
	"math"
	"strings"

	"github.com/okian/recrai/internal/domain/model"
	"github.com/okian/recrai/internal/domain/textnorm"
)

// Mode selects how a requirement token is compared with a candidate token.
type Mode string

const (
	// ModeSubstring hits when either token contains the other. "java" inside
	// "javascript" counts, which over-matches short tokens.
	ModeSubstring Mode = "substring"
	// ModeToken hits only on whole-token equality.
	ModeToken Mode = "token"
)

// ParseMode converts a config string to a Mode. Blank means ModeSubstring.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeSubstring:
		return ModeSubstring, nil
	case ModeToken:
		return ModeToken, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

func (m Mode) match(reqTok, candTok string) bool {
	if m == ModeToken {
		return reqTok == candTok
	}
	return reqTok == candTok || strings.Contains(candTok, reqTok) || strings.Contains(reqTok, candTok)
}

// Requirement reports the outcome for one requirement.
type Requirement struct {
	Requirement    string `json:"requirement"`
	Canonical      string `json:"canonical"`
	Hit            bool   `json:"hit"`
	MatchedToken   string `json:"matched_token,omitempty"`
	CandidateToken string `json:"candidate_token,omitempty"`
}

// Report is the detailed form of a fit computation.
type Report struct {
	Fit          int           `json:"fit"`
	Hits         int           `json:"hits"`
	Total        int           `json:"total"`
	Requirements []Requirement `json:"requirements"`
}

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithMode sets the token comparison mode. Unknown modes are ignored.
func WithMode(m Mode) Option {
	return func(s *Scorer) {
		if m == ModeSubstring || m == ModeToken {
			s.mode = m
		}
	}
}

// Scorer computes requirement fit. It holds no per-call state and is safe for
// concurrent use.
type Scorer struct {
	mode Mode
}

// NewScorer creates a scorer; the default mode is ModeSubstring.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{mode: ModeSubstring}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mode returns the comparison mode in use.
func (s *Scorer) Mode() Mode { return s.mode }

// Fit returns the percentage (0..100) of requirements the candidate satisfies.
// An empty or nil requirement list yields 0.
func (s *Scorer) Fit(requirements []string, c model.Candidate) int {
	return s.Explain(requirements, c).Fit
}

// Explain is Fit with a per-requirement breakdown. Requirements that
// canonize to nothing are skipped and do not count towards the total.
func (s *Scorer) Explain(requirements []string, c model.Candidate) Report {
	report := Report{Requirements: []Requirement{}}
	if len(requirements) == 0 {
		return report
	}

	candidate := textnorm.Tokenize(c.ProfileSources()...).Tokens()

	for _, raw := range requirements {
		canon := textnorm.Canonize(raw)
		if canon == "" {
			continue
		}
		r := Requirement{Requirement: raw, Canonical: canon}
	search:
		for _, rt := range textnorm.Tokenize(canon).Tokens() {
			for _, ct := range candidate {
				if s.mode.match(rt, ct) {
					r.Hit, r.MatchedToken, r.CandidateToken = true, rt, ct
					break search
				}
			}
		}
		if r.Hit {
			report.Hits++
		}
		report.Requirements = append(report.Requirements, r)
	}

	report.Total = len(report.Requirements)
	if report.Total > 0 {
		report.Fit = int(math.Round(100 * (float64(report.Hits) / float64(report.Total))))
	}
	return report
}

var defaultScorer = NewScorer()

// ComputeFit is Fit with the default substring scorer.
func ComputeFit(requirements []string, c model.Candidate) int {
	return defaultScorer.Fit(requirements, c)
}
