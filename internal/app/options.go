package service

import (
	"time"

	"github.com/okian/recrai/internal/adapters/prefs"
	"github.com/okian/recrai/internal/domain/matching"
	"github.com/okian/recrai/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of scoring workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the scoring queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithMatchMode selects how requirement tokens are compared.
func WithMatchMode(m matching.Mode) Option {
	return func(s *Service) {
		s.scorer = matching.NewScorer(matching.WithMode(m))
	}
}

// WithLimits sets the default number of candidates per job and suggestions
// per candidate.
func WithLimits(candidatesPerJob, suggestionsPerCandidate int) Option {
	return func(s *Service) {
		if candidatesPerJob > 0 {
			s.candidatesPerJob = candidatesPerJob
		}
		if suggestionsPerCandidate > 0 {
			s.suggestionsPerCandidate = suggestionsPerCandidate
		}
	}
}

// WithPreferences sets the preferences manager. Without it preferences live
// in memory.
func WithPreferences(m *prefs.Manager) Option {
	return func(s *Service) {
		if m != nil {
			s.prefs = m
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides time.Now for dashboard windows.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
