// Package service wires the matching core to a job/CV source, the scoring
// worker pool and user preferences. It implements the dependencies required
// by the HTTP API and the CLI.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/recrai/internal/adapters/mq/queue"
	"github.com/okian/recrai/internal/adapters/mq/worker"
	"github.com/okian/recrai/internal/adapters/prefs"
	"github.com/okian/recrai/internal/adapters/recruitapi"
	"github.com/okian/recrai/internal/domain/insights"
	"github.com/okian/recrai/internal/domain/matching"
	"github.com/okian/recrai/internal/domain/model"
	"github.com/okian/recrai/internal/domain/ranking"
	"github.com/okian/recrai/pkg/logger"
	"github.com/okian/recrai/pkg/metrics"
)

// Source provides jobs and analyzed CVs. recruitapi.Client and
// localsource.Source implement it.
type Source interface {
	ListJobs(ctx context.Context) ([]model.Job, error)
	ListCandidates(ctx context.Context) ([]model.Candidate, error)
	GetCandidate(ctx context.Context, id string) (model.Candidate, error)
	DeleteCandidate(ctx context.Context, id string) error
}

// Optional source capabilities, discovered by type assertion.
type (
	jobCreator interface {
		CreateJob(ctx context.Context, job model.Job) (model.Job, error)
	}
	analyzer interface {
		AnalyzeCV(ctx context.Context, req recruitapi.AnalyzeRequest) (json.RawMessage, error)
	}
	pinger interface {
		Health(ctx context.Context) error
	}
	describer interface {
		Info(ctx context.Context) (recruitapi.Info, error)
	}
)

// Service implements the matcher use cases.
type Service struct {
	mu sync.RWMutex

	source Source
	prefs  *prefs.Manager
	scorer *matching.Scorer
	ranker *ranking.Ranker
	queue  *queue.InMemoryQueue[worker.Task]
	pool   *worker.Pool

	workerCount             int
	queueSize               int
	candidatesPerJob        int
	suggestionsPerCandidate int

	started bool
	now     func() time.Time
	logger  logger.Logger
}

// New constructs a Service reading from source.
func New(source Source, opts ...Option) *Service {
	s := &Service{
		source:                  source,
		prefs:                   prefs.NewManager(prefs.NewMemoryStore()),
		scorer:                  matching.NewScorer(),
		workerCount:             runtime.NumCPU(),
		queueSize:               4096,
		candidatesPerJob:        8,
		suggestionsPerCandidate: 6,
		now:                     time.Now,
		logger:                  logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ranker = ranking.NewRanker(ranking.WithScorer(s.scorer))
	return s
}

// Start initializes and starts the scoring pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	p, err := s.prefs.Load(ctx)
	if err != nil {
		return fmt.Errorf("load preferences: %w", err)
	}
	metrics.UpdateHiddenCandidates(len(p.HiddenCandidateIDs))

	// The pool lives until Stop, not until the caller's context ends.
	s.queue = queue.NewInMemoryQueue[worker.Task](queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s.scorer, worker.WithLogger(s.logger))
	s.pool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "matcher service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.String("matchMode", string(s.scorer.Mode())),
	)
	return nil
}

// Stop drains the scoring pool and closes the preferences store.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping matcher service...")
	var errs []error
	if err := s.pool.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.prefs.Close(); err != nil {
		errs = append(errs, err)
	}
	s.started = false
	s.logger.Info(ctx, "matcher service stopped")
	return errors.Join(errs...)
}

func (s *Service) scoringPool() (*worker.Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.pool, nil
}

// Jobs returns every job.
func (s *Service) Jobs(ctx context.Context) ([]model.Job, error) {
	jobs, err := s.source.ListJobs(ctx)
	if err != nil {
		return nil, classify(err)
	}
	return jobs, nil
}

// Job returns one job by id.
func (s *Service) Job(ctx context.Context, id string) (model.Job, error) {
	jobs, err := s.Jobs(ctx)
	if err != nil {
		return model.Job{}, err
	}
	return findJob(jobs, id)
}

func findJob(jobs []model.Job, id string) (model.Job, error) {
	for _, j := range jobs {
		if j.ID == id {
			return j, nil
		}
	}
	return model.Job{}, fmt.Errorf("%w: job %s", ErrNotFound, id)
}

// CreateJob publishes job and ranks the current candidates against it.
func (s *Service) CreateJob(ctx context.Context, job model.Job) (model.Job, []ranking.CandidateRank, error) {
	creator, ok := s.source.(jobCreator)
	if !ok {
		return model.Job{}, nil, ErrUnsupported
	}
	job.Requirements = trimList(job.Requirements)
	created, err := creator.CreateJob(ctx, job)
	if err != nil {
		return model.Job{}, nil, classify(err)
	}
	cands, err := s.Candidates(ctx)
	if err != nil {
		return created, nil, err
	}
	ranks, err := s.rank(ctx, created, cands, s.candidatesPerJob)
	return created, ranks, err
}

// Candidates returns every candidate not hidden by preferences.
func (s *Service) Candidates(ctx context.Context) ([]model.Candidate, error) {
	cands, err := s.source.ListCandidates(ctx)
	if err != nil {
		return nil, classify(err)
	}
	return s.visible(ctx, cands)
}

func (s *Service) visible(ctx context.Context, cands []model.Candidate) ([]model.Candidate, error) {
	p, err := s.prefs.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(p.HiddenCandidateIDs) == 0 {
		return cands, nil
	}
	out := make([]model.Candidate, 0, len(cands))
	for _, c := range cands {
		if !p.IsHidden(c.ID) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Candidate returns one candidate. Hidden candidates are not found.
func (s *Service) Candidate(ctx context.Context, id string) (model.Candidate, error) {
	if strings.TrimSpace(id) == "" {
		return model.Candidate{}, fmt.Errorf("%w: empty candidate id", ErrInvalidInput)
	}
	p, err := s.prefs.Load(ctx)
	if err != nil {
		return model.Candidate{}, err
	}
	if p.IsHidden(id) {
		return model.Candidate{}, fmt.Errorf("%w: candidate %s is hidden", ErrNotFound, id)
	}
	c, err := s.source.GetCandidate(ctx, id)
	if err != nil {
		return model.Candidate{}, classify(err)
	}
	return c, nil
}

// catalog fetches jobs and visible candidates concurrently.
func (s *Service) catalog(ctx context.Context) ([]model.Job, []model.Candidate, error) {
	var (
		jobs  []model.Job
		cands []model.Candidate
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		jobs, err = s.Jobs(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		cands, err = s.Candidates(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	metrics.UpdateCatalogue(len(jobs), len(cands))
	return jobs, cands, nil
}

// RankForJob ranks visible candidates against the job's requirements. A
// limit of zero or less uses the configured default.
func (s *Service) RankForJob(ctx context.Context, jobID string, limit int) (model.Job, []ranking.CandidateRank, error) {
	jobs, cands, err := s.catalog(ctx)
	if err != nil {
		return model.Job{}, nil, err
	}
	job, err := findJob(jobs, jobID)
	if err != nil {
		return model.Job{}, nil, err
	}
	if limit <= 0 {
		limit = s.candidatesPerJob
	}
	ranks, err := s.rank(ctx, job, cands, limit)
	return job, ranks, err
}

// rank scores candidates on the worker pool and orders them.
func (s *Service) rank(ctx context.Context, job model.Job, cands []model.Candidate, limit int) ([]ranking.CandidateRank, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRankingLatency("job", float64(time.Since(start).Nanoseconds())/1e6)
	}()

	pool, err := s.scoringPool()
	if err != nil {
		return nil, err
	}
	pairs := make([]worker.Pair, len(cands))
	for i, c := range cands {
		pairs[i] = worker.Pair{Requirements: job.Requirements, Candidate: c}
	}
	reports, err := pool.Score(ctx, pairs)
	if err != nil {
		return nil, err
	}
	ranks := make([]ranking.CandidateRank, len(cands))
	for i, c := range cands {
		ranks[i] = ranking.NewCandidateRank(c, reports[i].Fit)
	}
	ranking.SortCandidates(ranks)
	return ranking.Top(ranks, limit), nil
}

// SuggestForCandidate ranks jobs for one candidate. A limit of zero or less
// uses the configured default.
func (s *Service) SuggestForCandidate(ctx context.Context, candidateID string, limit int) (model.Candidate, []ranking.JobSuggestion, error) {
	var (
		cand model.Candidate
		jobs []model.Job
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cand, err = s.Candidate(gctx, candidateID)
		return err
	})
	g.Go(func() error {
		var err error
		jobs, err = s.Jobs(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.Candidate{}, nil, err
	}
	if limit <= 0 {
		limit = s.suggestionsPerCandidate
	}

	start := time.Now()
	suggestions := s.ranker.SuggestJobs(cand, jobs, limit)
	metrics.RecordRankingLatency("candidate", float64(time.Since(start).Nanoseconds())/1e6)
	return cand, suggestions, nil
}

// FitResult is a single fit computation with its ranking values.
type FitResult struct {
	matching.Report
	NormalizedScore int `json:"normalized_score"`
	Combined        int `json:"combined"`
}

// Fit explains how candidate covers requirements.
func (s *Service) Fit(_ context.Context, requirements []string, c model.Candidate) FitResult {
	report := s.scorer.Explain(requirements, c)
	metrics.RecordFitComputation(string(s.scorer.Mode()), report.Fit)
	r := ranking.NewCandidateRank(c, report.Fit)
	return FitResult{Report: report, NormalizedScore: r.NormalizedScore, Combined: r.Combined}
}

// Dashboard aggregates the catalogue, optionally scoped to one job.
func (s *Service) Dashboard(ctx context.Context, jobID string) (insights.Dashboard, error) {
	jobs, cands, err := s.catalog(ctx)
	if err != nil {
		return insights.Dashboard{}, err
	}
	if jobID != "" {
		if _, err := findJob(jobs, jobID); err != nil {
			return insights.Dashboard{}, err
		}
	}
	return insights.Build(jobs, cands, jobID, s.now()), nil
}

// Compare lays out candidates side by side. With no ids the saved compare
// list is used. At least two distinct ids are required.
func (s *Service) Compare(ctx context.Context, ids []string) (insights.CompareTable, error) {
	ids = cleanList(ids)
	if len(ids) == 0 {
		p, err := s.prefs.Load(ctx)
		if err != nil {
			return insights.CompareTable{}, err
		}
		ids = cleanList(p.CompareIDs)
	}
	if len(ids) < 2 {
		return insights.CompareTable{}, fmt.Errorf("%w: compare needs at least two candidates", ErrInvalidInput)
	}

	cands := make([]model.Candidate, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			c, err := s.Candidate(gctx, id)
			if err != nil {
				return err
			}
			cands[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return insights.CompareTable{}, err
	}
	return insights.Compare(cands), nil
}

// DeleteResult tells how a delete was carried out.
type DeleteResult struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
	Hidden  bool   `json:"hidden"`
}

// DeleteCandidate removes a candidate from the source. When the source
// refuses, the candidate is hidden locally instead.
func (s *Service) DeleteCandidate(ctx context.Context, id string) (DeleteResult, error) {
	if strings.TrimSpace(id) == "" {
		return DeleteResult{}, fmt.Errorf("%w: empty candidate id", ErrInvalidInput)
	}
	res := DeleteResult{ID: id}
	err := s.source.DeleteCandidate(ctx, id)
	if err == nil {
		res.Deleted = true
		return res, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return DeleteResult{}, ctxErr
	}
	s.logger.Warn(ctx, "delete refused by source, hiding locally",
		logger.String("candidateID", id),
		logger.Error(err),
	)
	if _, err := s.prefs.Hide(ctx, id); err != nil {
		return DeleteResult{}, err
	}
	if p, err := s.prefs.Load(ctx); err == nil {
		metrics.UpdateHiddenCandidates(len(p.HiddenCandidateIDs))
	}
	res.Hidden = true
	return res, nil
}

// Analyze forwards résumés to the source for analysis.
func (s *Service) Analyze(ctx context.Context, req recruitapi.AnalyzeRequest) (json.RawMessage, error) {
	a, ok := s.source.(analyzer)
	if !ok {
		return nil, ErrUnsupported
	}
	out, err := a.AnalyzeCV(ctx, req)
	return out, classify(err)
}

// BackendStatus describes the source.
type BackendStatus struct {
	Online  bool   `json:"online"`
	Version string `json:"version,omitempty"`
	ModelID string `json:"model_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Backend probes the source. Sources without a health check count as online.
func (s *Service) Backend(ctx context.Context) BackendStatus {
	st := BackendStatus{Online: true}
	if p, ok := s.source.(pinger); ok {
		if err := p.Health(ctx); err != nil {
			return BackendStatus{Error: err.Error()}
		}
	}
	if d, ok := s.source.(describer); ok {
		if info, err := d.Info(ctx); err == nil {
			st.Version, st.ModelID = info.Version, info.ModelID
		}
	}
	return st
}

// Preferences returns the stored preferences.
func (s *Service) Preferences(ctx context.Context) (prefs.Preferences, error) {
	return s.prefs.Load(ctx)
}

// SavePreferences validates and stores p.
func (s *Service) SavePreferences(ctx context.Context, p prefs.Preferences) (prefs.Preferences, error) {
	p.CompareIDs = cleanList(p.CompareIDs)
	p.HiddenCandidateIDs = cleanList(p.HiddenCandidateIDs)
	if err := s.prefs.Save(ctx, p); err != nil {
		if errors.Is(err, prefs.ErrInvalid) {
			return prefs.Preferences{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return prefs.Preferences{}, err
	}
	metrics.UpdateHiddenCandidates(len(p.HiddenCandidateIDs))
	return s.prefs.Load(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":                 s.started,
		"workerCount":             s.workerCount,
		"queueSize":               s.queueSize,
		"matchMode":               string(s.scorer.Mode()),
		"candidatesPerJob":        s.candidatesPerJob,
		"suggestionsPerCandidate": s.suggestionsPerCandidate,
	}
	if s.started {
		stats["queueLength"] = s.queue.Len(context.Background())
	}
	return stats
}

// trimList trims entries and drops blanks, keeping order.
func trimList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// cleanList is trimList without duplicates.
func cleanList(in []string) []string {
	out := trimList(in)
	seen := make(map[string]struct{}, len(out))
	n := 0
	for _, v := range out {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out[n] = v
		n++
	}
	return out[:n]
}
