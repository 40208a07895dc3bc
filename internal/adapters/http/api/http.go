// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/recrai/internal/adapters/prefs"
	"github.com/okian/recrai/internal/adapters/recruitapi"
	service "github.com/okian/recrai/internal/app"
	"github.com/okian/recrai/internal/domain/insights"
	"github.com/okian/recrai/internal/domain/model"
	"github.com/okian/recrai/internal/domain/ranking"
	"github.com/okian/recrai/pkg/logger"
)

const (
	defaultMaxLimit    = 100
	defaultMaxBody     = 1 << 20
	defaultMaxUpload   = 32 << 20
	jsonContentType    = "application/json; charset=utf-8"
	codeBadRequest     = "bad_request"
	codeLimitExceeded  = "limit_exceeded"
	codeNotFound       = "not_found"
	codeUnavailable    = "backend_unavailable"
	codeNotImplemented = "not_implemented"
	codeInternal       = "internal_error"
)

// Dependencies required by HTTP handlers. *service.Service satisfies it.
type Dependencies interface {
	JobDependencies
	CandidateDependencies
	InsightDependencies
	PreferenceDependencies
	BackendDependencies
	StatsProvider
}

// JobDependencies backs the /jobs routes.
type JobDependencies interface {
	Jobs(ctx context.Context) ([]model.Job, error)
	CreateJob(ctx context.Context, job model.Job) (model.Job, []ranking.CandidateRank, error)
	RankForJob(ctx context.Context, jobID string, limit int) (model.Job, []ranking.CandidateRank, error)
}

// CandidateDependencies backs the /candidates routes.
type CandidateDependencies interface {
	Candidates(ctx context.Context) ([]model.Candidate, error)
	Candidate(ctx context.Context, id string) (model.Candidate, error)
	SuggestForCandidate(ctx context.Context, id string, limit int) (model.Candidate, []ranking.JobSuggestion, error)
	DeleteCandidate(ctx context.Context, id string) (service.DeleteResult, error)
}

// InsightDependencies backs /fit, /dashboard and /compare.
type InsightDependencies interface {
	Fit(ctx context.Context, requirements []string, c model.Candidate) service.FitResult
	Dashboard(ctx context.Context, jobID string) (insights.Dashboard, error)
	Compare(ctx context.Context, ids []string) (insights.CompareTable, error)
}

// PreferenceDependencies backs /preferences.
type PreferenceDependencies interface {
	Preferences(ctx context.Context) (prefs.Preferences, error)
	SavePreferences(ctx context.Context, p prefs.Preferences) (prefs.Preferences, error)
}

// BackendDependencies backs /backend and /analyze.
type BackendDependencies interface {
	Backend(ctx context.Context) service.BackendStatus
	Analyze(ctx context.Context, req recruitapi.AnalyzeRequest) (json.RawMessage, error)
}

// Option configures a Server.
type Option func(*settings)

type settings struct {
	maxLimit  int
	maxBody   int64
	maxUpload int64
	log       logger.Logger
}

// WithMaxLimit caps the ?limit= query parameter.
func WithMaxLimit(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// WithMaxBody caps JSON request bodies in bytes.
func WithMaxBody(n int64) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// WithMaxUpload caps multipart uploads in bytes.
func WithMaxUpload(n int64) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxUpload = n
		}
	}
}

// WithLogger sets the logger used for server-side failures.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.log = l
		}
	}
}

// Server wires HTTP routes for the matcher API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	jobsHandler       *JobsHandler
	candidatesHandler *CandidatesHandler
	insightsHandler   *InsightsHandler
	prefsHandler      *PreferencesHandler
	backendHandler    *BackendHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	cfg := settings{
		maxLimit:  defaultMaxLimit,
		maxBody:   defaultMaxBody,
		maxUpload: defaultMaxUpload,
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	rs := responder{log: cfg.log}
	return &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(deps),
		jobsHandler:       &JobsHandler{deps: deps, maxLimit: cfg.maxLimit, maxBody: cfg.maxBody, responder: rs},
		candidatesHandler: &CandidatesHandler{deps: deps, maxLimit: cfg.maxLimit, responder: rs},
		insightsHandler:   &InsightsHandler{deps: deps, maxBody: cfg.maxBody, responder: rs},
		prefsHandler:      &PreferencesHandler{deps: deps, maxBody: cfg.maxBody, responder: rs},
		backendHandler:    &BackendHandler{deps: deps, maxUpload: cfg.maxUpload, responder: rs},
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	route := func(pattern, endpoint string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, RequestIDMiddleware(MetricsMiddleware(h, endpoint)))
	}

	route("GET /healthz", "healthz", s.healthHandler.HandleHealth)
	route("GET /metrics", "metrics", s.healthHandler.HandleMetrics)
	route("GET /stats", "stats", s.statsHandler.HandleStats)

	route("GET /jobs", "jobs", s.jobsHandler.HandleList)
	route("POST /jobs", "jobs", s.jobsHandler.HandleCreate)
	route("GET /jobs/{id}/ranking", "job_ranking", s.jobsHandler.HandleRanking)

	route("GET /candidates", "candidates", s.candidatesHandler.HandleList)
	route("GET /candidates/{id}", "candidate", s.candidatesHandler.HandleGet)
	route("DELETE /candidates/{id}", "candidate", s.candidatesHandler.HandleDelete)
	route("GET /candidates/{id}/suggestions", "candidate_suggestions", s.candidatesHandler.HandleSuggestions)

	route("POST /fit", "fit", s.insightsHandler.HandleFit)
	route("GET /dashboard", "dashboard", s.insightsHandler.HandleDashboard)
	route("GET /compare", "compare", s.insightsHandler.HandleCompare)

	route("GET /preferences", "preferences", s.prefsHandler.HandleGet)
	route("PUT /preferences", "preferences", s.prefsHandler.HandlePut)

	route("GET /backend", "backend", s.backendHandler.HandleStatus)
	route("POST /analyze", "analyze", s.backendHandler.HandleAnalyze)
}

type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", jsonContentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg, RequestID: w.Header().Get(HeaderRequestID)})
}

// responder maps service errors to HTTP answers and logs server-side ones.
type responder struct {
	log logger.Logger
}

func (rs responder) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, code := statusFor(err)
	if status >= statusInternalError {
		rs.log.Error(r.Context(), "request failed",
			logger.String("op", op),
			logger.String("requestID", RequestIDFromContext(r.Context())),
			logger.Int("status", status),
			logger.Error(err),
		)
	}
	writeError(w, status, code, err)
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrLimitExceeded):
		return http.StatusBadRequest, codeLimitExceeded
	case errors.Is(err, ErrBadRequest), errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, codeBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, codeNotFound
	case errors.Is(err, service.ErrUnsupported):
		return http.StatusNotImplemented, codeNotImplemented
	case errors.Is(err, service.ErrUnavailable), errors.Is(err, service.ErrNotStarted),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, codeUnavailable
	default:
		return http.StatusInternalServerError, codeInternal
	}
}

// parseLimit reads ?limit=. A missing value is zero, meaning the default.
func parseLimit(r *http.Request, op string, maxLimit int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, newKind(op, ErrBadRequest)
	}
	if n > maxLimit {
		return 0, newKind(op, ErrLimitExceeded)
	}
	return n, nil
}

// decodeJSON reads a single JSON value of at most maxBody bytes into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, op string, maxBody int64, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	if err := dec.Decode(v); err != nil {
		return wrapKind(op, ErrBadRequest, err)
	}
	return nil
}
