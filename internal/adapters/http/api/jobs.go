package api

import (
	"net/http"
	"strings"

	"github.com/okian/recrai/internal/domain/model"
	"github.com/okian/recrai/internal/domain/ranking"
)

// JobsHandler handles job listing, publishing and ranking.
type JobsHandler struct {
	responder
	deps     JobDependencies
	maxLimit int
	maxBody  int64
}

type jobRankingResponse struct {
	Job     model.Job               `json:"job"`
	Ranking []ranking.CandidateRank `json:"ranking"`
}

// HandleList handles GET /jobs requests.
func (h *JobsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.deps.Jobs(r.Context())
	if err != nil {
		h.fail(w, r, "api.list_jobs", err)
		return
	}
	if jobs == nil {
		jobs = []model.Job{}
	}
	writeJSON(w, http.StatusOK, jobs)
}

// HandleCreate handles POST /jobs requests. The created job is answered
// together with the current candidates ranked against it.
func (h *JobsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_job"
	var job model.Job
	if err := decodeJSON(w, r, op, h.maxBody, &job); err != nil {
		h.fail(w, r, op, err)
		return
	}
	if strings.TrimSpace(job.Title) == "" {
		h.fail(w, r, op, wrapKind(op, ErrBadRequest, errMissing("title")))
		return
	}
	created, ranks, err := h.deps.CreateJob(r.Context(), job)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, jobRankingResponse{Job: created, Ranking: nonNil(ranks)})
}

// HandleRanking handles GET /jobs/{id}/ranking?limit=N requests.
func (h *JobsHandler) HandleRanking(w http.ResponseWriter, r *http.Request) {
	const op = "api.job_ranking"
	limit, err := parseLimit(r, op, h.maxLimit)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	job, ranks, err := h.deps.RankForJob(r.Context(), r.PathValue("id"), limit)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, jobRankingResponse{Job: job, Ranking: nonNil(ranks)})
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
