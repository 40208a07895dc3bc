package api

import (
	"net/http"

	"github.com/okian/recrai/internal/domain/model"
	"github.com/okian/recrai/internal/domain/ranking"
)

// CandidatesHandler handles candidate reads, suggestions and deletes.
type CandidatesHandler struct {
	responder
	deps     CandidateDependencies
	maxLimit int
}

type suggestionsResponse struct {
	Candidate   model.Candidate         `json:"candidate"`
	Suggestions []ranking.JobSuggestion `json:"suggestions"`
}

// HandleList handles GET /candidates requests. Hidden candidates are omitted.
func (h *CandidatesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	cands, err := h.deps.Candidates(r.Context())
	if err != nil {
		h.fail(w, r, "api.list_candidates", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(cands))
}

// HandleGet handles GET /candidates/{id} requests.
func (h *CandidatesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	c, err := h.deps.Candidate(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, "api.get_candidate", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// HandleSuggestions handles GET /candidates/{id}/suggestions?limit=N requests.
func (h *CandidatesHandler) HandleSuggestions(w http.ResponseWriter, r *http.Request) {
	const op = "api.candidate_suggestions"
	limit, err := parseLimit(r, op, h.maxLimit)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	c, sugg, err := h.deps.SuggestForCandidate(r.Context(), r.PathValue("id"), limit)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestionsResponse{Candidate: c, Suggestions: nonNil(sugg)})
}

// HandleDelete handles DELETE /candidates/{id} requests. The answer tells
// whether the candidate was deleted upstream or only hidden.
func (h *CandidatesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	res, err := h.deps.DeleteCandidate(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, "api.delete_candidate", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
