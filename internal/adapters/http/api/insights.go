package api

import (
	"net/http"
	"strings"

	"github.com/okian/recrai/internal/domain/model"
)

// InsightsHandler handles ad-hoc fit, the dashboard and comparisons.
type InsightsHandler struct {
	responder
	deps    InsightDependencies
	maxBody int64
}

type fitRequest struct {
	Requirements []string        `json:"requirements"`
	Candidate    model.Candidate `json:"candidate"`
}

// HandleFit handles POST /fit requests.
func (h *InsightsHandler) HandleFit(w http.ResponseWriter, r *http.Request) {
	const op = "api.fit"
	var req fitRequest
	if err := decodeJSON(w, r, op, h.maxBody, &req); err != nil {
		h.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Fit(r.Context(), req.Requirements, req.Candidate))
}

// HandleDashboard handles GET /dashboard?job_id= requests.
func (h *InsightsHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.deps.Dashboard(r.Context(), strings.TrimSpace(r.URL.Query().Get("job_id")))
	if err != nil {
		h.fail(w, r, "api.dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// HandleCompare handles GET /compare?ids=a,b requests. Repeated ids
// parameters are accepted too. Without ids the saved compare list is used.
func (h *InsightsHandler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	var ids []string
	for _, v := range r.URL.Query()["ids"] {
		ids = append(ids, strings.Split(v, ",")...)
	}
	table, err := h.deps.Compare(r.Context(), ids)
	if err != nil {
		h.fail(w, r, "api.compare", err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}
