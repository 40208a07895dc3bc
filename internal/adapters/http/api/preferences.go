package api

import (
	"net/http"

	"github.com/okian/recrai/internal/adapters/prefs"
)

// PreferencesHandler reads and replaces user preferences.
type PreferencesHandler struct {
	responder
	deps    PreferenceDependencies
	maxBody int64
}

// HandleGet handles GET /preferences requests.
func (h *PreferencesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.deps.Preferences(r.Context())
	if err != nil {
		h.fail(w, r, "api.get_preferences", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandlePut handles PUT /preferences requests. Fields missing from the body
// take their default values.
func (h *PreferencesHandler) HandlePut(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_preferences"
	p := prefs.Defaults()
	if err := decodeJSON(w, r, op, h.maxBody, &p); err != nil {
		h.fail(w, r, op, err)
		return
	}
	saved, err := h.deps.SavePreferences(r.Context(), p)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}
