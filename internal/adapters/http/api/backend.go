package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/okian/recrai/internal/adapters/recruitapi"
)

// BackendHandler reports on and forwards to the recruiting backend.
type BackendHandler struct {
	responder
	deps      BackendDependencies
	maxUpload int64
}

// HandleStatus handles GET /backend requests. It always answers 200; the
// body says whether the backend is reachable.
func (h *BackendHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Backend(r.Context()))
}

// HandleAnalyze handles POST /analyze multipart requests carrying one or more
// résumé files ("file" or "files"), or pasted text ("cv_text"), and an
// optional target job ("job" or "job_id").
func (h *BackendHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	const op = "api.analyze"
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		h.fail(w, r, op, wrapKind(op, ErrBadRequest, err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	req := recruitapi.AnalyzeRequest{
		Text: strings.TrimSpace(r.FormValue("cv_text")),
		Job:  strings.TrimSpace(r.FormValue("job")),
	}
	if req.Job == "" {
		req.Job = strings.TrimSpace(r.FormValue("job_id"))
	}
	for _, field := range []string{"file", "files"} {
		for _, fh := range r.MultipartForm.File[field] {
			f, err := readPart(fh)
			if err != nil {
				h.fail(w, r, op, wrapKind(op, ErrBadRequest, err))
				return
			}
			req.Files = append(req.Files, f)
		}
	}
	if req.Text == "" && len(req.Files) == 0 {
		h.fail(w, r, op, wrapKind(op, ErrBadRequest, errors.New("a file or cv_text is required")))
		return
	}

	out, err := h.deps.Analyze(r.Context(), req)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	w.Header().Set("Content-Type", jsonContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func readPart(fh *multipart.FileHeader) (recruitapi.File, error) {
	f, err := fh.Open()
	if err != nil {
		return recruitapi.File{}, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer func() { _ = f.Close() }()
	data, err := io.ReadAll(f)
	if err != nil {
		return recruitapi.File{}, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	return recruitapi.File{Name: fh.Filename, Data: data}, nil
}
