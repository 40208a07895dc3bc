package recruitapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/okian/recrai/internal/domain/model"
)

// Info is the backend build description served at /info.
type Info struct {
	Version string `json:"version"`
	ModelID string `json:"model_id"`
}

// Health returns nil when the backend answers /health with a 2xx.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// Info fetches the backend version and model id.
func (c *Client) Info(ctx context.Context) (Info, error) {
	var info Info
	err := c.do(ctx, http.MethodGet, "/info", nil, &info)
	return info, err
}

// ListJobs returns every job.
func (c *Client) ListJobs(ctx context.Context) ([]model.Job, error) {
	var jobs []model.Job
	if err := c.do(ctx, http.MethodGet, "/jobs", nil, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// CreateJob publishes a job. The backend answers {"job": {...}}; when it
// doesn't, the submitted job is returned.
func (c *Client) CreateJob(ctx context.Context, job model.Job) (model.Job, error) {
	if strings.TrimSpace(job.Title) == "" {
		return model.Job{}, fmt.Errorf("%w: job title is required", ErrInvalidInput)
	}
	var out struct {
		Job *model.Job `json:"job"`
	}
	if err := c.do(ctx, http.MethodPost, "/jobs", jsonPayload(job), &out); err != nil {
		return model.Job{}, err
	}
	if out.Job == nil {
		return job, nil
	}
	return *out.Job, nil
}

// ListCandidates returns every analyzed CV.
func (c *Client) ListCandidates(ctx context.Context) ([]model.Candidate, error) {
	var cands []model.Candidate
	if err := c.do(ctx, http.MethodGet, "/cvs", nil, &cands); err != nil {
		return nil, err
	}
	return cands, nil
}

// GetCandidate fetches one CV.
func (c *Client) GetCandidate(ctx context.Context, id string) (model.Candidate, error) {
	if strings.TrimSpace(id) == "" {
		return model.Candidate{}, fmt.Errorf("%w: empty candidate id", ErrInvalidInput)
	}
	var cand model.Candidate
	err := c.do(ctx, http.MethodGet, "/cvs/"+url.PathEscape(id), nil, &cand)
	return cand, err
}

// DeleteCandidate removes a CV on the backend.
func (c *Client) DeleteCandidate(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: empty candidate id", ErrInvalidInput)
	}
	return c.do(ctx, http.MethodDelete, "/cvs/"+url.PathEscape(id), nil, nil)
}

// File is one résumé document to analyze.
type File struct {
	Name string
	Data []byte
}

// AnalyzeRequest submits résumés for analysis against an optional job.
// Exactly one of Text or Files must be set. Job is a job id when it is a
// UUID, otherwise it is sent as the job title.
type AnalyzeRequest struct {
	Job   string
	Text  string
	Files []File
}

// AnalyzeCV sends one text, one file, or a batch of files. The backend's
// answer is returned undecoded since its shape depends on the model.
func (c *Client) AnalyzeCV(ctx context.Context, req AnalyzeRequest) (json.RawMessage, error) {
	text := strings.TrimSpace(req.Text)
	switch {
	case text == "" && len(req.Files) == 0:
		return nil, fmt.Errorf("%w: nothing to analyze", ErrInvalidInput)
	case text != "" && len(req.Files) > 0:
		return nil, fmt.Errorf("%w: text and files are exclusive", ErrInvalidInput)
	}

	path := "/analyze_cv"
	if len(req.Files) > 1 {
		path = "/analyze_cv_batch_multipart"
	}

	body := func() (io.Reader, string, error) {
		var b bytes.Buffer
		w := multipart.NewWriter(&b)
		if job := strings.TrimSpace(req.Job); job != "" {
			key := "job"
			if IsJobID(job) {
				key = "job_id"
			}
			if err := w.WriteField(key, job); err != nil {
				return nil, "", err
			}
		}
		if text != "" {
			if err := w.WriteField("cv_text", text); err != nil {
				return nil, "", err
			}
		}
		field := "file"
		if len(req.Files) > 1 {
			field = "files"
		}
		for _, f := range req.Files {
			part, err := w.CreateFormFile(field, f.Name)
			if err != nil {
				return nil, "", err
			}
			if _, err := part.Write(f.Data); err != nil {
				return nil, "", err
			}
		}
		if err := w.Close(); err != nil {
			return nil, "", err
		}
		return &b, w.FormDataContentType(), nil
	}

	var out json.RawMessage
	if err := c.do(ctx, http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// IsJobID reports whether s is a canonical RFC 4122 UUID of version 1 to 5.
func IsJobID(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) != 36 {
		return false
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return false
	}
	v := u.Version()
	return v >= 1 && v <= 5 && u.Variant() == uuid.RFC4122
}
