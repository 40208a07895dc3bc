// Package localsource reads jobs and analyzed CVs from files on disk. It is
// the offline counterpart of the recruiting backend client.
package localsource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/okian/recrai/internal/domain/model"
)

// Base names looked up in the data directory, tried in extension order.
const (
	jobsFile = "jobs"
	cvsFile  = "cvs"
)

var extensions = []string{".yaml", ".yml", ".json"}

// Source serves jobs and candidates from a directory.
type Source struct {
	dir string
}

// New returns a Source over dir. The directory must exist.
func New(dir string) (*Source, error) {
	st, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: data dir %s: %w", ErrNotFound, dir, err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrNotFound, dir)
	}
	return &Source{dir: dir}, nil
}

// jobRecord accepts both the English keys served by the backend and the
// Portuguese keys written by the seeding script.
type jobRecord struct {
	ID           string   `json:"id" yaml:"id"`
	Title        string   `json:"title" yaml:"title"`
	Titulo       string   `json:"titulo" yaml:"titulo"`
	Description  string   `json:"description" yaml:"description"`
	Descricao    string   `json:"descricao" yaml:"descricao"`
	Details      string   `json:"details" yaml:"details"`
	Detalhes     string   `json:"detalhes" yaml:"detalhes"`
	Location     string   `json:"location" yaml:"location"`
	Local        string   `json:"local" yaml:"local"`
	Requirements []string `json:"requirements" yaml:"requirements"`
	Requisitos   []string `json:"requisitos" yaml:"requisitos"`
}

func (r jobRecord) job() model.Job {
	return model.Job{
		ID:           r.ID,
		Title:        either(r.Title, r.Titulo),
		Description:  either(r.Description, r.Descricao),
		Details:      either(r.Details, r.Detalhes),
		Location:     either(r.Location, r.Local),
		Requirements: eitherList(r.Requirements, r.Requisitos),
	}
}

func either(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return a
	}
	return b
}

func eitherList(a, b []string) []string {
	if len(a) > 0 {
		return a
	}
	return b
}

// ListJobs reads jobs.{yaml,yml,json}.
func (s *Source) ListJobs(ctx context.Context) ([]model.Job, error) {
	var recs []jobRecord
	if err := s.load(ctx, jobsFile, &recs); err != nil {
		return nil, err
	}
	jobs := make([]model.Job, len(recs))
	for i, r := range recs {
		jobs[i] = r.job()
	}
	return jobs, nil
}

// ListCandidates reads cvs.{yaml,yml,json}.
func (s *Source) ListCandidates(ctx context.Context) ([]model.Candidate, error) {
	var cands []model.Candidate
	if err := s.load(ctx, cvsFile, &cands); err != nil {
		return nil, err
	}
	return cands, nil
}

// GetCandidate scans the CV file for id.
func (s *Source) GetCandidate(ctx context.Context, id string) (model.Candidate, error) {
	cands, err := s.ListCandidates(ctx)
	if err != nil {
		return model.Candidate{}, err
	}
	for _, c := range cands {
		if c.ID == id {
			return c, nil
		}
	}
	return model.Candidate{}, fmt.Errorf("%w: candidate %s", ErrNotFound, id)
}

// DeleteCandidate always fails; files are never rewritten.
func (s *Source) DeleteCandidate(_ context.Context, id string) error {
	return fmt.Errorf("%w: delete %s", ErrReadOnly, id)
}

func (s *Source) load(ctx context.Context, base string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.find(base)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrNotFound, path, err)
	}
	if filepath.Ext(path) == ".json" {
		err = json.Unmarshal(data, out)
	} else {
		err = yaml.Unmarshal(data, out)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDecode, path, err)
	}
	return nil
}

func (s *Source) find(base string) (string, error) {
	for _, ext := range extensions {
		p := filepath.Join(s.dir, base+ext)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s: %w", ErrNotFound, p, err)
		}
	}
	return "", fmt.Errorf("%w: no %s file in %s", ErrNotFound, base, s.dir)
}
