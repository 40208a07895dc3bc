package prefs

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
)

// Store keys, shared with the web client's local storage.
const (
	keyTheme         = "recrai-theme"
	keyBackendURL    = "recrai-backend-url"
	keyAPIPrefix     = "recrai-api-prefix"
	keySelectedJobID = "recrai-selected-job-id"
	keyCompare       = "recrai-compare-list"
	keyHidden        = "recrai-hidden-cvs"
	keyAutoRefresh   = "recrai-dash-autorefresh"
)

// Themes.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Preferences is the full set of user choices.
type Preferences struct {
	Theme              string   `json:"theme"`
	BackendURL         string   `json:"backend_url"`
	APIPrefix          string   `json:"api_prefix"`
	SelectedJobID      string   `json:"selected_job_id"`
	CompareIDs         []string `json:"compare_ids"`
	HiddenCandidateIDs []string `json:"hidden_candidate_ids"`
	AutoRefresh        bool     `json:"auto_refresh"`
}

// Defaults returns the preferences used when nothing is stored.
func Defaults() Preferences {
	return Preferences{
		Theme:              ThemeDark,
		CompareIDs:         []string{},
		HiddenCandidateIDs: []string{},
	}
}

// Validate checks values a client may send.
func (p Preferences) Validate() error {
	if p.Theme != ThemeDark && p.Theme != ThemeLight {
		return fmt.Errorf("%w: theme %q", ErrInvalid, p.Theme)
	}
	return nil
}

// IsHidden reports whether id is in the hidden list.
func (p Preferences) IsHidden(id string) bool {
	return slices.Contains(p.HiddenCandidateIDs, id)
}

// Manager loads and saves Preferences through a KVStore. Read-modify-write
// helpers are serialized.
type Manager struct {
	mu    sync.Mutex
	store KVStore
}

// NewManager wraps store.
func NewManager(store KVStore) *Manager {
	return &Manager{store: store}
}

// Load reads every key, falling back to defaults for missing or unparsable
// values.
func (m *Manager) Load(ctx context.Context) (Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(ctx)
}

func (m *Manager) load(ctx context.Context) (Preferences, error) {
	p := Defaults()
	get := func(key string) (string, bool, error) { return m.store.Get(ctx, key) }

	if v, ok, err := get(keyTheme); err != nil {
		return p, err
	} else if ok && (v == ThemeDark || v == ThemeLight) {
		p.Theme = v
	}
	for key, dst := range map[string]*string{
		keyBackendURL:    &p.BackendURL,
		keyAPIPrefix:     &p.APIPrefix,
		keySelectedJobID: &p.SelectedJobID,
	} {
		v, ok, err := get(key)
		if err != nil {
			return p, err
		}
		if ok {
			*dst = v
		}
	}
	for key, dst := range map[string]*[]string{
		keyCompare: &p.CompareIDs,
		keyHidden:  &p.HiddenCandidateIDs,
	} {
		v, ok, err := get(key)
		if err != nil {
			return p, err
		}
		var ids []string
		if ok && json.Unmarshal([]byte(v), &ids) == nil && ids != nil {
			*dst = ids
		}
	}
	if v, ok, err := get(keyAutoRefresh); err != nil {
		return p, err
	} else if ok {
		p.AutoRefresh, _ = strconv.ParseBool(v)
	}
	return p, nil
}

// Save validates p and writes every key.
func (m *Manager) Save(ctx context.Context, p Preferences) error {
	if err := p.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.save(ctx, p)
}

func (m *Manager) save(ctx context.Context, p Preferences) error {
	compare, err := encodeIDs(p.CompareIDs)
	if err != nil {
		return err
	}
	hidden, err := encodeIDs(p.HiddenCandidateIDs)
	if err != nil {
		return err
	}
	return m.store.SetMany(ctx, []Entry{
		{keyTheme, p.Theme},
		{keyBackendURL, strings.TrimSpace(p.BackendURL)},
		{keyAPIPrefix, strings.TrimSpace(p.APIPrefix)},
		{keySelectedJobID, p.SelectedJobID},
		{keyCompare, compare},
		{keyHidden, hidden},
		{keyAutoRefresh, strconv.FormatBool(p.AutoRefresh)},
	})
}

func encodeIDs(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return string(b), nil
}

// Hide adds id to the hidden list. It reports whether the list changed.
func (m *Manager) Hide(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, err := m.load(ctx)
	if err != nil {
		return false, err
	}
	if id == "" || p.IsHidden(id) {
		return false, nil
	}
	p.HiddenCandidateIDs = append(p.HiddenCandidateIDs, id)
	return true, m.save(ctx, p)
}

// Close closes the underlying store.
func (m *Manager) Close() error {
	return m.store.Close()
}
