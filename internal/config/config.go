// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and RECRAI_ environment variables on top.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/okian/recrai/internal/domain/matching"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogJSON switches log output from console to JSON.
	LogJSON bool `koanf:"log_json"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// BackendURL is the recruiting backend root. Empty means read from DataDir.
	BackendURL string `koanf:"backend_url"`

	// APIPrefix is appended to BackendURL, e.g. "/api".
	APIPrefix string `koanf:"api_prefix"`

	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// MaxRetries bounds retries of retryable backend failures.
	MaxRetries int `koanf:"max_retries"`

	// WorkerCount sets the number of fit scoring workers.
	WorkerCount int `koanf:"worker_count"`

	// MatchMode is "substring" or "token".
	MatchMode string `koanf:"match_mode"`

	CandidatesPerJob        int `koanf:"candidates_per_job"`
	SuggestionsPerCandidate int `koanf:"suggestions_per_candidate"`

	// PrefsPath is the SQLite file for preferences. Empty keeps them in memory.
	PrefsPath string `koanf:"prefs_path"`

	// DataDir holds jobs and cvs files for the local source.
	DataDir string `koanf:"data_dir"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:                "info",
		Addr:                    ":9080",
		BackendURL:              "http://localhost:8000",
		APIPrefix:               "",
		RequestTimeoutMS:        15_000,
		MaxRetries:              2,
		WorkerCount:             runtime.NumCPU(),
		MatchMode:               string(matching.ModeSubstring),
		CandidatesPerJob:        8,
		SuggestionsPerCandidate: 6,
		PrefsPath:               "",
		DataDir:                 "",
	}
}

// RequestTimeout returns RequestTimeoutMS as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// Validate checks the values Load cannot fix on its own.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if _, err := matching.ParseMode(c.MatchMode); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.WorkerCount < 1 {
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("%w: max_retries must not be negative", ErrInvalidConfig)
	}
	if c.RequestTimeoutMS <= 0 {
		return fmt.Errorf("%w: request_timeout_ms must be positive", ErrInvalidConfig)
	}
	if c.CandidatesPerJob < 0 || c.SuggestionsPerCandidate < 0 {
		return fmt.Errorf("%w: limits must not be negative", ErrInvalidConfig)
	}
	return nil
}
