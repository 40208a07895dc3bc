package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/recrai/internal/adapters/localsource"
	"github.com/okian/recrai/internal/adapters/prefs"
	"github.com/okian/recrai/internal/adapters/recruitapi"
	service "github.com/okian/recrai/internal/app"
	"github.com/okian/recrai/internal/config"
	"github.com/okian/recrai/internal/domain/matching"
	"github.com/okian/recrai/pkg/logger"
)

// newSource picks the local directory when DataDir is set, the backend
// otherwise.
func newSource(cfg *config.Config, log logger.Logger) (service.Source, error) {
	if strings.TrimSpace(cfg.DataDir) != "" {
		src, err := localsource.New(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		log.Info(context.Background(), "using local source", logger.String("dir", cfg.DataDir))
		return src, nil
	}
	if strings.TrimSpace(cfg.BackendURL) == "" {
		return nil, fmt.Errorf("%w: backend_url or data_dir is required", config.ErrInvalidConfig)
	}
	client, err := recruitapi.New(cfg.BackendURL,
		recruitapi.WithPrefix(cfg.APIPrefix),
		recruitapi.WithTimeout(cfg.RequestTimeout()),
		recruitapi.WithMaxRetries(cfg.MaxRetries),
		recruitapi.WithLogger(log.Named("recruitapi")),
	)
	if err != nil {
		return nil, err
	}
	log.Info(context.Background(), "using recruiting backend", logger.String("url", client.BaseURL()))
	return client, nil
}

// newPreferences opens the SQLite store when PrefsPath is set.
func newPreferences(cfg *config.Config) (*prefs.Manager, error) {
	if strings.TrimSpace(cfg.PrefsPath) == "" {
		return prefs.NewManager(prefs.NewMemoryStore()), nil
	}
	store, err := prefs.OpenSQLite(cfg.PrefsPath)
	if err != nil {
		return nil, err
	}
	return prefs.NewManager(store), nil
}

// newService builds the matcher service from configuration. The caller
// starts and stops it.
func newService(cfg *config.Config, log logger.Logger) (*service.Service, error) {
	src, err := newSource(cfg, log)
	if err != nil {
		return nil, err
	}
	pm, err := newPreferences(cfg)
	if err != nil {
		return nil, err
	}
	mode, err := matching.ParseMode(cfg.MatchMode)
	if err != nil {
		return nil, err
	}
	return service.New(src,
		service.WithLogger(log.Named("service")),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithMatchMode(mode),
		service.WithLimits(cfg.CandidatesPerJob, cfg.SuggestionsPerCandidate),
		service.WithPreferences(pm),
	), nil
}
