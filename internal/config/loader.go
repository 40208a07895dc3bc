package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "RECRAI_"

// LoadOption adjusts how Load finds its sources.
type LoadOption func(*loadSettings)

type loadSettings struct {
	path string
}

// WithFile names the YAML file to load, taking precedence over RECRAI_CONFIG.
func WithFile(path string) LoadOption {
	return func(s *loadSettings) {
		s.path = strings.TrimSpace(path)
	}
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) from WithFile or RECRAI_CONFIG
//  3. env (prefix RECRAI_)
func Load(_ context.Context, opts ...LoadOption) (*Config, error) {
	ls := loadSettings{path: os.Getenv(EnvPrefix + "CONFIG")}
	for _, opt := range opts {
		opt(&ls)
	}
	base := New()

	k := koanf.New(".")

	if path := ls.path; path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// RECRAI_MATCH_MODE -> match_mode. Underscores are kept to match the koanf tags.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
