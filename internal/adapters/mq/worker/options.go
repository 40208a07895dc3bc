package worker

import (
	"github.com/okian/recrai/pkg/logger"
)

type settings struct {
	name   string
	logger logger.Logger
}

// Option applies a configuration option to a worker or a pool.
type Option func(*settings)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(s *settings) {
		if name != "" {
			s.name = name
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

func apply(defaultName string, opts []Option) settings {
	s := settings{name: defaultName, logger: logger.Nop()}
	for _, opt := range opts {
		opt(&s)
	}
	s.logger = s.logger.Named(s.name)
	return s
}
