package service

import (
	"github.com/okian/datastrike/internal/adapters/repository"
	"github.com/okian/datastrike/internal/domain/kpi"
	"github.com/okian/datastrike/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore uses an already opened roster store. The service does not close it.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
			s.ownsStore = false
		}
	}
}

// WithDBPath sets the SQLite roster path opened on Start.
func WithDBPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.dbPath = path
		}
	}
}

// WithUploadDir sets where uploads are spooled while being processed.
func WithUploadDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.uploadDir = dir
		}
	}
}

// WithMaxUploadBytes sets the upload size limit.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

// WithMaxConcurrent bounds the number of files processed at once.
func WithMaxConcurrent(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxConcurrent = n
		}
	}
}

// WithSeedFiles imports the roster from these sheets on Start when the
// store is empty.
func WithSeedFiles(teams, players string) Option {
	return func(s *Service) {
		s.seedTeams = teams
		s.seedPlayers = players
	}
}

// WithAggregatorOptions passes options through to the KPI aggregator.
func WithAggregatorOptions(opts ...kpi.Option) Option {
	return func(s *Service) {
		s.aggOpts = append(s.aggOpts, opts...)
	}
}
