package repository

import "time"

// Option applies a configuration option to the SQLiteStore.
type Option func(*SQLiteStore)

// WithMetricsUpdateInterval sets the interval for background roster gauge
// refreshes. Zero disables the updater.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(s *SQLiteStore) {
		if interval >= 0 {
			s.metricsUpdateInterval = interval
		}
	}
}

// WithBusyTimeout sets how long a writer waits on a locked database.
func WithBusyTimeout(d time.Duration) Option {
	return func(s *SQLiteStore) {
		if d > 0 {
			s.busyTimeout = d
		}
	}
}
