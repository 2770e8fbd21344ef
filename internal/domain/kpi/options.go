package kpi

import "github.com/okian/datastrike/internal/domain/classify"

const (
	// DefaultProgressiveThreshold is the forward distance (x2 - x) a pass must
	// exceed to count as progressive.
	DefaultProgressiveThreshold = 15.0
	// DefaultTopN caps the progressive pass ranking.
	DefaultTopN = 10
)

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithClassifier sets the label classifier.
func WithClassifier(c *classify.Classifier) Option {
	return func(a *Aggregator) {
		if c != nil {
			a.classifier = c
		}
	}
}

// WithObserver installs a receiver for diagnostic tabulations.
func WithObserver(o Observer) Option {
	return func(a *Aggregator) {
		a.observer = o
	}
}

// WithParallel computes the views concurrently when enabled.
func WithParallel(enabled bool) Option {
	return func(a *Aggregator) {
		a.parallel = enabled
	}
}

// WithProgressiveThreshold sets the minimum forward distance for a
// progressive pass. Non-positive values are ignored.
func WithProgressiveThreshold(d float64) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.progressiveThreshold = d
		}
	}
}

// WithTopN sets the progressive ranking size. Non-positive values are ignored.
func WithTopN(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.topN = n
		}
	}
}
