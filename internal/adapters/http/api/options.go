package api

import (
	"time"

	"github.com/okian/datastrike/pkg/logger"
)

const defaultMaxUploadBytes = 20 << 20

type options struct {
	maxUploadBytes int64
	requestTimeout time.Duration
	logger         logger.Logger
}

// Option configures the API server.
type Option func(*options)

// WithMaxUploadBytes caps the size of an uploaded file.
func WithMaxUploadBytes(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxUploadBytes = n
		}
	}
}

// WithRequestTimeout bounds the time spent on each API request. Zero
// disables the bound.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.requestTimeout = d
		}
	}
}

// WithLogger sets the logger used by handlers.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
