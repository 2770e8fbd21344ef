package service

import (
	"context"
	"errors"

	"github.com/okian/datastrike/internal/adapters/repository"
	"github.com/okian/datastrike/internal/domain/model"
)

// Sentinel kinds for service errors.
var (
	ErrNotStarted = errors.New("service not started")
	ErrNoRoster   = errors.New("no roster store configured")
)

// Kind returns a short, stable label for err, used in metrics and logs.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, model.ErrTooLarge):
		return "too_large"
	case errors.Is(err, model.ErrEmptyInput):
		return "empty_input"
	case errors.Is(err, model.ErrParse):
		return "parse"
	case errors.Is(err, model.ErrMissingColumn):
		return "missing_column"
	case errors.Is(err, model.ErrInvalidFilter):
		return "invalid_filter"
	case errors.Is(err, repository.ErrNotFound):
		return "not_found"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}
