package model

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel error kinds for the ingestion and KPI pipeline. Callers test with
// errors.Is; the HTTP layer maps each kind to a client-visible status.
var (
	ErrEmptyInput    = errors.New("no usable data rows")
	ErrParse         = errors.New("unreadable or unsupported source format")
	ErrMissingColumn = errors.New("required column missing")
	ErrInvalidFilter = errors.New("filter matches no rows")
	ErrTooLarge      = errors.New("input exceeds size limit")
)

// MissingColumnError reports which logical column could not be resolved and
// the aliases that were accepted for it.
type MissingColumnError struct {
	Column  string
	Aliases []string
}

func (e *MissingColumnError) Error() string {
	if len(e.Aliases) == 0 {
		return fmt.Sprintf("%s: %q", ErrMissingColumn, e.Column)
	}
	return fmt.Sprintf("%s: %q (accepted: %s)", ErrMissingColumn, e.Column, strings.Join(e.Aliases, ", "))
}

// Unwrap lets errors.Is match ErrMissingColumn.
func (e *MissingColumnError) Unwrap() error { return ErrMissingColumn }
