package repository

import "errors"

// Sentinel kinds for roster errors.
var (
	ErrNotFound = errors.New("team not found")
)
