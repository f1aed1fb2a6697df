package models

import "errors"

var (
	// ErrNotFound is returned by loaders when a lookup matches no row.
	ErrNotFound = errors.New("not found")
	// ErrUnknownMetric is returned for metric names outside the allowlist.
	ErrUnknownMetric = errors.New("unknown metric")
)
