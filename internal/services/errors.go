package services

import "errors"

// Sentinel errors returned by services; handlers map these to API errors.
var (
	// ErrDatasetNotLoaded indicates no dataset has been loaded yet.
	ErrDatasetNotLoaded = errors.New("dataset not loaded")

	// ErrNoRows indicates the current filters match no rows.
	ErrNoRows = errors.New("no rows match the current filters")
)
