package database

import "errors"

var (
	// ErrStorage wraps any storage-layer failure. Store errors propagate
	// to the caller; nothing is retried or swallowed here.
	ErrStorage = errors.New("storage error")

	// ErrNoDataset means no record is stored for the requested (year, BR).
	ErrNoDataset = errors.New("no stored dataset for this key")
)
