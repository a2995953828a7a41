package database

import "errors"

var (
	// ErrMissingStore is returned when the embedding store file does not exist.
	ErrMissingStore = errors.New("embedding store not found")
	// ErrEmptyStore is returned when the embedding store holds no face records.
	ErrEmptyStore = errors.New("embedding store is empty")
	// ErrCorruptStore is returned when a persisted blob cannot be decoded.
	ErrCorruptStore = errors.New("store file is corrupted")
	// ErrNoClusteringResult is returned when clustering has not produced a result yet.
	ErrNoClusteringResult = errors.New("clustering result not found")
	// ErrClusterNotFound is returned for a cluster id with no non-noise members.
	ErrClusterNotFound = errors.New("cluster not found")
	// ErrDimensionMismatch is returned when embeddings of different lengths are mixed.
	ErrDimensionMismatch = errors.New("embedding dimensions differ")
)
