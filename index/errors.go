package index

import "errors"

var (
	// ErrItemRepositoryRequired is returned when an item repository is not provided.
	ErrItemRepositoryRequired = errors.New("item repository required")

	// ErrStatusRepositoryRequired is returned when a status repository is not provided.
	ErrStatusRepositoryRequired = errors.New("status repository required")

	// ErrEngineRequired is returned when a vector index engine is not provided.
	ErrEngineRequired = errors.New("index engine required")

	// ErrRebuildFailed wraps an engine failure during rebuild. The project's
	// IndexStatus is left at its last-known-good value.
	ErrRebuildFailed = errors.New("index rebuild failed")

	// ErrInvalidMaxAttempts indicates a non-positive retry attempt count.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")
)
