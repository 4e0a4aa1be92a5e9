package cache

import "errors"

var (
	// ErrCacheRepositoryRequired is returned when a cache repository is not provided.
	ErrCacheRepositoryRequired = errors.New("cache repository required")

	// ErrArtifactStoreRequired is returned when an artifact store is not provided.
	ErrArtifactStoreRequired = errors.New("artifact store required")

	// ErrEmptyArtifact is returned when a Put is attempted with no artifact bytes.
	ErrEmptyArtifact = errors.New("artifact cannot be empty")
)
