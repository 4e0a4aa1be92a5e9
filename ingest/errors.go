package ingest

import "errors"

var (
	// ErrCacheStoreRequired is returned when a cache store is not provided.
	ErrCacheStoreRequired = errors.New("cache store required")

	// ErrItemRepositoryRequired is returned when an item repository is not provided.
	ErrItemRepositoryRequired = errors.New("item repository required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrEmptyContent is returned when there is nothing to ingest.
	ErrEmptyContent = errors.New("content cannot be empty")
)
