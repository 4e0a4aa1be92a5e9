package storage

import (
	"context"
	"io"
	"time"

	"github.com/tessara/corpusd/core"
)

// CacheRepository provides row-level operations for the shared embedding
// cache. Implementations must be thread-safe; key-level serialization of
// concurrent hits is the caller's responsibility (see the cache package).
type CacheRepository interface {
	// Get retrieves a cache entry by its full key tuple.
	// Returns ErrNotFound on a miss. Has no side effects.
	Get(ctx context.Context, key core.CacheKey) (*core.CacheEntry, error)

	// Create inserts a new entry. Returns ErrDuplicateKey if an entry for
	// the same key already exists; the existing row is left untouched.
	Create(ctx context.Context, entry *core.CacheEntry) error

	// Touch increments the entry's usage counter by exactly 1 and sets
	// LastUsedAt, atomically within one transaction. Returns the updated
	// entry, or ErrNotFound if the row does not exist.
	Touch(ctx context.Context, key core.CacheKey, now time.Time) (*core.CacheEntry, error)

	// Delete removes the entry row. Returns ErrNotFound if absent.
	Delete(ctx context.Context, key core.CacheKey) error

	// Iterate visits every cache entry. Stops and returns the first error
	// from fn.
	Iterate(ctx context.Context, fn func(entry *core.CacheEntry) error) error

	// Close releases repository resources.
	Close() error
}

// StatusRepository stores one IndexStatus per project.
type StatusRepository interface {
	// Get retrieves the status for a project.
	// Returns ErrNotFound if no status has ever been recorded.
	Get(ctx context.Context, projectID string) (*core.IndexStatus, error)

	// Upsert creates or replaces the project's status.
	Upsert(ctx context.Context, status *core.IndexStatus) error

	Close() error
}

// ItemRepository stores project-scoped source items, the inputs to index
// staleness decisions.
type ItemRepository interface {
	// Get retrieves a single item. Returns ErrNotFound if absent.
	Get(ctx context.Context, projectID, id string) (*core.SourceItem, error)

	// ListByProject returns all items for a project ordered by ID.
	ListByProject(ctx context.Context, projectID string) ([]*core.SourceItem, error)

	// Upsert creates or replaces an item, stamping UpdatedAt.
	Upsert(ctx context.Context, item *core.SourceItem) error

	// Delete removes an item. Returns ErrNotFound if absent.
	Delete(ctx context.Context, projectID, id string) error

	Close() error
}

// StatsRepository stores one CacheStats rollup per calendar date.
type StatsRepository interface {
	// Get retrieves the rollup for a date (YYYY-MM-DD).
	// Returns ErrNotFound if no rollup exists for that date.
	Get(ctx context.Context, date string) (*core.CacheStats, error)

	// Upsert creates or replaces the rollup for its date.
	Upsert(ctx context.Context, stats *core.CacheStats) error

	Close() error
}

// ArtifactStore persists cache artifacts at locations deterministically
// derived from the full cache key, separate from the row store. Chunking
// parameters are part of the location: the same content chunked differently
// yields different vectors and must never share a file.
type ArtifactStore interface {
	// Path returns the deterministic location for a key without touching
	// the filesystem.
	Path(key core.CacheKey) string

	// Write persists data at the key's location and returns it.
	// Writes are atomic: a reader never observes a partial artifact.
	Write(key core.CacheKey, data []byte) (string, error)

	// Open opens a stored artifact for reading.
	Open(path string) (io.ReadCloser, error)

	// Exists reports whether the artifact file is present.
	Exists(path string) bool

	// Delete removes the artifact file. Deleting a missing artifact is not
	// an error.
	Delete(path string) error

	// Sweep removes artifact files not recognized by known and returns how
	// many were removed.
	Sweep(known func(path string) bool) (int, error)
}
