package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/tessara/corpusd/core"
	"github.com/tessara/corpusd/storage"
)

// Metadata describes the provenance of a cached artifact.
type Metadata struct {
	SourceKind     core.SourceKind
	OriginalName   string
	EmbeddingModel string
}

// Store is the content-addressed embedding cache shared across all tenants
// and projects. For any two items with identical content and identical
// chunking parameters, at most one embedding computation is ever persisted;
// every other consumer reuses it.
type Store struct {
	repo      storage.CacheRepository
	artifacts storage.ArtifactStore
	locks     keyLocks
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore creates a cache store over a row repository and an artifact store.
func NewStore(repo storage.CacheRepository, artifacts storage.ArtifactStore, opts ...Option) (*Store, error) {
	if repo == nil {
		return nil, ErrCacheRepositoryRequired
	}
	if artifacts == nil {
		return nil, ErrArtifactStoreRequired
	}
	s := &Store{
		repo:      repo,
		artifacts: artifacts,
		logger:    slog.Default().With("component", "embedding-cache"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Get looks up the exact key tuple. On a genuine hit the usage counter is
// incremented by exactly 1 and LastUsedAt updated; the touched entry is
// returned with hit=true. A miss returns (nil, false, nil).
//
// If the row exists but its backing artifact is gone the row is corrupt:
// it is deleted and the lookup reports a miss (self-heal) rather than
// surfacing a dangling entry.
func (s *Store) Get(ctx context.Context, key core.CacheKey) (*core.CacheEntry, bool, error) {
	mu := s.locks.lock(key)
	defer mu.Unlock()
	return s.getLocked(ctx, key)
}

func (s *Store) getLocked(ctx context.Context, key core.CacheKey) (*core.CacheEntry, bool, error) {
	entry, err := s.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	if !s.artifacts.Exists(entry.ArtifactPath) {
		s.logger.Warn("cache entry has no backing artifact, purging",
			"key", key.String(), "artifact", entry.ArtifactPath)
		if err := s.repo.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, false, err
		}
		return nil, false, nil
	}

	touched, err := s.repo.Touch(ctx, key, s.now())
	if err != nil {
		return nil, false, err
	}
	s.logger.Debug("cache hit", "key", key.String(), "usage", touched.UsageCount)
	return touched, true, nil
}

// Put persists the artifact at a location derived from the full key and
// creates the row with UsageCount=1. If another writer created the entry
// first, the computed artifact is discarded and the existing entry is
// returned instead (first writer wins).
func (s *Store) Put(ctx context.Context, key core.CacheKey, artifact []byte, meta Metadata) (*core.CacheEntry, error) {
	mu := s.locks.lock(key)
	defer mu.Unlock()
	return s.putLocked(ctx, key, artifact, meta)
}

func (s *Store) putLocked(ctx context.Context, key core.CacheKey, artifact []byte, meta Metadata) (*core.CacheEntry, error) {
	if len(artifact) == 0 {
		return nil, ErrEmptyArtifact
	}

	path, err := s.artifacts.Write(key, artifact)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	entry := &core.CacheEntry{
		Key:            key,
		SourceKind:     meta.SourceKind,
		OriginalName:   meta.OriginalName,
		ArtifactPath:   path,
		EmbeddingModel: meta.EmbeddingModel,
		ByteSize:       int64(len(artifact)),
		UsageCount:     1,
		CreatedAt:      now,
		LastUsedAt:     now,
	}

	err = s.repo.Create(ctx, entry)
	if err == nil {
		s.logger.Info("cache entry created", "key", key.String(), "bytes", entry.ByteSize)
		return entry, nil
	}
	if !errors.Is(err, storage.ErrDuplicateKey) {
		return nil, err
	}

	// Lost the race. The existing row carries the same full key, so it
	// points at the same path and the extra write above overwrote the file
	// with identical content.
	s.logger.Debug("lost cache insert race, reusing existing entry", "key", key.String())
	existing, _, err := s.getLocked(ctx, key)
	if err != nil {
		return nil, err
	}
	return existing, nil
}

// GetOrCompute returns the cached entry for key, computing and persisting
// the artifact on a miss. The per-key lock is held across the whole
// check-compute-store sequence, so concurrent identical requests perform
// exactly one computation.
func (s *Store) GetOrCompute(
	ctx context.Context,
	key core.CacheKey,
	compute func(ctx context.Context) ([]byte, Metadata, error),
) (*core.CacheEntry, bool, error) {
	mu := s.locks.lock(key)
	defer mu.Unlock()

	entry, hit, err := s.getLocked(ctx, key)
	if err != nil || hit {
		return entry, hit, err
	}

	artifact, meta, err := compute(ctx)
	if err != nil {
		return nil, false, err
	}

	entry, err = s.putLocked(ctx, key, artifact, meta)
	if err != nil {
		return nil, false, err
	}
	return entry, false, nil
}

// OpenArtifact opens the artifact behind an entry for reading.
func (s *Store) OpenArtifact(entry *core.CacheEntry) (vectors [][]float32, err error) {
	rc, err := s.artifacts.Open(entry.ArtifactPath)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	return storage.UnmarshalVectors(data)
}
