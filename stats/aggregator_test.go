package stats

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessara/corpusd/core"
	"github.com/tessara/corpusd/storage"
	"github.com/tessara/corpusd/storage/badger"
)

func setupAggregator(t *testing.T, opts ...Option) (*Aggregator, *badger.Repositories) {
	t.Helper()

	repos, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close(); backend.Close() })

	aggregator, err := NewAggregator(repos.Cache, repos.Stats, opts...)
	require.NoError(t, err)
	return aggregator, repos
}

func seedEntry(t *testing.T, repos *badger.Repositories, content string, kind core.SourceKind, usage uint64, size int64) {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	entry := &core.CacheEntry{
		Key: core.CacheKey{
			ContentHash:  core.DigestOf([]byte(content)),
			ChunkSize:    1024,
			ChunkOverlap: 128,
		},
		SourceKind:   kind,
		ArtifactPath: "aa/bb/" + content + ".vec",
		ByteSize:     size,
		UsageCount:   1,
		CreatedAt:    now,
		LastUsedAt:   now,
	}
	require.NoError(t, repos.Cache.Create(context.Background(), entry))
	for i := uint64(1); i < usage; i++ {
		_, err := repos.Cache.Touch(context.Background(), entry.Key, now)
		require.NoError(t, err)
	}
}

func TestRollupEmptyCache(t *testing.T) {
	aggregator, _ := setupAggregator(t)
	ctx := context.Background()

	asOf := time.Date(2026, 8, 28, 15, 30, 0, 0, time.UTC)
	stats, err := aggregator.Rollup(ctx, asOf)
	require.NoError(t, err)

	// Zero-valued row, never fabricated sample data.
	assert.Equal(t, "2026-08-28", stats.Date)
	assert.Zero(t, stats.TotalEntries)
	assert.Zero(t, stats.TotalUsage)
	assert.Zero(t, stats.ReuseCount)
	assert.Zero(t, stats.HitRate())
	assert.Empty(t, stats.ByKind)

	// The row is stored and retrievable.
	stored, err := aggregator.Get(ctx, "2026-08-28")
	require.NoError(t, err)
	assert.Equal(t, stats.Date, stored.Date)
}

func TestRollupAccumulates(t *testing.T) {
	aggregator, repos := setupAggregator(t, WithUnitCost(0.5))
	ctx := context.Background()

	seedEntry(t, repos, "doc-one", core.SourceKindFile, 3, 100)
	seedEntry(t, repos, "doc-two", core.SourceKindFile, 1, 200)
	seedEntry(t, repos, "page", core.SourceKindURL, 2, 50)

	stats, err := aggregator.Rollup(ctx, time.Now())
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.TotalEntries)
	assert.Equal(t, int64(350), stats.TotalSizeBytes)
	assert.Equal(t, uint64(6), stats.TotalUsage)
	// 6 uses across 3 entries: 3 were first-time computations, 3 reuses.
	assert.Equal(t, uint64(3), stats.ReuseCount)
	assert.InDelta(t, 1.5, stats.EstimatedSavings, 1e-9)
	assert.Equal(t, int64(2), stats.ByKind["file"])
	assert.Equal(t, int64(1), stats.ByKind["url"])
	assert.InDelta(t, 50.0, stats.HitRate(), 1e-9)
}

func TestRollupIsIdempotent(t *testing.T) {
	aggregator, repos := setupAggregator(t)
	ctx := context.Background()

	seedEntry(t, repos, "doc-one", core.SourceKindFile, 4, 100)
	seedEntry(t, repos, "note", core.SourceKindNote, 1, 30)

	asOf := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	first, err := aggregator.Rollup(ctx, asOf)
	require.NoError(t, err)

	// Same date, unchanged cache, different wall-clock moment.
	second, err := aggregator.Rollup(ctx, asOf.Add(5*time.Hour))
	require.NoError(t, err)

	// Byte-identical rows.
	assert.True(t, bytes.Equal(storage.MarshalCacheStats(first), storage.MarshalCacheStats(second)))
}

func TestRollupDateBucketsAreIndependent(t *testing.T) {
	aggregator, repos := setupAggregator(t)
	ctx := context.Background()

	seedEntry(t, repos, "doc-one", core.SourceKindFile, 1, 100)
	_, err := aggregator.Rollup(ctx, time.Date(2026, 8, 27, 23, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	seedEntry(t, repos, "doc-two", core.SourceKindFile, 1, 100)
	_, err = aggregator.Rollup(ctx, time.Date(2026, 8, 28, 1, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	yesterday, err := aggregator.Get(ctx, "2026-08-27")
	require.NoError(t, err)
	today, err := aggregator.Get(ctx, "2026-08-28")
	require.NoError(t, err)

	assert.Equal(t, int64(1), yesterday.TotalEntries)
	assert.Equal(t, int64(2), today.TotalEntries)
}

func TestGetMissingDate(t *testing.T) {
	aggregator, _ := setupAggregator(t)

	_, err := aggregator.Get(context.Background(), "1999-01-01")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
