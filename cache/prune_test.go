package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessara/corpusd/core"
)

func TestPruneByAge(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	clock := now
	store, _ := setupStore(t, WithClock(func() time.Time { return clock }))
	ctx := context.Background()

	oldKey := keyFor("old content")
	freshKey := keyFor("fresh content")

	// The old entry's LastUsedAt lands two days in the past.
	clock = now.Add(-48 * time.Hour)
	_, err := store.Put(ctx, oldKey, []byte("old"), testMeta())
	require.NoError(t, err)

	clock = now
	_, err = store.Put(ctx, freshKey, []byte("fresh"), testMeta())
	require.NoError(t, err)

	result, err := store.Prune(ctx, PrunePolicy{MaxAge: 24 * time.Hour})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Removed)
	assert.Equal(t, 1, result.TotalRemains)
	assert.True(t, result.OldestKept.Equal(now), "expected OldestKept to be the surviving entry's LastUsedAt")

	_, hit, err := store.Get(ctx, oldKey)
	require.NoError(t, err)
	assert.False(t, hit, "expected aged entry to be gone")

	_, hit, err = store.Get(ctx, freshKey)
	require.NoError(t, err)
	assert.True(t, hit, "expected fresh entry to survive")
}

func TestPruneByEntryCountEvictsLRU(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	clock := now
	store, _ := setupStore(t, WithClock(func() time.Time { return clock }))
	ctx := context.Background()

	// Five entries with staggered last-used times, oldest first.
	keys := make([]core.CacheKey, 5)
	for i := range keys {
		keys[i] = keyFor(fmt.Sprintf("content %d", i))
		clock = now.Add(time.Duration(i-5) * time.Hour)
		_, err := store.Put(ctx, keys[i], []byte("artifact"), testMeta())
		require.NoError(t, err)
	}
	clock = now

	result, err := store.Prune(ctx, PrunePolicy{MaxEntries: 3})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Removed)
	assert.Equal(t, 3, result.TotalRemains)
	assert.True(t, result.OldestKept.Equal(now.Add(-3*time.Hour)),
		"expected OldestKept to track the least recently used survivor")

	// The two least recently used are gone, the rest survive.
	for i, key := range keys {
		_, hit, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, i >= 2, hit, "entry %d", i)
	}
}

func TestPruneEmptyPolicyRemovesNothing(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	_, err := store.Put(ctx, keyFor("content"), []byte("artifact"), testMeta())
	require.NoError(t, err)

	result, err := store.Prune(ctx, PrunePolicy{})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Removed)
	assert.Equal(t, 1, result.TotalRemains)
}

func TestSweepOrphans(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	_, err := store.Put(ctx, keyFor("tracked content"), []byte("artifact"), testMeta())
	require.NoError(t, err)

	// Write an artifact directly, bypassing the row store.
	_, err = store.artifacts.Write(keyFor("orphan"), []byte("orphan"))
	require.NoError(t, err)

	removed, err := store.SweepOrphans(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	// The tracked entry is untouched.
	_, hit, err := store.Get(ctx, keyFor("tracked content"))
	require.NoError(t, err)
	assert.True(t, hit)
}
