package badger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tessara/corpusd/core"
	"github.com/tessara/corpusd/storage"
)

func testEntry(content string) *core.CacheEntry {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &core.CacheEntry{
		Key: core.CacheKey{
			ContentHash:  core.DigestOf([]byte(content)),
			ChunkSize:    1024,
			ChunkOverlap: 128,
		},
		SourceKind:     core.SourceKindFile,
		OriginalName:   "doc.txt",
		ArtifactPath:   "ab/cd/abcd.vec",
		EmbeddingModel: "embeddinggemma",
		ByteSize:       256,
		UsageCount:     1,
		CreatedAt:      now,
		LastUsedAt:     now,
	}
}

func TestCacheEntryCreateAndGet(t *testing.T) {
	repos, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { repos.Close(); backend.Close() }()

	ctx := context.Background()
	entry := testEntry("document one")

	if err := repos.Cache.Create(ctx, entry); err != nil {
		t.Fatalf("Failed to create entry: %v", err)
	}

	got, err := repos.Cache.Get(ctx, entry.Key)
	if err != nil {
		t.Fatalf("Failed to get entry: %v", err)
	}
	if got.Key != entry.Key {
		t.Fatal("Key mismatch")
	}
	if got.UsageCount != 1 {
		t.Fatalf("Expected usage count 1, got %d", got.UsageCount)
	}
}

func TestCacheEntryGetMiss(t *testing.T) {
	repos, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { repos.Close(); backend.Close() }()

	key := core.CacheKey{ContentHash: core.DigestOf([]byte("absent")), ChunkSize: 512}
	_, err = repos.Cache.Get(context.Background(), key)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestCacheEntryDuplicateCreate(t *testing.T) {
	repos, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { repos.Close(); backend.Close() }()

	ctx := context.Background()
	entry := testEntry("duplicate content")
	if err := repos.Cache.Create(ctx, entry); err != nil {
		t.Fatalf("Failed to create entry: %v", err)
	}

	// Second insert for the same key must fail and leave the row untouched.
	second := testEntry("duplicate content")
	second.OriginalName = "other-name.txt"
	second.UsageCount = 99
	err = repos.Cache.Create(ctx, second)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("Expected ErrDuplicateKey, got %v", err)
	}

	got, err := repos.Cache.Get(ctx, entry.Key)
	if err != nil {
		t.Fatalf("Failed to get entry: %v", err)
	}
	if got.OriginalName != "doc.txt" || got.UsageCount != 1 {
		t.Fatal("Expected first writer's row to survive the duplicate insert")
	}
}

func TestCacheEntryTouch(t *testing.T) {
	repos, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { repos.Close(); backend.Close() }()

	ctx := context.Background()
	entry := testEntry("touched content")
	if err := repos.Cache.Create(ctx, entry); err != nil {
		t.Fatalf("Failed to create entry: %v", err)
	}

	later := time.Now().UTC().Add(time.Hour).Truncate(time.Microsecond)
	touched, err := repos.Cache.Touch(ctx, entry.Key, later)
	if err != nil {
		t.Fatalf("Failed to touch entry: %v", err)
	}
	if touched.UsageCount != 2 {
		t.Fatalf("Expected usage count 2, got %d", touched.UsageCount)
	}
	if !touched.LastUsedAt.Equal(later) {
		t.Fatalf("Expected LastUsedAt %v, got %v", later, touched.LastUsedAt)
	}
	if !touched.CreatedAt.Equal(entry.CreatedAt) {
		t.Fatal("Expected CreatedAt to be immutable")
	}

	// Each touch increments by exactly 1.
	touched, err = repos.Cache.Touch(ctx, entry.Key, later.Add(time.Minute))
	if err != nil {
		t.Fatalf("Failed to touch entry: %v", err)
	}
	if touched.UsageCount != 3 {
		t.Fatalf("Expected usage count 3, got %d", touched.UsageCount)
	}
}

func TestCacheEntryTouchMissing(t *testing.T) {
	repos, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { repos.Close(); backend.Close() }()

	key := core.CacheKey{ContentHash: core.DigestOf([]byte("ghost")), ChunkSize: 512}
	_, err = repos.Cache.Touch(context.Background(), key, time.Now())
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestCacheEntryDelete(t *testing.T) {
	repos, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { repos.Close(); backend.Close() }()

	ctx := context.Background()
	entry := testEntry("deleted content")
	if err := repos.Cache.Create(ctx, entry); err != nil {
		t.Fatalf("Failed to create entry: %v", err)
	}

	if err := repos.Cache.Delete(ctx, entry.Key); err != nil {
		t.Fatalf("Failed to delete entry: %v", err)
	}
	if _, err := repos.Cache.Get(ctx, entry.Key); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound after delete, got %v", err)
	}
	if err := repos.Cache.Delete(ctx, entry.Key); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound on double delete, got %v", err)
	}
}

func TestCacheEntryChunkParamsDisambiguate(t *testing.T) {
	repos, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { repos.Close(); backend.Close() }()

	ctx := context.Background()

	// Same content, different chunking: two independent rows.
	first := testEntry("shared content")
	second := testEntry("shared content")
	second.Key.ChunkSize = 512
	second.Key.ChunkOverlap = 64

	if err := repos.Cache.Create(ctx, first); err != nil {
		t.Fatalf("Failed to create first entry: %v", err)
	}
	if err := repos.Cache.Create(ctx, second); err != nil {
		t.Fatalf("Expected different chunk params to create a new row: %v", err)
	}
}

func TestCacheEntryIterate(t *testing.T) {
	repos, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { repos.Close(); backend.Close() }()

	ctx := context.Background()
	for _, content := range []string{"one", "two", "three"} {
		if err := repos.Cache.Create(ctx, testEntry(content)); err != nil {
			t.Fatalf("Failed to create entry: %v", err)
		}
	}

	count := 0
	err = repos.Cache.Iterate(ctx, func(entry *core.CacheEntry) error {
		count++
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to iterate: %v", err)
	}
	if count != 3 {
		t.Fatalf("Expected 3 entries, got %d", count)
	}
}
