package badger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tessara/corpusd/core"
	"github.com/tessara/corpusd/storage"
)

func TestIndexStatusUpsertAndGet(t *testing.T) {
	repos, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { repos.Close(); backend.Close() }()

	ctx := context.Background()

	_, err = repos.Status.Get(ctx, "project-1")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for unknown project, got %v", err)
	}

	status := &core.IndexStatus{
		ProjectID:          "project-1",
		Exists:             true,
		LastUpdated:        time.Now().UTC().Truncate(time.Microsecond),
		TrackedItemCount:   5,
		ContentFingerprint: core.DigestOf([]byte("fingerprint-v1")),
	}
	if err := repos.Status.Upsert(ctx, status); err != nil {
		t.Fatalf("Failed to upsert status: %v", err)
	}

	got, err := repos.Status.Get(ctx, "project-1")
	if err != nil {
		t.Fatalf("Failed to get status: %v", err)
	}
	if got.TrackedItemCount != 5 || !got.Exists {
		t.Fatal("Field mismatch after round trip")
	}

	// Upsert replaces.
	status.TrackedItemCount = 6
	status.ContentFingerprint = core.DigestOf([]byte("fingerprint-v2"))
	if err := repos.Status.Upsert(ctx, status); err != nil {
		t.Fatalf("Failed to re-upsert status: %v", err)
	}
	got, err = repos.Status.Get(ctx, "project-1")
	if err != nil {
		t.Fatalf("Failed to get status: %v", err)
	}
	if got.TrackedItemCount != 6 || got.ContentFingerprint != status.ContentFingerprint {
		t.Fatal("Expected upsert to replace the row")
	}
}

func TestCacheStatsUpsertAndGet(t *testing.T) {
	repos, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { repos.Close(); backend.Close() }()

	ctx := context.Background()

	_, err = repos.Stats.Get(ctx, "2026-08-28")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for missing date, got %v", err)
	}

	stats := &core.CacheStats{
		Date:           "2026-08-28",
		TotalEntries:   2,
		TotalSizeBytes: 8192,
		TotalUsage:     5,
		ReuseCount:     3,
		ByKind:         map[string]int64{"file": 2},
	}
	if err := repos.Stats.Upsert(ctx, stats); err != nil {
		t.Fatalf("Failed to upsert stats: %v", err)
	}

	got, err := repos.Stats.Get(ctx, "2026-08-28")
	if err != nil {
		t.Fatalf("Failed to get stats: %v", err)
	}
	if got.TotalUsage != 5 || got.ReuseCount != 3 || got.ByKind["file"] != 2 {
		t.Fatal("Field mismatch after round trip")
	}
}
