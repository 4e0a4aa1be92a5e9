package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/tessara/corpusd/core"
	"github.com/tessara/corpusd/storage"
)

func testItem(projectID, id string) *core.SourceItem {
	return &core.SourceItem{
		ID:          id,
		ProjectID:   projectID,
		Kind:        core.SourceKindFile,
		Name:        id + ".txt",
		ContentHash: core.DigestOf([]byte(id)),
		Embedded:    true,
	}
}

func TestSourceItemUpsertAndGet(t *testing.T) {
	repos, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { repos.Close(); backend.Close() }()

	ctx := context.Background()
	item := testItem("project-1", "item-a")

	if err := repos.Items.Upsert(ctx, item); err != nil {
		t.Fatalf("Failed to upsert item: %v", err)
	}
	if item.UpdatedAt.IsZero() {
		t.Fatal("Expected UpdatedAt to be stamped on upsert")
	}

	got, err := repos.Items.Get(ctx, "project-1", "item-a")
	if err != nil {
		t.Fatalf("Failed to get item: %v", err)
	}
	if got.Name != "item-a.txt" || got.ContentHash != item.ContentHash {
		t.Fatal("Field mismatch after round trip")
	}

	// Upsert replaces.
	item.Included = true
	item.ContentHash = core.DigestOf([]byte("new content"))
	if err := repos.Items.Upsert(ctx, item); err != nil {
		t.Fatalf("Failed to re-upsert item: %v", err)
	}
	got, err = repos.Items.Get(ctx, "project-1", "item-a")
	if err != nil {
		t.Fatalf("Failed to get item: %v", err)
	}
	if got.ContentHash != item.ContentHash {
		t.Fatal("Expected upsert to replace the row")
	}
}

func TestSourceItemListByProject(t *testing.T) {
	repos, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { repos.Close(); backend.Close() }()

	ctx := context.Background()

	// Insert out of order, across two projects.
	for _, id := range []string{"item-c", "item-a", "item-b"} {
		if err := repos.Items.Upsert(ctx, testItem("project-1", id)); err != nil {
			t.Fatalf("Failed to upsert item: %v", err)
		}
	}
	if err := repos.Items.Upsert(ctx, testItem("project-2", "item-x")); err != nil {
		t.Fatalf("Failed to upsert item: %v", err)
	}

	items, err := repos.Items.ListByProject(ctx, "project-1")
	if err != nil {
		t.Fatalf("Failed to list items: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(items))
	}
	for i, want := range []string{"item-a", "item-b", "item-c"} {
		if items[i].ID != want {
			t.Fatalf("Expected item %d to be %s, got %s", i, want, items[i].ID)
		}
	}
}

func TestSourceItemListEmptyProject(t *testing.T) {
	repos, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { repos.Close(); backend.Close() }()

	items, err := repos.Items.ListByProject(context.Background(), "nothing-here")
	if err != nil {
		t.Fatalf("Failed to list items: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("Expected no items, got %d", len(items))
	}

	_, err = repos.Items.ListByProject(context.Background(), "")
	if !errors.Is(err, core.ErrEmptyProjectID) {
		t.Fatalf("Expected ErrEmptyProjectID, got %v", err)
	}
}

func TestSourceItemDelete(t *testing.T) {
	repos, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { repos.Close(); backend.Close() }()

	ctx := context.Background()
	if err := repos.Items.Upsert(ctx, testItem("project-1", "item-a")); err != nil {
		t.Fatalf("Failed to upsert item: %v", err)
	}

	if err := repos.Items.Delete(ctx, "project-1", "item-a"); err != nil {
		t.Fatalf("Failed to delete item: %v", err)
	}
	if _, err := repos.Items.Get(ctx, "project-1", "item-a"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound after delete, got %v", err)
	}
	if err := repos.Items.Delete(ctx, "project-1", "item-a"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound on double delete, got %v", err)
	}
}
