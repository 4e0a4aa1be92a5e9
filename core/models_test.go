package core

import (
	"strings"
	"testing"
)

func TestSourceKindString(t *testing.T) {
	tests := []struct {
		kind SourceKind
		want string
	}{
		{SourceKindFile, "file"},
		{SourceKindNote, "note"},
		{SourceKindURL, "url"},
		{SourceKind(0), "unknown"},
		{SourceKind(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("SourceKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestCacheKeyString(t *testing.T) {
	hash := DigestOf([]byte("content"))
	key := CacheKey{ContentHash: hash, ChunkSize: 1024, ChunkOverlap: 128}

	s := key.String()
	if !strings.HasPrefix(s, hash.String()) {
		t.Fatalf("Expected key string to start with content hash, got %q", s)
	}
	if !strings.HasSuffix(s, ":1024:128") {
		t.Fatalf("Expected key string to end with chunk params, got %q", s)
	}

	// Different chunking of the same content must produce a different key.
	other := CacheKey{ContentHash: hash, ChunkSize: 512, ChunkOverlap: 128}
	if key.String() == other.String() {
		t.Fatal("Expected different key strings for different chunk params")
	}
}

func TestSourceItemEmbeddable(t *testing.T) {
	tests := []struct {
		name string
		item SourceItem
		want bool
	}{
		{"embedded file", SourceItem{Kind: SourceKindFile, Embedded: true}, true},
		{"unembedded file", SourceItem{Kind: SourceKindFile, Embedded: false}, false},
		{"file ignores included flag", SourceItem{Kind: SourceKindFile, Included: true}, false},
		{"included note", SourceItem{Kind: SourceKindNote, Included: true}, true},
		{"excluded note", SourceItem{Kind: SourceKindNote, Included: false}, false},
		{"note ignores embedded flag", SourceItem{Kind: SourceKindNote, Embedded: true}, false},
		{"included url", SourceItem{Kind: SourceKindURL, Included: true}, true},
		{"excluded url", SourceItem{Kind: SourceKindURL, Included: false}, false},
		{"unknown kind", SourceItem{Kind: SourceKind(99), Embedded: true, Included: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.Embeddable(); got != tt.want {
				t.Fatalf("Embeddable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSourceItemFingerprintTracksFlags(t *testing.T) {
	item := SourceItem{
		ID:          "item-1",
		ProjectID:   "project-1",
		Kind:        SourceKindNote,
		ContentHash: DigestOf([]byte("note body")),
		Included:    true,
	}
	before := item.Fingerprint()

	item.Included = false
	after := item.Fingerprint()
	if before == after {
		t.Fatal("Expected fingerprint to change when inclusion flag flips")
	}

	// Restoring the flag restores the fingerprint.
	item.Included = true
	if item.Fingerprint() != before {
		t.Fatal("Expected fingerprint to be a pure function of item state")
	}
}

func TestCacheStatsHitRate(t *testing.T) {
	empty := &CacheStats{}
	if got := empty.HitRate(); got != 0 {
		t.Fatalf("Expected hit rate 0 for unused cache, got %f", got)
	}

	s := &CacheStats{TotalUsage: 10, ReuseCount: 4}
	if got := s.HitRate(); got != 40 {
		t.Fatalf("Expected hit rate 40, got %f", got)
	}
}

func TestCrawlStatusTerminal(t *testing.T) {
	if CrawlStatusRunning.Terminal() {
		t.Fatal("Expected running to be non-terminal")
	}
	for _, s := range []CrawlStatus{CrawlStatusCompleted, CrawlStatusCancelled, CrawlStatusFailed} {
		if !s.Terminal() {
			t.Fatalf("Expected %s to be terminal", s)
		}
	}
}
