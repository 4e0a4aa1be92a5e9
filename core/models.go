package core

import (
	"encoding/hex"
	"fmt"
	"time"
)

// DigestSize is the size of a content digest in bytes (256 bits).
const DigestSize = 32

// Digest is a BLAKE2b-256 fingerprint of a byte sequence. Two byte-identical
// inputs always produce the same Digest.
type Digest [DigestSize]byte

// String returns the lowercase hex encoding of the digest.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// IsZero reports whether the digest is the all-zero value.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// ParseDigest decodes a digest from its hex string form.
func ParseDigest(s string) (Digest, error) {
	var d Digest
	raw, err := hex.DecodeString(s)
	if err != nil {
		return d, fmt.Errorf("%w: %v", ErrInvalidDigest, err)
	}
	if len(raw) != DigestSize {
		return d, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidDigest, len(raw), DigestSize)
	}
	copy(d[:], raw)
	return d, nil
}

// SourceKind identifies where an ingested item came from.
type SourceKind int

const (
	// SourceKindFile is an uploaded file.
	SourceKindFile SourceKind = iota + 1
	// SourceKindNote is a free-text note.
	SourceKindNote
	// SourceKindURL is a crawled web page.
	SourceKindURL
)

// String returns the stable name used in stats distributions and logs.
func (k SourceKind) String() string {
	switch k {
	case SourceKindFile:
		return "file"
	case SourceKindNote:
		return "note"
	case SourceKindURL:
		return "url"
	default:
		return "unknown"
	}
}

// CacheKey identifies a cached embedding artifact. Chunking parameters are
// part of the key: the same content chunked differently yields semantically
// different embeddings.
type CacheKey struct {
	ContentHash  Digest
	ChunkSize    int
	ChunkOverlap int
}

// String returns a stable text form used for key derivation and locking.
func (k CacheKey) String() string {
	return fmt.Sprintf("%s:%d:%d", k.ContentHash, k.ChunkSize, k.ChunkOverlap)
}

// CacheEntry is one row of the shared embedding cache. Entries are created
// on first miss and never mutated afterwards except for the usage counter
// and last-used timestamp, both updated atomically on every hit.
type CacheEntry struct {
	Key            CacheKey
	SourceKind     SourceKind
	OriginalName   string
	ArtifactPath   string
	EmbeddingModel string
	ByteSize       int64
	UsageCount     uint64
	CreatedAt      time.Time
	LastUsedAt     time.Time
}

// IndexStatus records whether a project's derived vector index reflects the
// current set and content of its embeddable source items. One per project;
// updated only after a rebuild has actually succeeded.
type IndexStatus struct {
	ProjectID          string
	Exists             bool
	LastUpdated        time.Time
	TrackedItemCount   int
	ContentFingerprint Digest
	NotesFingerprint   Digest
}

// SourceItem is a project-scoped source of embeddable content: an uploaded
// file, a note, or a crawled URL.
type SourceItem struct {
	ID          string
	ProjectID   string
	Kind        SourceKind
	Name        string
	ContentHash Digest
	// Embedded marks files whose embedding artifact exists.
	Embedded bool
	// Included marks notes and urls opted into the index.
	Included  bool
	UpdatedAt time.Time
}

// Embeddable reports whether the item belongs to the project's index input
// set: files once embedded, notes and urls while included.
func (it *SourceItem) Embeddable() bool {
	switch it.Kind {
	case SourceKindFile:
		return it.Embedded
	case SourceKindNote, SourceKindURL:
		return it.Included
	default:
		return false
	}
}

// Fingerprint derives the item's contribution to the project fingerprint
// from its content hash and inclusion-relevant flags.
func (it *SourceItem) Fingerprint() Digest {
	return DigestOf(fmt.Appendf(nil, "%s|%d|%s|%t|%t",
		it.ID, it.Kind, it.ContentHash, it.Embedded, it.Included))
}

// CacheStats is a per-calendar-date rollup over the embedding cache.
// Rolling up twice for the same date over an unchanged cache produces an
// identical value, so the struct carries no wall-clock fields.
type CacheStats struct {
	// Date is the rollup day in YYYY-MM-DD form.
	Date             string
	TotalEntries     int64
	TotalSizeBytes   int64
	TotalUsage       uint64
	ReuseCount       uint64
	EstimatedSavings float64
	ByKind           map[string]int64
}

// HitRate returns the cache hit rate as a percentage of total usage.
// Returns 0 when the cache has never been used.
func (s *CacheStats) HitRate() float64 {
	if s.TotalUsage == 0 {
		return 0
	}
	return float64(s.ReuseCount) / float64(s.TotalUsage) * 100
}

// CrawlStatus is the lifecycle state of a crawl job. Terminal states are
// absorbing: once reached, a job never transitions again.
type CrawlStatus int

const (
	// CrawlStatusRunning means the traversal loop is active.
	CrawlStatusRunning CrawlStatus = iota + 1
	// CrawlStatusCompleted means the frontier drained or max pages was hit.
	CrawlStatusCompleted
	// CrawlStatusCancelled means a cancellation signal was observed.
	CrawlStatusCancelled
	// CrawlStatusFailed means the seed page could not be fetched.
	CrawlStatusFailed
)

func (s CrawlStatus) String() string {
	switch s {
	case CrawlStatusRunning:
		return "running"
	case CrawlStatusCompleted:
		return "completed"
	case CrawlStatusCancelled:
		return "cancelled"
	case CrawlStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the status is absorbing.
func (s CrawlStatus) Terminal() bool {
	return s == CrawlStatusCompleted || s == CrawlStatusCancelled || s == CrawlStatusFailed
}

// CrawlSpec configures a crawl job.
type CrawlSpec struct {
	SeedURL         string
	MaxDepth        int
	MaxPages        int
	MinTextLength   int
	IncludePatterns []string
	ExcludePatterns []string
}

// CrawlSnapshot is the inspectable state of a crawl job. Snapshots outlive
// the job itself and are safe to retain after the job reaches a terminal
// state.
type CrawlSnapshot struct {
	JobID          string
	SeedURL        string
	Status         CrawlStatus
	Processed      int
	Failed         int
	DiscoveredURLs []string
	StartedAt      time.Time
	FinishedAt     time.Time
}

// CrawledDocument is a successfully processed page. It is consumed
// downstream exactly like an uploaded file: hashed, cached, indexed.
type CrawledDocument struct {
	URL    string
	Title  string
	Depth  int
	Domain string
	Text   string
	Links  []string
}
