package core

import (
	"fmt"
	"sort"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the types persisted in the row store. Written against
// the mus-go primitives directly; the stored layout is the concatenation of
// field encodings in declaration order.

// DigestMUS serializes a Digest as a length-prefixed raw byte string.
var DigestMUS = digestMUS{}

type digestMUS struct{}

func (digestMUS) Marshal(d Digest, bs []byte) (n int) {
	return ord.String.Marshal(string(d[:]), bs)
}

func (digestMUS) Unmarshal(bs []byte) (d Digest, n int, err error) {
	s, n, err := ord.String.Unmarshal(bs)
	if err != nil {
		return d, n, err
	}
	if len(s) != DigestSize {
		return d, n, fmt.Errorf("%w: stored digest has %d bytes", ErrInvalidDigest, len(s))
	}
	copy(d[:], s)
	return d, n, nil
}

func (digestMUS) Size(d Digest) (size int) {
	return ord.String.Size(string(d[:]))
}

// SourceKindMUS serializes a SourceKind.
var SourceKindMUS = sourceKindMUS{}

type sourceKindMUS struct{}

func (sourceKindMUS) Marshal(k SourceKind, bs []byte) (n int) {
	return varint.Int.Marshal(int(k), bs)
}

func (sourceKindMUS) Unmarshal(bs []byte) (k SourceKind, n int, err error) {
	v, n, err := varint.Int.Unmarshal(bs)
	return SourceKind(v), n, err
}

func (sourceKindMUS) Size(k SourceKind) (size int) {
	return varint.Int.Size(int(k))
}

// CacheEntryMUS serializes a CacheEntry.
var CacheEntryMUS = cacheEntryMUS{}

type cacheEntryMUS struct{}

func (cacheEntryMUS) Marshal(e CacheEntry, bs []byte) (n int) {
	n = DigestMUS.Marshal(e.Key.ContentHash, bs)
	n += varint.Int.Marshal(e.Key.ChunkSize, bs[n:])
	n += varint.Int.Marshal(e.Key.ChunkOverlap, bs[n:])
	n += SourceKindMUS.Marshal(e.SourceKind, bs[n:])
	n += ord.String.Marshal(e.OriginalName, bs[n:])
	n += ord.String.Marshal(e.ArtifactPath, bs[n:])
	n += ord.String.Marshal(e.EmbeddingModel, bs[n:])
	n += varint.Int64.Marshal(e.ByteSize, bs[n:])
	n += varint.Uint64.Marshal(e.UsageCount, bs[n:])
	n += raw.TimeUnixMicro.Marshal(e.CreatedAt, bs[n:])
	n += raw.TimeUnixMicro.Marshal(e.LastUsedAt, bs[n:])
	return n
}

func (cacheEntryMUS) Unmarshal(bs []byte) (e CacheEntry, n int, err error) {
	var m int
	if e.Key.ContentHash, n, err = DigestMUS.Unmarshal(bs); err != nil {
		return e, n, err
	}
	if e.Key.ChunkSize, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return e, n + m, err
	}
	n += m
	if e.Key.ChunkOverlap, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return e, n + m, err
	}
	n += m
	if e.SourceKind, m, err = SourceKindMUS.Unmarshal(bs[n:]); err != nil {
		return e, n + m, err
	}
	n += m
	if e.OriginalName, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return e, n + m, err
	}
	n += m
	if e.ArtifactPath, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return e, n + m, err
	}
	n += m
	if e.EmbeddingModel, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return e, n + m, err
	}
	n += m
	if e.ByteSize, m, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return e, n + m, err
	}
	n += m
	if e.UsageCount, m, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return e, n + m, err
	}
	n += m
	if e.CreatedAt, m, err = raw.TimeUnixMicro.Unmarshal(bs[n:]); err != nil {
		return e, n + m, err
	}
	n += m
	if e.LastUsedAt, m, err = raw.TimeUnixMicro.Unmarshal(bs[n:]); err != nil {
		return e, n + m, err
	}
	n += m
	return e, n, nil
}

func (cacheEntryMUS) Size(e CacheEntry) (size int) {
	size = DigestMUS.Size(e.Key.ContentHash)
	size += varint.Int.Size(e.Key.ChunkSize)
	size += varint.Int.Size(e.Key.ChunkOverlap)
	size += SourceKindMUS.Size(e.SourceKind)
	size += ord.String.Size(e.OriginalName)
	size += ord.String.Size(e.ArtifactPath)
	size += ord.String.Size(e.EmbeddingModel)
	size += varint.Int64.Size(e.ByteSize)
	size += varint.Uint64.Size(e.UsageCount)
	size += raw.TimeUnixMicro.Size(e.CreatedAt)
	size += raw.TimeUnixMicro.Size(e.LastUsedAt)
	return size
}

// IndexStatusMUS serializes an IndexStatus.
var IndexStatusMUS = indexStatusMUS{}

type indexStatusMUS struct{}

func (indexStatusMUS) Marshal(s IndexStatus, bs []byte) (n int) {
	n = ord.String.Marshal(s.ProjectID, bs)
	n += ord.Bool.Marshal(s.Exists, bs[n:])
	n += raw.TimeUnixMicro.Marshal(s.LastUpdated, bs[n:])
	n += varint.Int.Marshal(s.TrackedItemCount, bs[n:])
	n += DigestMUS.Marshal(s.ContentFingerprint, bs[n:])
	n += DigestMUS.Marshal(s.NotesFingerprint, bs[n:])
	return n
}

func (indexStatusMUS) Unmarshal(bs []byte) (s IndexStatus, n int, err error) {
	var m int
	if s.ProjectID, n, err = ord.String.Unmarshal(bs); err != nil {
		return s, n, err
	}
	if s.Exists, m, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return s, n + m, err
	}
	n += m
	if s.LastUpdated, m, err = raw.TimeUnixMicro.Unmarshal(bs[n:]); err != nil {
		return s, n + m, err
	}
	n += m
	if s.TrackedItemCount, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return s, n + m, err
	}
	n += m
	if s.ContentFingerprint, m, err = DigestMUS.Unmarshal(bs[n:]); err != nil {
		return s, n + m, err
	}
	n += m
	if s.NotesFingerprint, m, err = DigestMUS.Unmarshal(bs[n:]); err != nil {
		return s, n + m, err
	}
	n += m
	return s, n, nil
}

func (indexStatusMUS) Size(s IndexStatus) (size int) {
	size = ord.String.Size(s.ProjectID)
	size += ord.Bool.Size(s.Exists)
	size += raw.TimeUnixMicro.Size(s.LastUpdated)
	size += varint.Int.Size(s.TrackedItemCount)
	size += DigestMUS.Size(s.ContentFingerprint)
	size += DigestMUS.Size(s.NotesFingerprint)
	return size
}

// SourceItemMUS serializes a SourceItem.
var SourceItemMUS = sourceItemMUS{}

type sourceItemMUS struct{}

func (sourceItemMUS) Marshal(it SourceItem, bs []byte) (n int) {
	n = ord.String.Marshal(it.ID, bs)
	n += ord.String.Marshal(it.ProjectID, bs[n:])
	n += SourceKindMUS.Marshal(it.Kind, bs[n:])
	n += ord.String.Marshal(it.Name, bs[n:])
	n += DigestMUS.Marshal(it.ContentHash, bs[n:])
	n += ord.Bool.Marshal(it.Embedded, bs[n:])
	n += ord.Bool.Marshal(it.Included, bs[n:])
	n += raw.TimeUnixMicro.Marshal(it.UpdatedAt, bs[n:])
	return n
}

func (sourceItemMUS) Unmarshal(bs []byte) (it SourceItem, n int, err error) {
	var m int
	if it.ID, n, err = ord.String.Unmarshal(bs); err != nil {
		return it, n, err
	}
	if it.ProjectID, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return it, n + m, err
	}
	n += m
	if it.Kind, m, err = SourceKindMUS.Unmarshal(bs[n:]); err != nil {
		return it, n + m, err
	}
	n += m
	if it.Name, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return it, n + m, err
	}
	n += m
	if it.ContentHash, m, err = DigestMUS.Unmarshal(bs[n:]); err != nil {
		return it, n + m, err
	}
	n += m
	if it.Embedded, m, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return it, n + m, err
	}
	n += m
	if it.Included, m, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return it, n + m, err
	}
	n += m
	if it.UpdatedAt, m, err = raw.TimeUnixMicro.Unmarshal(bs[n:]); err != nil {
		return it, n + m, err
	}
	n += m
	return it, n, nil
}

func (sourceItemMUS) Size(it SourceItem) (size int) {
	size = ord.String.Size(it.ID)
	size += ord.String.Size(it.ProjectID)
	size += SourceKindMUS.Size(it.Kind)
	size += ord.String.Size(it.Name)
	size += DigestMUS.Size(it.ContentHash)
	size += ord.Bool.Size(it.Embedded)
	size += ord.Bool.Size(it.Included)
	size += raw.TimeUnixMicro.Size(it.UpdatedAt)
	return size
}

// CacheStatsMUS serializes a CacheStats. The by-kind map is written in
// sorted key order so repeated rollups of an unchanged cache encode to
// identical bytes.
var CacheStatsMUS = cacheStatsMUS{}

type cacheStatsMUS struct{}

func sortedKinds(byKind map[string]int64) []string {
	kinds := make([]string, 0, len(byKind))
	for kind := range byKind {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

func (cacheStatsMUS) Marshal(s CacheStats, bs []byte) (n int) {
	n = ord.String.Marshal(s.Date, bs)
	n += varint.Int64.Marshal(s.TotalEntries, bs[n:])
	n += varint.Int64.Marshal(s.TotalSizeBytes, bs[n:])
	n += varint.Uint64.Marshal(s.TotalUsage, bs[n:])
	n += varint.Uint64.Marshal(s.ReuseCount, bs[n:])
	n += varint.Float64.Marshal(s.EstimatedSavings, bs[n:])
	n += varint.Int.Marshal(len(s.ByKind), bs[n:])
	for _, kind := range sortedKinds(s.ByKind) {
		n += ord.String.Marshal(kind, bs[n:])
		n += varint.Int64.Marshal(s.ByKind[kind], bs[n:])
	}
	return n
}

func (cacheStatsMUS) Unmarshal(bs []byte) (s CacheStats, n int, err error) {
	var m int
	if s.Date, n, err = ord.String.Unmarshal(bs); err != nil {
		return s, n, err
	}
	if s.TotalEntries, m, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return s, n + m, err
	}
	n += m
	if s.TotalSizeBytes, m, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return s, n + m, err
	}
	n += m
	if s.TotalUsage, m, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return s, n + m, err
	}
	n += m
	if s.ReuseCount, m, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return s, n + m, err
	}
	n += m
	if s.EstimatedSavings, m, err = varint.Float64.Unmarshal(bs[n:]); err != nil {
		return s, n + m, err
	}
	n += m
	var count int
	if count, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return s, n + m, err
	}
	n += m
	s.ByKind = make(map[string]int64, count)
	for i := 0; i < count; i++ {
		var kind string
		var total int64
		if kind, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
			return s, n + m, err
		}
		n += m
		if total, m, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
			return s, n + m, err
		}
		n += m
		s.ByKind[kind] = total
	}
	return s, n, nil
}

func (cacheStatsMUS) Size(s CacheStats) (size int) {
	size = ord.String.Size(s.Date)
	size += varint.Int64.Size(s.TotalEntries)
	size += varint.Int64.Size(s.TotalSizeBytes)
	size += varint.Uint64.Size(s.TotalUsage)
	size += varint.Uint64.Size(s.ReuseCount)
	size += varint.Float64.Size(s.EstimatedSavings)
	size += varint.Int.Size(len(s.ByKind))
	for kind, total := range s.ByKind {
		size += ord.String.Size(kind)
		size += varint.Int64.Size(total)
	}
	return size
}

// VectorsMUS serializes embedding vectors, the payload of a cache artifact.
var VectorsMUS = vectorsMUS{}

type vectorsMUS struct{}

func (vectorsMUS) Marshal(vectors [][]float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(vectors), bs)
	for _, vec := range vectors {
		n += varint.Int.Marshal(len(vec), bs[n:])
		for _, v := range vec {
			n += raw.Float32.Marshal(v, bs[n:])
		}
	}
	return n
}

func (vectorsMUS) Unmarshal(bs []byte) (vectors [][]float32, n int, err error) {
	var m int
	var count int
	if count, n, err = varint.Int.Unmarshal(bs); err != nil {
		return nil, n, err
	}
	vectors = make([][]float32, count)
	for i := 0; i < count; i++ {
		var dim int
		if dim, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
			return nil, n + m, err
		}
		n += m
		vec := make([]float32, dim)
		for j := 0; j < dim; j++ {
			if vec[j], m, err = raw.Float32.Unmarshal(bs[n:]); err != nil {
				return nil, n + m, err
			}
			n += m
		}
		vectors[i] = vec
	}
	return vectors, n, nil
}

func (vectorsMUS) Size(vectors [][]float32) (size int) {
	size = varint.Int.Size(len(vectors))
	for _, vec := range vectors {
		size += varint.Int.Size(len(vec))
		for _, v := range vec {
			size += raw.Float32.Size(v)
		}
	}
	return size
}
