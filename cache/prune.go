package cache

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/tessara/corpusd/core"
	"github.com/tessara/corpusd/storage"
)

// PrunePolicy selects cache entries for removal. Zero values disable the
// corresponding criterion.
type PrunePolicy struct {
	// MaxAge removes entries whose LastUsedAt is older than now-MaxAge.
	MaxAge time.Duration
	// MaxEntries keeps at most this many entries, evicting the least
	// recently used first.
	MaxEntries int
}

// PruneResult reports what a prune pass removed.
type PruneResult struct {
	Removed      int
	BytesFreed   int64
	OldestKept   time.Time
	TotalRemains int
}

// Prune removes entries matching the policy, deleting both the row and the
// backing artifact. Entries under active use are protected by the same
// per-key locks the read path takes.
func (s *Store) Prune(ctx context.Context, policy PrunePolicy) (*PruneResult, error) {
	var entries []*core.CacheEntry
	err := s.repo.Iterate(ctx, func(entry *core.CacheEntry) error {
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, err
	}

	cutoff := time.Time{}
	if policy.MaxAge > 0 {
		cutoff = s.now().Add(-policy.MaxAge)
	}

	victims := make(map[core.CacheKey]*core.CacheEntry)
	if !cutoff.IsZero() {
		for _, entry := range entries {
			if entry.LastUsedAt.Before(cutoff) {
				victims[entry.Key] = entry
			}
		}
	}

	if policy.MaxEntries > 0 && len(entries)-len(victims) > policy.MaxEntries {
		survivors := make([]*core.CacheEntry, 0, len(entries))
		for _, entry := range entries {
			if _, gone := victims[entry.Key]; !gone {
				survivors = append(survivors, entry)
			}
		}
		// LRU order: oldest last-used first
		slices.SortFunc(survivors, func(a, b *core.CacheEntry) int {
			return a.LastUsedAt.Compare(b.LastUsedAt)
		})
		excess := len(survivors) - policy.MaxEntries
		for _, entry := range survivors[:excess] {
			victims[entry.Key] = entry
		}
	}

	result := &PruneResult{}
	for key, entry := range victims {
		mu := s.locks.lock(key)
		err := s.repo.Delete(ctx, key)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			mu.Unlock()
			return result, err
		}
		if err == nil {
			if err := s.artifacts.Delete(entry.ArtifactPath); err != nil {
				s.logger.Warn("failed to delete pruned artifact",
					"artifact", entry.ArtifactPath, "err", err)
			}
			result.Removed++
			result.BytesFreed += entry.ByteSize
		}
		mu.Unlock()
	}

	result.TotalRemains = len(entries) - result.Removed
	for _, entry := range entries {
		if _, gone := victims[entry.Key]; gone {
			continue
		}
		if result.OldestKept.IsZero() || entry.LastUsedAt.Before(result.OldestKept) {
			result.OldestKept = entry.LastUsedAt
		}
	}
	s.logger.Info("cache pruned", "removed", result.Removed,
		"bytesFreed", result.BytesFreed, "remaining", result.TotalRemains)
	return result, nil
}

// SweepOrphans removes artifact files with no corresponding cache row.
// Exposed as an operator maintenance command.
func (s *Store) SweepOrphans(ctx context.Context) (int, error) {
	known := make(map[string]struct{})
	err := s.repo.Iterate(ctx, func(entry *core.CacheEntry) error {
		known[entry.ArtifactPath] = struct{}{}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return s.artifacts.Sweep(func(path string) bool {
		_, ok := known[path]
		return ok
	})
}
