package badger

import (
	"fmt"

	"github.com/tessara/corpusd/core"
)

// Key prefixes for different data types
const (
	cacheEntryPrefix  = "embcache"
	indexStatusPrefix = "idxstat"
	sourceItemPrefix  = "srcitem"
	cacheStatsPrefix  = "cstats"
)

// makeCacheEntryKey generates a key for a cache entry. The full key tuple
// (content hash, chunk size, chunk overlap) identifies the row.
func makeCacheEntryKey(key core.CacheKey) []byte {
	return []byte(fmt.Sprintf("%s:%s:%d:%d", cacheEntryPrefix,
		key.ContentHash, key.ChunkSize, key.ChunkOverlap))
}

// makeIndexStatusKey generates a key for a project's index status.
func makeIndexStatusKey(projectID string) []byte {
	return []byte(fmt.Sprintf("%s:%s", indexStatusPrefix, projectID))
}

// makeSourceItemKey generates a composite key for a source item.
// Format: prefix:projectID:itemID, so a prefix scan over projectID yields
// the project's items in item-ID order.
func makeSourceItemKey(projectID, itemID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", sourceItemPrefix, projectID, itemID))
}

// makeSourceItemProjectPrefix generates the scan prefix for a project.
func makeSourceItemProjectPrefix(projectID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", sourceItemPrefix, projectID))
}

// makeCacheStatsKey generates a key for a daily stats rollup.
// date is YYYY-MM-DD.
func makeCacheStatsKey(date string) []byte {
	return []byte(fmt.Sprintf("%s:%s", cacheStatsPrefix, date))
}
