// Copyright 2025 Tessara Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"github.com/tessara/corpusd/core"
)

// MarshalCacheEntry serializes a CacheEntry to bytes.
func MarshalCacheEntry(entry *core.CacheEntry) []byte {
	buf := make([]byte, core.CacheEntryMUS.Size(*entry))
	core.CacheEntryMUS.Marshal(*entry, buf)
	return buf
}

// UnmarshalCacheEntry deserializes a CacheEntry from bytes.
func UnmarshalCacheEntry(data []byte) (*core.CacheEntry, error) {
	entry, _, err := core.CacheEntryMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// MarshalIndexStatus serializes an IndexStatus to bytes.
func MarshalIndexStatus(status *core.IndexStatus) []byte {
	buf := make([]byte, core.IndexStatusMUS.Size(*status))
	core.IndexStatusMUS.Marshal(*status, buf)
	return buf
}

// UnmarshalIndexStatus deserializes an IndexStatus from bytes.
func UnmarshalIndexStatus(data []byte) (*core.IndexStatus, error) {
	status, _, err := core.IndexStatusMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// MarshalSourceItem serializes a SourceItem to bytes.
func MarshalSourceItem(item *core.SourceItem) []byte {
	buf := make([]byte, core.SourceItemMUS.Size(*item))
	core.SourceItemMUS.Marshal(*item, buf)
	return buf
}

// UnmarshalSourceItem deserializes a SourceItem from bytes.
func UnmarshalSourceItem(data []byte) (*core.SourceItem, error) {
	item, _, err := core.SourceItemMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// MarshalCacheStats serializes a CacheStats to bytes.
func MarshalCacheStats(stats *core.CacheStats) []byte {
	buf := make([]byte, core.CacheStatsMUS.Size(*stats))
	core.CacheStatsMUS.Marshal(*stats, buf)
	return buf
}

// UnmarshalCacheStats deserializes a CacheStats from bytes.
func UnmarshalCacheStats(data []byte) (*core.CacheStats, error) {
	stats, _, err := core.CacheStatsMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// MarshalVectors serializes embedding vectors into artifact bytes.
func MarshalVectors(vectors [][]float32) []byte {
	buf := make([]byte, core.VectorsMUS.Size(vectors))
	core.VectorsMUS.Marshal(vectors, buf)
	return buf
}

// UnmarshalVectors deserializes embedding vectors from artifact bytes.
func UnmarshalVectors(data []byte) ([][]float32, error) {
	vectors, _, err := core.VectorsMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return vectors, nil
}
