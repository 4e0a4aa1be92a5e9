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


package core

import (
	"fmt"
	"net/url"
)

// ValidateChunkParams validates chunking parameters.
//
// Validation rules:
//   - ChunkSize must be positive
//   - ChunkOverlap must be non-negative and smaller than ChunkSize
func ValidateChunkParams(chunkSize, chunkOverlap int) error {
	if chunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidChunkParams, chunkSize)
	}
	if chunkOverlap < 0 {
		return fmt.Errorf("%w: chunk overlap cannot be negative, got %d", ErrInvalidChunkParams, chunkOverlap)
	}
	if chunkOverlap >= chunkSize {
		return fmt.Errorf("%w: chunk overlap %d must be smaller than chunk size %d",
			ErrInvalidChunkParams, chunkOverlap, chunkSize)
	}
	return nil
}

// ValidateCacheEntry validates a CacheEntry according to domain rules.
//
// Validation rules:
//   - Key content hash must be set and chunk params valid
//   - ArtifactPath must not be empty
//   - UsageCount must be at least 1
func ValidateCacheEntry(entry *CacheEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidCacheEntry)
	}
	if entry.Key.ContentHash.IsZero() {
		return fmt.Errorf("%w: content hash is zero", ErrInvalidCacheEntry)
	}
	if err := ValidateChunkParams(entry.Key.ChunkSize, entry.Key.ChunkOverlap); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCacheEntry, err)
	}
	if entry.ArtifactPath == "" {
		return fmt.Errorf("%w: artifact path is empty", ErrInvalidCacheEntry)
	}
	if entry.UsageCount < 1 {
		return fmt.Errorf("%w: usage count must be at least 1", ErrInvalidCacheEntry)
	}
	return nil
}

// ValidateSourceItem validates a SourceItem according to domain rules.
func ValidateSourceItem(item *SourceItem) error {
	if item == nil {
		return fmt.Errorf("%w: item is nil", ErrInvalidSourceItem)
	}
	if item.ID == "" {
		return fmt.Errorf("%w: id is empty", ErrInvalidSourceItem)
	}
	if item.ProjectID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSourceItem, ErrEmptyProjectID)
	}
	if item.Kind.String() == "unknown" {
		return fmt.Errorf("%w: unknown source kind %d", ErrInvalidSourceItem, item.Kind)
	}
	return nil
}

// ValidateCrawlSpec validates a CrawlSpec.
//
// Validation rules:
//   - SeedURL must be an absolute http(s) URL
//   - MaxDepth must be non-negative
//   - MaxPages must be positive
//   - MinTextLength must be non-negative
func ValidateCrawlSpec(spec *CrawlSpec) error {
	if spec == nil {
		return fmt.Errorf("%w: spec is nil", ErrInvalidCrawlSpec)
	}
	u, err := url.Parse(spec.SeedURL)
	if err != nil {
		return fmt.Errorf("%w: seed url: %v", ErrInvalidCrawlSpec, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: seed url scheme must be http or https, got %q", ErrInvalidCrawlSpec, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: seed url has no host", ErrInvalidCrawlSpec)
	}
	if spec.MaxDepth < 0 {
		return fmt.Errorf("%w: max depth cannot be negative", ErrInvalidCrawlSpec)
	}
	if spec.MaxPages <= 0 {
		return fmt.Errorf("%w: max pages must be positive", ErrInvalidCrawlSpec)
	}
	if spec.MinTextLength < 0 {
		return fmt.Errorf("%w: min text length cannot be negative", ErrInvalidCrawlSpec)
	}
	return nil
}
