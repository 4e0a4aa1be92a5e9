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

import "errors"

// Domain errors
var (
	// ErrHashCompute indicates the content source could not be fully read.
	// Fatal to that ingestion attempt; never produces a partial digest.
	ErrHashCompute = errors.New("content hash computation failed")

	// ErrInvalidDigest indicates a malformed digest encoding.
	ErrInvalidDigest = errors.New("invalid digest")

	// ErrInvalidChunkParams indicates invalid chunking parameters.
	ErrInvalidChunkParams = errors.New("invalid chunking parameters")

	// ErrInvalidCacheEntry indicates a CacheEntry failed validation.
	ErrInvalidCacheEntry = errors.New("invalid cache entry")

	// ErrInvalidSourceItem indicates a SourceItem failed validation.
	ErrInvalidSourceItem = errors.New("invalid source item")

	// ErrInvalidCrawlSpec indicates a CrawlSpec failed validation.
	ErrInvalidCrawlSpec = errors.New("invalid crawl spec")

	// ErrEmptyProjectID indicates a missing project identifier.
	ErrEmptyProjectID = errors.New("project id cannot be empty")
)
