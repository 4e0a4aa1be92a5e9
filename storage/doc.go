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


// Package storage provides the storage abstraction layer for corpusd.
//
// This package defines repository interfaces that decouple storage
// implementation from the cache, staleness, and stats logic. It allows
// different backends (BadgerDB, in-memory, etc.) to be used interchangeably.
//
// # Architecture
//
// The storage layer follows the Repository pattern:
//
//   - CacheRepository: rows of the content-addressed embedding cache
//   - StatusRepository: per-project index status
//   - ItemRepository: project-scoped embeddable source items
//   - StatsRepository: per-date cache statistics rollups
//   - ArtifactStore: opaque artifact files addressed by cache key
//
// Public constructors in implementation packages (storage/badger, blob)
// return these interfaces to prevent coupling to backend specifics and to
// let consumers substitute in-memory implementations in tests.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support concurrent
// access from multiple goroutines. Serializing concurrent operations on a
// single cache key is deliberately left to the cache service, which holds a
// per-key lock across its read-compute-write sequence.
//
// # Context Support
//
// All repository methods accept context.Context. Pass context.Background()
// for operations without specific timeout requirements.
package storage
