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


package badger

import "github.com/tessara/corpusd/storage"

// Repositories bundles the repository set backed by one Backend.
type Repositories struct {
	Cache  storage.CacheRepository
	Status storage.StatusRepository
	Items  storage.ItemRepository
	Stats  storage.StatsRepository
}

// NewMemoryRepositories creates an in-memory backend with all repositories
// for testing. Caller must close the repositories and the backend when done.
func NewMemoryRepositories() (*Repositories, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, err
	}

	cacheRepo, err := NewCacheRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, err
	}
	statusRepo, err := NewStatusRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, err
	}
	itemRepo, err := NewItemRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, err
	}
	statsRepo, err := NewStatsRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, err
	}

	return &Repositories{
		Cache:  cacheRepo,
		Status: statusRepo,
		Items:  itemRepo,
		Stats:  statsRepo,
	}, backend, nil
}

// Close closes every repository in the bundle.
func (r *Repositories) Close() {
	r.Stats.Close()
	r.Items.Close()
	r.Status.Close()
	r.Cache.Close()
}
