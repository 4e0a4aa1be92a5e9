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


package corpusd

import (
	"log/slog"

	"github.com/tessara/corpusd/ai"
	"github.com/tessara/corpusd/ai/openai"
	"github.com/tessara/corpusd/blob"
	"github.com/tessara/corpusd/cache"
	"github.com/tessara/corpusd/crawl"
	"github.com/tessara/corpusd/index"
	"github.com/tessara/corpusd/ingest"
	"github.com/tessara/corpusd/stats"
	"github.com/tessara/corpusd/storage"
	"github.com/tessara/corpusd/storage/badger"
)

// Database is the top-level handle wiring storage, the artifact store, the
// embedding cache, and the index machinery into one lifecycle.
type Database struct {
	backend    *badger.Backend
	cacheRepo  storage.CacheRepository
	statusRepo storage.StatusRepository
	itemRepo   storage.ItemRepository
	statsRepo  storage.StatsRepository
	artifacts  storage.ArtifactStore
	cacheStore *cache.Store
	tracker    *index.Tracker
	rebuilder  *index.Rebuilder
	embedder   ai.Embedder
	logger     *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	engine   index.Engine
}

// WithAIConfig overrides the embedding service configuration.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithEngine overrides the index engine. Default is the built-in manifest
// engine.
func WithEngine(engine index.Engine) DatabaseOption {
	return func(o *databaseOptions) {
		if engine != nil {
			o.engine = engine
		}
	}
}

// NewDatabase opens the metadata store at filePath, the artifact store under
// cacheRoot, and the per-project index tree under projectRoot.
func NewDatabase(filePath, cacheRoot, projectRoot string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
		engine:   index.NewManifestEngine(),
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	cacheRepo, err := badger.NewCacheRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	statusRepo, err := badger.NewStatusRepository(backend)
	if err != nil {
		cacheRepo.Close()
		backend.Close()
		return nil, err
	}
	itemRepo, err := badger.NewItemRepository(backend)
	if err != nil {
		statusRepo.Close()
		cacheRepo.Close()
		backend.Close()
		return nil, err
	}
	statsRepo, err := badger.NewStatsRepository(backend)
	if err != nil {
		itemRepo.Close()
		statusRepo.Close()
		cacheRepo.Close()
		backend.Close()
		return nil, err
	}

	artifacts, err := blob.NewStore(cacheRoot)
	if err != nil {
		statsRepo.Close()
		itemRepo.Close()
		statusRepo.Close()
		cacheRepo.Close()
		backend.Close()
		return nil, err
	}

	cacheStore, err := cache.NewStore(cacheRepo, artifacts)
	if err != nil {
		statsRepo.Close()
		itemRepo.Close()
		statusRepo.Close()
		cacheRepo.Close()
		backend.Close()
		return nil, err
	}

	tracker, err := index.NewTracker(itemRepo, statusRepo)
	if err != nil {
		statsRepo.Close()
		itemRepo.Close()
		statusRepo.Close()
		cacheRepo.Close()
		backend.Close()
		return nil, err
	}
	rebuilder, err := index.NewRebuilder(tracker, options.engine, projectRoot)
	if err != nil {
		statsRepo.Close()
		itemRepo.Close()
		statusRepo.Close()
		cacheRepo.Close()
		backend.Close()
		return nil, err
	}

	embedder, err := openai.NewEmbedder(options.aiConfig)
	if err != nil {
		statsRepo.Close()
		itemRepo.Close()
		statusRepo.Close()
		cacheRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:    backend,
		cacheRepo:  cacheRepo,
		statusRepo: statusRepo,
		itemRepo:   itemRepo,
		statsRepo:  statsRepo,
		artifacts:  artifacts,
		cacheStore: cacheStore,
		tracker:    tracker,
		rebuilder:  rebuilder,
		embedder:   embedder,
		logger:     slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	if err := db.statsRepo.Close(); err != nil {
		db.logger.Error("error closing stats repository", "err", err)
		return err
	}
	if err := db.itemRepo.Close(); err != nil {
		db.logger.Error("error closing item repository", "err", err)
		return err
	}
	if err := db.statusRepo.Close(); err != nil {
		db.logger.Error("error closing status repository", "err", err)
		return err
	}
	if err := db.cacheRepo.Close(); err != nil {
		db.logger.Error("error closing cache repository", "err", err)
		return err
	}
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) CacheStore() *cache.Store {
	return db.cacheStore
}

func (db *Database) CacheRepository() storage.CacheRepository {
	return db.cacheRepo
}

func (db *Database) ItemRepository() storage.ItemRepository {
	return db.itemRepo
}

func (db *Database) Tracker() *index.Tracker {
	return db.tracker
}

func (db *Database) Rebuilder() *index.Rebuilder {
	return db.rebuilder
}

func (db *Database) NewIngestionPipeline(opts ...ingest.Option) (*ingest.Pipeline, error) {
	return ingest.NewPipeline(db.cacheStore, db.itemRepo, db.embedder, db.rebuilder, opts...)
}

func (db *Database) NewAggregator(opts ...stats.Option) (*stats.Aggregator, error) {
	return stats.NewAggregator(db.cacheRepo, db.statsRepo, opts...)
}

func (db *Database) NewCrawlManager(opts ...crawl.ManagerOption) (*crawl.Manager, error) {
	crawler, err := crawl.NewCrawler(crawl.NewHTTPRenderer())
	if err != nil {
		return nil, err
	}
	return crawl.NewManager(crawler, opts...)
}
