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


package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/panjf2000/ants/v2"
	"github.com/tmc/langchaingo/textsplitter"

	"github.com/tessara/corpusd/ai"
	"github.com/tessara/corpusd/cache"
	"github.com/tessara/corpusd/core"
	"github.com/tessara/corpusd/crawl"
	"github.com/tessara/corpusd/index"
	"github.com/tessara/corpusd/storage"
)

const intentQueueSize = 128

// SourceMeta describes the item being ingested.
type SourceMeta struct {
	// ItemID identifies the source item within its project. When empty, a
	// deterministic ID is derived from the project and name.
	ItemID string
	Kind   core.SourceKind
	Name   string
	// Include opts notes and urls into the index. Ignored for files, which
	// join the index once embedded.
	Include bool
}

// Result reports the outcome of one ingestion.
type Result struct {
	// Hit is true when the content's embedding was reused from the cache.
	Hit   bool
	Entry *core.CacheEntry
	Item  *core.SourceItem
}

// Pipeline is the ingestion entry point: content is fingerprinted, embedded
// through the shared cache, registered as a project source item, and a
// reindex intent is emitted for the staleness checker.
//
// Reindexing runs asynchronously: intents are consumed by a single routine
// that checks staleness and rebuilds only when needed, so repeated commits
// coalesce instead of cascading rebuild triggers.
type Pipeline struct {
	cache     *cache.Store
	items     storage.ItemRepository
	embedder  ai.Embedder
	rebuilder *index.Rebuilder
	pool      *ants.Pool
	intents   chan string
	done      chan struct{}
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent rebuild handling.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger != nil {
			p.logger = logger
		}
		return nil
	}
}

// NewPipeline creates an ingestion pipeline. rebuilder may be nil, in which
// case reindex intents are dropped (useful for bulk loads followed by an
// explicit rebuild).
func NewPipeline(
	cacheStore *cache.Store,
	items storage.ItemRepository,
	embedder ai.Embedder,
	rebuilder *index.Rebuilder,
	opts ...Option,
) (*Pipeline, error) {
	if cacheStore == nil {
		return nil, ErrCacheStoreRequired
	}
	if items == nil {
		return nil, ErrItemRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		cache:     cacheStore,
		items:     items,
		embedder:  embedder,
		rebuilder: rebuilder,
		pool:      pool,
		intents:   make(chan string, intentQueueSize),
		done:      make(chan struct{}),
		logger:    slog.Default().With("component", "ingest-pipeline"),
	}
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	go p.consumeIntents()

	return p, nil
}

// IngestDocument ingests one piece of content for a project. On a cache hit
// the stored artifact is reused and its counter incremented; on a miss the
// content is chunked, embedded, and the artifact persisted. Either way the
// source item is upserted as embedded and a reindex intent emitted.
func (p *Pipeline) IngestDocument(
	ctx context.Context,
	projectID string,
	content []byte,
	chunkSize, chunkOverlap int,
	meta SourceMeta,
) (*Result, error) {
	if projectID == "" {
		return nil, core.ErrEmptyProjectID
	}
	if len(content) == 0 {
		return nil, ErrEmptyContent
	}
	if err := core.ValidateChunkParams(chunkSize, chunkOverlap); err != nil {
		return nil, err
	}

	key := core.CacheKey{
		ContentHash:  core.DigestOf(content),
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
	}

	entry, hit, err := p.cache.GetOrCompute(ctx, key, func(ctx context.Context) ([]byte, cache.Metadata, error) {
		artifact, err := p.embed(ctx, string(content), chunkSize, chunkOverlap)
		if err != nil {
			return nil, cache.Metadata{}, err
		}
		return artifact, cache.Metadata{
			SourceKind:     meta.Kind,
			OriginalName:   meta.Name,
			EmbeddingModel: p.embedder.Model(),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	itemID := meta.ItemID
	if itemID == "" {
		itemID = deriveItemID(projectID, meta.Name, key.ContentHash)
	}
	item := &core.SourceItem{
		ID:          itemID,
		ProjectID:   projectID,
		Kind:        meta.Kind,
		Name:        meta.Name,
		ContentHash: key.ContentHash,
		Embedded:    true,
		Included:    meta.Include,
	}
	if err := p.items.Upsert(ctx, item); err != nil {
		return nil, err
	}

	p.emitReindexIntent(projectID)

	p.logger.Info("document ingested", "project", projectID, "item", itemID,
		"kind", meta.Kind.String(), "cacheHit", hit)
	return &Result{Hit: hit, Entry: entry, Item: item}, nil
}

// embed chunks the text and embeds the chunks, returning artifact bytes.
func (p *Pipeline) embed(ctx context.Context, text string, chunkSize, chunkOverlap int) ([]byte, error) {
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(chunkOverlap),
	)
	chunks, err := splitter.SplitText(text)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		chunks = []string{text}
	}

	vectors, err := p.embedder.EmbedTexts(ctx, chunks)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedding result mismatch: expected %d, received %d",
			len(chunks), len(vectors))
	}
	return storage.MarshalVectors(vectors), nil
}

// CrawlSink adapts the pipeline into a crawl document sink: crawled pages
// are ingested exactly like uploads, as included url items.
func (p *Pipeline) CrawlSink(projectID string, chunkSize, chunkOverlap int) crawl.DocumentSink {
	return func(ctx context.Context, doc *core.CrawledDocument) error {
		_, err := p.IngestDocument(ctx, projectID, []byte(doc.Text), chunkSize, chunkOverlap, SourceMeta{
			Kind:    core.SourceKindURL,
			Name:    doc.URL,
			Include: true,
		})
		return err
	}
}

// emitReindexIntent enqueues a staleness check for the project. The queue
// is best-effort: when full the intent is dropped, and the next commit for
// the project re-emits it.
func (p *Pipeline) emitReindexIntent(projectID string) {
	select {
	case p.intents <- projectID:
	default:
		p.logger.Warn("reindex intent queue full, dropping", "project", projectID)
	}
}

// consumeIntents is the single staleness-check-then-rebuild routine.
// Rebuild work is pushed onto the pool; same-project requests coalesce in
// the rebuilder.
func (p *Pipeline) consumeIntents() {
	for {
		select {
		case <-p.done:
			return
		case projectID := <-p.intents:
			if p.rebuilder == nil {
				continue
			}
			err := p.pool.Submit(func() {
				rebuilt, err := p.rebuilder.RebuildIfStale(context.Background(), projectID)
				if err != nil {
					p.logger.Error("reindex failed", "project", projectID, "err", err)
					return
				}
				if rebuilt {
					p.logger.Debug("reindex completed", "project", projectID)
				}
			})
			if err != nil {
				p.logger.Error("failed to submit reindex task", "project", projectID, "err", err)
			}
		}
	}
}

// Release stops the intent consumer and the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	select {
	case <-p.done:
	default:
		close(p.done)
	}
	if p.pool != nil {
		p.pool.Release()
	}
}

func deriveItemID(projectID, name string, contentHash core.Digest) string {
	d := core.DigestOfString(projectID + "|" + name + "|" + contentHash.String())
	return d.String()[:16]
}
