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


package stats

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/tessara/corpusd/core"
	"github.com/tessara/corpusd/storage"
)

// DefaultUnitCost is the assumed cost of one avoided embedding computation,
// used for the estimated-savings figure.
const DefaultUnitCost = 0.0001

var (
	// ErrCacheRepositoryRequired is returned when a cache repository is not provided.
	ErrCacheRepositoryRequired = errors.New("cache repository required")

	// ErrStatsRepositoryRequired is returned when a stats repository is not provided.
	ErrStatsRepositoryRequired = errors.New("stats repository required")
)

// Aggregator computes periodic rollups over the embedding cache.
type Aggregator struct {
	cache    storage.CacheRepository
	stats    storage.StatsRepository
	unitCost float64
	logger   *slog.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithUnitCost sets the per-reuse savings estimate.
func WithUnitCost(cost float64) Option {
	return func(a *Aggregator) {
		if cost > 0 {
			a.unitCost = cost
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAggregator creates a cache statistics aggregator.
func NewAggregator(cache storage.CacheRepository, stats storage.StatsRepository, opts ...Option) (*Aggregator, error) {
	if cache == nil {
		return nil, ErrCacheRepositoryRequired
	}
	if stats == nil {
		return nil, ErrStatsRepositoryRequired
	}
	a := &Aggregator{
		cache:    cache,
		stats:    stats,
		unitCost: DefaultUnitCost,
		logger:   slog.Default().With("component", "cache-stats"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Rollup computes the cache statistics for a calendar date and upserts the
// row (create-or-update, idempotent). Running it twice with no intervening
// cache changes produces an identical row. An empty cache rolls up to a
// zero-valued row; sample data is never fabricated.
func (a *Aggregator) Rollup(ctx context.Context, asOf time.Time) (*core.CacheStats, error) {
	stats := &core.CacheStats{
		Date:   asOf.UTC().Format(time.DateOnly),
		ByKind: make(map[string]int64),
	}

	err := a.cache.Iterate(ctx, func(entry *core.CacheEntry) error {
		stats.TotalEntries++
		stats.TotalSizeBytes += entry.ByteSize
		stats.TotalUsage += entry.UsageCount
		stats.ByKind[entry.SourceKind.String()]++
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Every entry's first use is the creation itself; anything beyond that
	// is a reuse of an already computed embedding.
	if stats.TotalUsage > uint64(stats.TotalEntries) {
		stats.ReuseCount = stats.TotalUsage - uint64(stats.TotalEntries)
	}
	stats.EstimatedSavings = float64(stats.ReuseCount) * a.unitCost

	if err := a.stats.Upsert(ctx, stats); err != nil {
		return nil, err
	}

	a.logger.Info("cache stats rolled up", "date", stats.Date,
		"entries", stats.TotalEntries, "usage", stats.TotalUsage,
		"hitRate", stats.HitRate())
	return stats, nil
}

// Get returns the stored rollup for a date, or storage.ErrNotFound.
func (a *Aggregator) Get(ctx context.Context, date string) (*core.CacheStats, error) {
	return a.stats.Get(ctx, date)
}
