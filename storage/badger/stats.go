package badger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/tessara/corpusd/core"
	"github.com/tessara/corpusd/storage"
)

// StatsRepository implements storage.StatsRepository for BadgerDB.
type StatsRepository struct {
	backend *Backend
}

var _ storage.StatsRepository = (*StatsRepository)(nil)

// NewStatsRepository creates a new StatsRepository.
func NewStatsRepository(backend *Backend) (storage.StatsRepository, error) {
	if backend == nil {
		return nil, errors.New("backend required")
	}
	return &StatsRepository{backend: backend}, nil
}

// Close releases repository resources.
func (r *StatsRepository) Close() error {
	return nil
}

// Get retrieves the rollup for a date.
func (r *StatsRepository) Get(ctx context.Context, date string) (*core.CacheStats, error) {
	var stats *core.CacheStats
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeCacheStatsKey(date))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			stats, err = storage.UnmarshalCacheStats(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// Upsert creates or replaces the rollup for its date.
func (r *StatsRepository) Upsert(ctx context.Context, stats *core.CacheStats) error {
	if stats == nil || stats.Date == "" {
		return errors.New("stats date required")
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeCacheStatsKey(stats.Date)
		if err := tx.Set(key, storage.MarshalCacheStats(stats)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
