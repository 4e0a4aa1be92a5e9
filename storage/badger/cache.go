package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/tessara/corpusd/core"
	"github.com/tessara/corpusd/storage"
)

// CacheRepository implements storage.CacheRepository for BadgerDB.
type CacheRepository struct {
	backend *Backend
}

var _ storage.CacheRepository = (*CacheRepository)(nil)

// NewCacheRepository creates a new CacheRepository.
func NewCacheRepository(backend *Backend) (storage.CacheRepository, error) {
	if backend == nil {
		return nil, errors.New("backend required")
	}
	return &CacheRepository{backend: backend}, nil
}

// Close releases repository resources.
func (r *CacheRepository) Close() error {
	return nil
}

// Get retrieves a cache entry by its full key tuple.
func (r *CacheRepository) Get(ctx context.Context, key core.CacheKey) (*core.CacheEntry, error) {
	var entry *core.CacheEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		entry, err = readCacheEntry(tx, makeCacheEntryKey(key))
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, storage.ErrNotFound
	}
	return entry, nil
}

// Create inserts a new entry. The first writer wins: if a row for the same
// key exists the insert is rejected with ErrDuplicateKey and the existing
// row is untouched.
func (r *CacheRepository) Create(ctx context.Context, entry *core.CacheEntry) error {
	if err := core.ValidateCacheEntry(entry); err != nil {
		return err
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeCacheEntryKey(entry.Key)
		existing, err := readCacheEntry(tx, key)
		if err != nil {
			return err
		}
		if existing != nil {
			return storage.ErrDuplicateKey
		}
		if err := tx.Set(key, storage.MarshalCacheEntry(entry)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Touch increments the usage counter by exactly 1 and updates LastUsedAt
// within a single transaction.
func (r *CacheRepository) Touch(ctx context.Context, key core.CacheKey, now time.Time) (*core.CacheEntry, error) {
	var touched *core.CacheEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		k := makeCacheEntryKey(key)
		entry, err := readCacheEntry(tx, k)
		if err != nil {
			return err
		}
		if entry == nil {
			return storage.ErrNotFound
		}
		entry.UsageCount++
		entry.LastUsedAt = now.UTC()
		if err := tx.Set(k, storage.MarshalCacheEntry(entry)); err != nil {
			return err
		}
		touched = entry
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return touched, nil
}

// Delete removes the entry row.
func (r *CacheRepository) Delete(ctx context.Context, key core.CacheKey) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		k := makeCacheEntryKey(key)
		existing, err := readCacheEntry(tx, k)
		if err != nil {
			return err
		}
		if existing == nil {
			return storage.ErrNotFound
		}
		if err := tx.Delete(k); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Iterate visits every cache entry.
func (r *CacheRepository) Iterate(ctx context.Context, fn func(entry *core.CacheEntry) error) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(cacheEntryPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			var entry *core.CacheEntry
			err := iter.Item().Value(func(val []byte) error {
				var err error
				entry, err = storage.UnmarshalCacheEntry(val)
				return err
			})
			if err != nil {
				return err
			}
			if err := fn(entry); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// readCacheEntry reads and unmarshals an entry inside a transaction.
// Returns (nil, nil) when the key is absent.
func readCacheEntry(tx *badger.Txn, key []byte) (*core.CacheEntry, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var entry *core.CacheEntry
	err = item.Value(func(val []byte) error {
		var err error
		entry, err = storage.UnmarshalCacheEntry(val)
		return err
	})
	return entry, err
}
