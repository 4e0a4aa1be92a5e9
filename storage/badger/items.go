package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/tessara/corpusd/core"
	"github.com/tessara/corpusd/storage"
)

// ItemRepository implements storage.ItemRepository for BadgerDB.
type ItemRepository struct {
	backend *Backend
}

var _ storage.ItemRepository = (*ItemRepository)(nil)

// NewItemRepository creates a new ItemRepository.
func NewItemRepository(backend *Backend) (storage.ItemRepository, error) {
	if backend == nil {
		return nil, errors.New("backend required")
	}
	return &ItemRepository{backend: backend}, nil
}

// Close releases repository resources.
func (r *ItemRepository) Close() error {
	return nil
}

// Get retrieves a single item.
func (r *ItemRepository) Get(ctx context.Context, projectID, id string) (*core.SourceItem, error) {
	var item *core.SourceItem
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		entry, err := tx.Get(makeSourceItemKey(projectID, id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return entry.Value(func(val []byte) error {
			var err error
			item, err = storage.UnmarshalSourceItem(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return item, nil
}

// ListByProject returns all items for a project. BadgerDB iterates keys in
// lexicographic order, so results come back ordered by item ID.
func (r *ItemRepository) ListByProject(ctx context.Context, projectID string) ([]*core.SourceItem, error) {
	if projectID == "" {
		return nil, core.ErrEmptyProjectID
	}
	var items []*core.SourceItem
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeSourceItemProjectPrefix(projectID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			var item *core.SourceItem
			err := iter.Item().Value(func(val []byte) error {
				var err error
				item, err = storage.UnmarshalSourceItem(val)
				return err
			})
			if err != nil {
				return err
			}
			items = append(items, item)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Upsert creates or replaces an item, stamping UpdatedAt.
func (r *ItemRepository) Upsert(ctx context.Context, item *core.SourceItem) error {
	if err := core.ValidateSourceItem(item); err != nil {
		return err
	}
	item.UpdatedAt = time.Now().UTC()
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeSourceItemKey(item.ProjectID, item.ID)
		if err := tx.Set(key, storage.MarshalSourceItem(item)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Delete removes an item.
func (r *ItemRepository) Delete(ctx context.Context, projectID, id string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeSourceItemKey(projectID, id)
		if _, err := tx.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
