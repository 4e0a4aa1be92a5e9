package badger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/tessara/corpusd/core"
	"github.com/tessara/corpusd/storage"
)

// StatusRepository implements storage.StatusRepository for BadgerDB.
type StatusRepository struct {
	backend *Backend
}

var _ storage.StatusRepository = (*StatusRepository)(nil)

// NewStatusRepository creates a new StatusRepository.
func NewStatusRepository(backend *Backend) (storage.StatusRepository, error) {
	if backend == nil {
		return nil, errors.New("backend required")
	}
	return &StatusRepository{backend: backend}, nil
}

// Close releases repository resources.
func (r *StatusRepository) Close() error {
	return nil
}

// Get retrieves the status for a project.
func (r *StatusRepository) Get(ctx context.Context, projectID string) (*core.IndexStatus, error) {
	if projectID == "" {
		return nil, core.ErrEmptyProjectID
	}
	var status *core.IndexStatus
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeIndexStatusKey(projectID))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			status, err = storage.UnmarshalIndexStatus(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return status, nil
}

// Upsert creates or replaces the project's status.
func (r *StatusRepository) Upsert(ctx context.Context, status *core.IndexStatus) error {
	if status == nil || status.ProjectID == "" {
		return core.ErrEmptyProjectID
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeIndexStatusKey(status.ProjectID)
		if err := tx.Set(key, storage.MarshalIndexStatus(status)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
