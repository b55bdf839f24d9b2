package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"go.etcd.io/bbolt"

	"github.com/iudanet/possync/internal/client/storage"
	"github.com/iudanet/possync/internal/models"
)

// SaveException stores or replaces a sync exception whole
func (s *Storage) SaveException(ctx context.Context, exc *models.SyncException) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	data, err := json.Marshal(exc)
	if err != nil {
		return fmt.Errorf("failed to marshal exception: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketExceptions)
		if bucket == nil {
			return fmt.Errorf("exceptions bucket not found")
		}

		if err := bucket.Put([]byte(exc.ID), data); err != nil {
			return fmt.Errorf("failed to save exception: %w", err)
		}

		return nil
	})

	if err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}

	return nil
}

// GetException retrieves a sync exception by ID
func (s *Storage) GetException(ctx context.Context, id string) (*models.SyncException, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var exc *models.SyncException

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketExceptions)
		if bucket == nil {
			return storage.ErrExceptionNotFound
		}

		data := bucket.Get([]byte(id))
		if data == nil {
			return storage.ErrExceptionNotFound
		}

		exc = &models.SyncException{}
		if err := json.Unmarshal(data, exc); err != nil {
			return fmt.Errorf("failed to unmarshal exception: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return exc, nil
}

// ListExceptions returns exceptions sorted by ascending timestamp,
// optionally filtered by resolved state
func (s *Storage) ListExceptions(ctx context.Context, resolved *bool) ([]*models.SyncException, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var excs []*models.SyncException

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketExceptions)
		if bucket == nil {
			return nil
		}

		return bucket.ForEach(func(k, v []byte) error {
			var exc models.SyncException
			if err := json.Unmarshal(v, &exc); err != nil {
				return fmt.Errorf("failed to unmarshal exception: %w", err)
			}

			if resolved != nil && exc.Resolved != *resolved {
				return nil
			}

			excs = append(excs, &exc)
			return nil
		})
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list exceptions: %w", err)
	}

	sort.Slice(excs, func(i, j int) bool {
		if excs[i].Timestamp != excs[j].Timestamp {
			return excs[i].Timestamp < excs[j].Timestamp
		}
		return excs[i].ID < excs[j].ID
	})

	return excs, nil
}
