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

// cacheKey builds the bucket key for a snapshot: entity + ":" + local id.
func cacheKey(entity, localID string) []byte {
	return []byte(entity + ":" + localID)
}

// PutCachedItem upserts a snapshot, unconditionally overwriting
func (s *Storage) PutCachedItem(ctx context.Context, item *models.CachedItem) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal cached item: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketCache)
		if bucket == nil {
			return fmt.Errorf("cache bucket not found")
		}

		if err := bucket.Put(cacheKey(item.Entity, item.LocalID), data); err != nil {
			return fmt.Errorf("failed to save cached item: %w", err)
		}

		return nil
	})

	if err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}

	return nil
}

// GetCachedItem retrieves a snapshot by entity and local id
func (s *Storage) GetCachedItem(ctx context.Context, entity, localID string) (*models.CachedItem, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var item *models.CachedItem

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketCache)
		if bucket == nil {
			return storage.ErrCacheItemNotFound
		}

		data := bucket.Get(cacheKey(entity, localID))
		if data == nil {
			return storage.ErrCacheItemNotFound
		}

		item = &models.CachedItem{}
		if err := json.Unmarshal(data, item); err != nil {
			return fmt.Errorf("failed to unmarshal cached item: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return item, nil
}

// ListCachedItems returns snapshots for an entity scoped to a tenant,
// sorted by key for stable output
func (s *Storage) ListCachedItems(ctx context.Context, entity, tenantID string) ([]*models.CachedItem, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var items []*models.CachedItem

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketCache)
		if bucket == nil {
			return nil
		}

		return bucket.ForEach(func(k, v []byte) error {
			var item models.CachedItem
			if err := json.Unmarshal(v, &item); err != nil {
				return fmt.Errorf("failed to unmarshal cached item: %w", err)
			}

			if entity != "" && item.Entity != entity {
				return nil
			}
			if tenantID != "" && item.TenantID != tenantID {
				return nil
			}

			items = append(items, &item)
			return nil
		})
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list cached items: %w", err)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Key < items[j].Key
	})

	return items, nil
}

// ClearCache removes snapshots matching the optional entity and tenant
// filters; both empty clears everything
func (s *Storage) ClearCache(ctx context.Context, entity, tenantID string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketCache)
		if bucket == nil {
			return nil
		}

		// Collect keys first: deleting inside ForEach invalidates the cursor.
		var keys [][]byte
		err := bucket.ForEach(func(k, v []byte) error {
			var item models.CachedItem
			if err := json.Unmarshal(v, &item); err != nil {
				return fmt.Errorf("failed to unmarshal cached item: %w", err)
			}

			if entity != "" && item.Entity != entity {
				return nil
			}
			if tenantID != "" && item.TenantID != tenantID {
				return nil
			}

			key := make([]byte, len(k))
			copy(key, k)
			keys = append(keys, key)
			return nil
		})
		if err != nil {
			return err
		}

		for _, key := range keys {
			if err := bucket.Delete(key); err != nil {
				return fmt.Errorf("failed to delete cached item: %w", err)
			}
		}

		return nil
	})

	if err != nil {
		return fmt.Errorf("clear transaction failed: %w", err)
	}

	return nil
}
