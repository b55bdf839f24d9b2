// Package cache implements the eventually-accurate read cache used for
// optimistic reads while offline. It is not a source of truth and is not
// kept consistent with sync outcomes; the caller that enqueues a mutation
// decides what to cache.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/possync/internal/client/storage"
	"github.com/iudanet/possync/internal/models"
	"github.com/iudanet/possync/internal/validation"
)

// Cache provides last-write-wins snapshots of remote entities.
type Cache struct {
	store  storage.CacheStorage
	logger *slog.Logger
}

// New creates a cache over the given store.
func New(store storage.CacheStorage, logger *slog.Logger) *Cache {
	return &Cache{
		store:  store,
		logger: logger,
	}
}

// Put upserts a snapshot keyed by entity and the record's "id" field,
// unconditionally overwriting any previous snapshot.
func (c *Cache) Put(ctx context.Context, entity string, data map[string]any, tenantID string) error {
	if err := validation.ValidateEntity(entity); err != nil {
		return fmt.Errorf("invalid entity: %w", err)
	}

	localID, _ := data["id"].(string)
	if localID == "" {
		return fmt.Errorf("cached data must carry a string id field")
	}

	item := &models.CachedItem{
		Key:       entity + ":" + localID,
		Entity:    entity,
		LocalID:   localID,
		TenantID:  tenantID,
		Data:      data,
		UpdatedAt: time.Now(),
	}

	if err := c.store.PutCachedItem(ctx, item); err != nil {
		return fmt.Errorf("failed to put cached item: %w", err)
	}

	return nil
}

// GetAll returns the cached snapshots for an entity scoped to a tenant.
func (c *Cache) GetAll(ctx context.Context, entity, tenantID string) ([]map[string]any, error) {
	items, err := c.store.ListCachedItems(ctx, entity, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cached items: %w", err)
	}

	data := make([]map[string]any, 0, len(items))
	for _, item := range items {
		data = append(data, item.Data)
	}

	return data, nil
}

// GetOne returns the cached snapshot for a single record.
// Returns storage.ErrCacheItemNotFound when absent.
func (c *Cache) GetOne(ctx context.Context, entity, localID string) (map[string]any, error) {
	item, err := c.store.GetCachedItem(ctx, entity, localID)
	if err != nil {
		return nil, err
	}

	return item.Data, nil
}

// Clear removes snapshots. Empty entity/tenantID means "any"; non-empty
// filters combine conjunctively.
func (c *Cache) Clear(ctx context.Context, entity, tenantID string) error {
	if err := c.store.ClearCache(ctx, entity, tenantID); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	c.logger.Debug("cache cleared", "entity", entity, "tenant_id", tenantID)

	return nil
}
