package storage

import (
	"context"

	"github.com/iudanet/possync/internal/models"
)

//go:generate moq -out cache_mock.go . CacheStorage

// CacheStorage defines the per-entity read cache. Last write wins; records
// are replaced whole, never merged.
type CacheStorage interface {
	// PutCachedItem upserts a snapshot keyed by entity + local id.
	PutCachedItem(ctx context.Context, item *models.CachedItem) error

	// GetCachedItem retrieves a snapshot by entity and local id.
	// Returns ErrCacheItemNotFound if it doesn't exist.
	GetCachedItem(ctx context.Context, entity, localID string) (*models.CachedItem, error)

	// ListCachedItems returns snapshots for an entity scoped to a tenant.
	ListCachedItems(ctx context.Context, entity, tenantID string) ([]*models.CachedItem, error)

	// ClearCache removes snapshots. Empty entity/tenantID means "any";
	// non-empty filters combine conjunctively.
	ClearCache(ctx context.Context, entity, tenantID string) error
}
