package storage

import (
	"context"

	"github.com/iudanet/possync/internal/models"
)

//go:generate moq -out operations_mock.go . OperationStorage

// OperationFilter narrows ListOperations. Zero-valued fields are ignored;
// set fields combine conjunctively.
type OperationFilter struct {
	TenantID string
	Status   models.OperationStatus
}

// OperationStorage defines the durable queue of pending mutations.
type OperationStorage interface {
	// SaveOperation stores or replaces an operation whole. Every state
	// transition is a single read-modify-write of the full record.
	SaveOperation(ctx context.Context, op *models.SyncOperation) error

	// GetOperation retrieves an operation by id.
	// Returns ErrOperationNotFound if it doesn't exist.
	GetOperation(ctx context.Context, id string) (*models.SyncOperation, error)

	// ListOperations returns operations matching the filter, sorted by
	// ascending timestamp.
	ListOperations(ctx context.Context, filter OperationFilter) ([]*models.SyncOperation, error)

	// DeleteOperation removes an operation unconditionally. Deleting a
	// missing operation is not an error.
	DeleteOperation(ctx context.Context, id string) error

	// MaxOperationTimestamp returns the highest timestamp in the queue, or 0
	// when empty. Used to seed the logical clock after a restart.
	MaxOperationTimestamp(ctx context.Context) (int64, error)
}
