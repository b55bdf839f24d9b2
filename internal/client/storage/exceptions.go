package storage

import (
	"context"

	"github.com/iudanet/possync/internal/models"
)

//go:generate moq -out exceptions_mock.go . ExceptionStorage

// ExceptionStorage defines the durable ledger of sync exceptions.
type ExceptionStorage interface {
	// SaveException stores or replaces an exception whole.
	SaveException(ctx context.Context, exc *models.SyncException) error

	// GetException retrieves an exception by id.
	// Returns ErrExceptionNotFound if it doesn't exist.
	GetException(ctx context.Context, id string) (*models.SyncException, error)

	// ListExceptions returns exceptions sorted by ascending timestamp.
	// resolved=nil returns everything; otherwise only matching records.
	ListExceptions(ctx context.Context, resolved *bool) ([]*models.SyncException, error)
}
