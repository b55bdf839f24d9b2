package storage

import (
	"context"

	"github.com/iudanet/possync/internal/models"
)

//go:generate moq -out state_mock.go . StateStorage

// StateStorage persists the singleton sync state record and the session.
type StateStorage interface {
	// SaveSyncState stores the sync state record.
	SaveSyncState(ctx context.Context, state *models.SyncState) error

	// GetSyncState retrieves the sync state record. Returns a zero-valued
	// state when no sync has happened yet.
	GetSyncState(ctx context.Context) (*models.SyncState, error)

	// SaveSession stores the credential/tenant context.
	SaveSession(ctx context.Context, session *models.Session) error

	// GetSession retrieves the saved session.
	// Returns ErrSessionNotFound if none has been saved.
	GetSession(ctx context.Context) (*models.Session, error)

	// DeleteSession removes the saved session.
	DeleteSession(ctx context.Context) error
}
