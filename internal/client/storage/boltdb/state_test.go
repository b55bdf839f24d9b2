package boltdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/possync/internal/client/storage"
	"github.com/iudanet/possync/internal/models"
)

func TestGetSyncState_Empty(t *testing.T) {
	store := newTestStorage(t)

	state, err := store.GetSyncState(context.Background())
	require.NoError(t, err)
	assert.True(t, state.LastSync.IsZero())
	assert.Empty(t, state.LastError)
	assert.False(t, state.SyncInProgress)
}

func TestSaveSyncState_RoundTrip(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, store.SaveSyncState(ctx, &models.SyncState{
		LastSync:  now,
		LastError: "connection refused",
	}))

	state, err := store.GetSyncState(ctx)
	require.NoError(t, err)
	assert.True(t, state.LastSync.Equal(now))
	assert.Equal(t, "connection refused", state.LastError)
}

func TestSession_RoundTrip(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	session := &models.Session{
		ServerURL: "https://erp.example.com",
		TenantID:  "shop-42",
		UserID:    "cashier-7",
		Token:     "token-1",
	}
	require.NoError(t, store.SaveSession(ctx, session))

	got, err := store.GetSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, session, got)
}

func TestGetSession_NotFound(t *testing.T) {
	store := newTestStorage(t)

	_, err := store.GetSession(context.Background())
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestDeleteSession(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSession(ctx, &models.Session{TenantID: "shop-42"}))
	require.NoError(t, store.DeleteSession(ctx))

	_, err := store.GetSession(ctx)
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)

	// Deleting again is a no-op
	assert.NoError(t, store.DeleteSession(ctx))
}

func TestState_ClosedStorage(t *testing.T) {
	store := newTestStorage(t)
	require.NoError(t, store.Close())

	ctx := context.Background()

	assert.ErrorIs(t, store.SaveSyncState(ctx, &models.SyncState{}), storage.ErrStorageClosed)

	_, err := store.GetSyncState(ctx)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)

	assert.ErrorIs(t, store.SaveSession(ctx, &models.Session{}), storage.ErrStorageClosed)

	_, err = store.GetSession(ctx)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)

	assert.ErrorIs(t, store.DeleteSession(ctx), storage.ErrStorageClosed)
}
