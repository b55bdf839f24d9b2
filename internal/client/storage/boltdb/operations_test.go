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

func newOperation(id, tenantID string, status models.OperationStatus, timestamp int64) *models.SyncOperation {
	return &models.SyncOperation{
		ID:        id,
		Type:      models.OperationCreate,
		Entity:    "invoice",
		Data:      map[string]any{"id": "inv-" + id},
		TenantID:  tenantID,
		LocalID:   "inv-" + id,
		Status:    status,
		Timestamp: timestamp,
		CreatedAt: time.Now().UTC(),
	}
}

func TestSaveOperation_RoundTrip(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	op := newOperation("op-1", "shop-42", models.StatusPending, 100)
	op.Attempts = 2
	op.Error = "connection refused"

	require.NoError(t, store.SaveOperation(ctx, op))

	got, err := store.GetOperation(ctx, "op-1")
	require.NoError(t, err)
	assert.Equal(t, op.ID, got.ID)
	assert.Equal(t, op.Status, got.Status)
	assert.Equal(t, op.Attempts, got.Attempts)
	assert.Equal(t, op.Error, got.Error)
	assert.Equal(t, "inv-op-1", got.Data["id"])
}

func TestSaveOperation_ReplacesWhole(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	op := newOperation("op-1", "shop-42", models.StatusPending, 100)
	require.NoError(t, store.SaveOperation(ctx, op))

	op.Status = models.StatusSynced
	op.ServerID = "SRV-001"
	require.NoError(t, store.SaveOperation(ctx, op))

	got, err := store.GetOperation(ctx, "op-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSynced, got.Status)
	assert.Equal(t, "SRV-001", got.ServerID)
}

func TestGetOperation_NotFound(t *testing.T) {
	store := newTestStorage(t)

	_, err := store.GetOperation(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrOperationNotFound)
}

func TestListOperations_OrderedByTimestamp(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	// Insert out of order; list must come back FIFO by logical timestamp.
	require.NoError(t, store.SaveOperation(ctx, newOperation("op-c", "shop-42", models.StatusPending, 300)))
	require.NoError(t, store.SaveOperation(ctx, newOperation("op-a", "shop-42", models.StatusPending, 100)))
	require.NoError(t, store.SaveOperation(ctx, newOperation("op-b", "shop-42", models.StatusPending, 200)))

	ops, err := store.ListOperations(ctx, storage.OperationFilter{})
	require.NoError(t, err)
	require.Len(t, ops, 3)
	assert.Equal(t, "op-a", ops[0].ID)
	assert.Equal(t, "op-b", ops[1].ID)
	assert.Equal(t, "op-c", ops[2].ID)
}

func TestListOperations_TimestampTieBreaksOnID(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveOperation(ctx, newOperation("op-b", "shop-42", models.StatusPending, 100)))
	require.NoError(t, store.SaveOperation(ctx, newOperation("op-a", "shop-42", models.StatusPending, 100)))

	ops, err := store.ListOperations(ctx, storage.OperationFilter{})
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, "op-a", ops[0].ID)
}

func TestListOperations_Filters(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveOperation(ctx, newOperation("op-1", "shop-1", models.StatusPending, 100)))
	require.NoError(t, store.SaveOperation(ctx, newOperation("op-2", "shop-1", models.StatusFailed, 200)))
	require.NoError(t, store.SaveOperation(ctx, newOperation("op-3", "shop-2", models.StatusPending, 300)))

	tests := []struct {
		name    string
		filter  storage.OperationFilter
		wantIDs []string
	}{
		{"no filter", storage.OperationFilter{}, []string{"op-1", "op-2", "op-3"}},
		{"by tenant", storage.OperationFilter{TenantID: "shop-1"}, []string{"op-1", "op-2"}},
		{"by status", storage.OperationFilter{Status: models.StatusPending}, []string{"op-1", "op-3"}},
		{"tenant and status", storage.OperationFilter{TenantID: "shop-1", Status: models.StatusPending}, []string{"op-1"}},
		{"no matches", storage.OperationFilter{TenantID: "shop-3"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ops, err := store.ListOperations(ctx, tt.filter)
			require.NoError(t, err)

			var ids []string
			for _, op := range ops {
				ids = append(ids, op.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestDeleteOperation(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveOperation(ctx, newOperation("op-1", "shop-42", models.StatusPending, 100)))
	require.NoError(t, store.DeleteOperation(ctx, "op-1"))

	_, err := store.GetOperation(ctx, "op-1")
	assert.ErrorIs(t, err, storage.ErrOperationNotFound)
}

func TestDeleteOperation_MissingIsNotAnError(t *testing.T) {
	store := newTestStorage(t)

	assert.NoError(t, store.DeleteOperation(context.Background(), "missing"))
}

func TestMaxOperationTimestamp(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	ts, err := store.MaxOperationTimestamp(ctx)
	require.NoError(t, err)
	assert.Zero(t, ts)

	require.NoError(t, store.SaveOperation(ctx, newOperation("op-1", "shop-42", models.StatusSynced, 500)))
	require.NoError(t, store.SaveOperation(ctx, newOperation("op-2", "shop-42", models.StatusPending, 300)))

	ts, err = store.MaxOperationTimestamp(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(500), ts)
}

func TestOperations_ClosedStorage(t *testing.T) {
	store := newTestStorage(t)
	require.NoError(t, store.Close())

	ctx := context.Background()

	assert.ErrorIs(t, store.SaveOperation(ctx, newOperation("op-1", "t", models.StatusPending, 1)), storage.ErrStorageClosed)

	_, err := store.GetOperation(ctx, "op-1")
	assert.ErrorIs(t, err, storage.ErrStorageClosed)

	_, err = store.ListOperations(ctx, storage.OperationFilter{})
	assert.ErrorIs(t, err, storage.ErrStorageClosed)

	_, err = store.MaxOperationTimestamp(ctx)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}
