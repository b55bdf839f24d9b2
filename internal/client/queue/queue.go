// Package queue implements the durable, append-only log of pending mutations.
package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/possync/internal/client/storage"
	"github.com/iudanet/possync/internal/clock"
	"github.com/iudanet/possync/internal/events"
	"github.com/iudanet/possync/internal/models"
	"github.com/iudanet/possync/internal/validation"
)

// Queue owns creation and removal of sync operations. Status transitions
// after enqueue belong to the sync engine.
type Queue struct {
	store  storage.OperationStorage
	clock  *clock.Clock
	bus    *events.Bus
	logger *slog.Logger
}

// New creates a queue over the given operation store.
func New(store storage.OperationStorage, clk *clock.Clock, bus *events.Bus, logger *slog.Logger) *Queue {
	return &Queue{
		store:  store,
		clock:  clk,
		bus:    bus,
		logger: logger,
	}
}

// Enqueue constructs and durably stores a pending operation, then emits
// operation:queued. It returns as soon as the record is stored; it never
// waits on the network. Validation failures are returned synchronously:
// they indicate programmer error in the caller, not an environmental
// condition.
func (q *Queue) Enqueue(ctx context.Context, opType models.OperationType, entity string, data map[string]any, tenantID, userID string) (*models.SyncOperation, error) {
	switch opType {
	case models.OperationCreate, models.OperationUpdate, models.OperationDelete:
	default:
		return nil, fmt.Errorf("invalid operation type: %q", opType)
	}

	if err := validation.ValidateEntity(entity); err != nil {
		return nil, fmt.Errorf("invalid entity: %w", err)
	}

	if err := validation.ValidateTenantID(tenantID); err != nil {
		return nil, fmt.Errorf("invalid tenant id: %w", err)
	}

	if data == nil {
		return nil, fmt.Errorf("operation data cannot be nil")
	}

	// The client-assigned record id, when present, ties this operation to
	// earlier ones for the same record so they replay in order.
	localID, _ := data["id"].(string)

	op := &models.SyncOperation{
		ID:        uuid.New().String(),
		Type:      opType,
		Entity:    entity,
		Data:      data,
		Timestamp: q.clock.Now(),
		Status:    models.StatusPending,
		TenantID:  tenantID,
		UserID:    userID,
		LocalID:   localID,
		CreatedAt: time.Now(),
	}

	if err := q.store.SaveOperation(ctx, op); err != nil {
		return nil, fmt.Errorf("failed to save operation: %w", err)
	}

	q.logger.Debug("operation queued",
		"operation_id", op.ID,
		"type", string(opType),
		"entity", entity,
		"tenant_id", tenantID)

	q.bus.Emit(events.OperationQueued, op.Clone())

	return op, nil
}

// List returns operations sorted by ascending timestamp. Empty tenantID or
// status means "any"; both given combine conjunctively.
func (q *Queue) List(ctx context.Context, tenantID string, status models.OperationStatus) ([]*models.SyncOperation, error) {
	ops, err := q.store.ListOperations(ctx, storage.OperationFilter{
		TenantID: tenantID,
		Status:   status,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list operations: %w", err)
	}

	return ops, nil
}

// Get retrieves a single operation by id.
func (q *Queue) Get(ctx context.Context, id string) (*models.SyncOperation, error) {
	return q.store.GetOperation(ctx, id)
}

// Remove deletes an operation unconditionally and emits operation:removed.
// Used by the resolver when a resolution discards the local mutation.
func (q *Queue) Remove(ctx context.Context, id string) error {
	if err := q.store.DeleteOperation(ctx, id); err != nil {
		return fmt.Errorf("failed to delete operation: %w", err)
	}

	q.bus.Emit(events.OperationRemoved, id)

	return nil
}
