// Package ledger stores sync exceptions and applies human resolutions back
// to the operation queue.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/possync/internal/client/storage"
	"github.com/iudanet/possync/internal/events"
	"github.com/iudanet/possync/internal/models"
)

// ErrAlreadyResolved indicates that the exception was resolved before.
// The resolved flag flips exactly once.
var ErrAlreadyResolved = errors.New("exception already resolved")

// Ledger owns the resolved transition of exceptions. Exactly one operation
// is mutated per resolution; a missing operation makes the follow-up a no-op.
type Ledger struct {
	excStore storage.ExceptionStorage
	opStore  storage.OperationStorage
	bus      *events.Bus
	logger   *slog.Logger
}

// New creates a ledger over the given stores.
func New(excStore storage.ExceptionStorage, opStore storage.OperationStorage, bus *events.Bus, logger *slog.Logger) *Ledger {
	return &Ledger{
		excStore: excStore,
		opStore:  opStore,
		bus:      bus,
		logger:   logger,
	}
}

// Report persists a new unresolved exception for op and emits
// exception:created. Called by the sync engine on a conflict response or
// when the retry budget is exhausted.
func (l *Ledger) Report(ctx context.Context, op *models.SyncOperation, excType models.ExceptionType, message string, serverData map[string]any) (*models.SyncException, error) {
	exc := &models.SyncException{
		ID:          uuid.New().String(),
		OperationID: op.ID,
		Type:        excType,
		Message:     message,
		LocalData:   op.Clone().Data,
		ServerData:  serverData,
		Timestamp:   time.Now().UnixNano(),
		CreatedAt:   time.Now(),
	}

	if err := l.excStore.SaveException(ctx, exc); err != nil {
		return nil, fmt.Errorf("failed to save exception: %w", err)
	}

	l.logger.Warn("sync exception created",
		"exception_id", exc.ID,
		"operation_id", op.ID,
		"type", string(excType),
		"message", message)

	l.bus.Emit(events.ExceptionCreated, exc.Clone())

	return exc, nil
}

// List returns exceptions sorted by ascending timestamp, optionally
// filtered to resolved or unresolved ones.
func (l *Ledger) List(ctx context.Context, resolved *bool) ([]*models.SyncException, error) {
	excs, err := l.excStore.ListExceptions(ctx, resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to list exceptions: %w", err)
	}

	return excs, nil
}

// Resolve marks an exception resolved and applies exactly one follow-up to
// the referenced operation:
//
//   - use_local / merge: reset the operation to pending with the
//     force-overwrite marker so the next drain retries it
//   - use_server / discard: remove the operation from the queue
//
// Returns storage.ErrExceptionNotFound for an unknown id and
// ErrAlreadyResolved when the exception was resolved before.
func (l *Ledger) Resolve(ctx context.Context, exceptionID string, resolution models.ResolutionType, resolvedBy string) error {
	if !models.ValidResolution(resolution) {
		return fmt.Errorf("invalid resolution type: %q", resolution)
	}

	exc, err := l.excStore.GetException(ctx, exceptionID)
	if err != nil {
		return fmt.Errorf("failed to get exception: %w", err)
	}

	if exc.Resolved {
		return ErrAlreadyResolved
	}

	exc.Resolved = true
	exc.ResolvedAt = time.Now()
	exc.ResolutionType = resolution
	exc.ResolvedBy = resolvedBy

	if err := l.excStore.SaveException(ctx, exc); err != nil {
		return fmt.Errorf("failed to save exception: %w", err)
	}

	if err := l.applyResolution(ctx, exc, resolution); err != nil {
		return err
	}

	l.logger.Info("sync exception resolved",
		"exception_id", exc.ID,
		"operation_id", exc.OperationID,
		"resolution", string(resolution),
		"resolved_by", resolvedBy)

	l.bus.Emit(events.ExceptionResolved, exc.Clone())

	return nil
}

// applyResolution mutates the referenced operation. A missing operation is
// not an error: it may have been removed by an earlier resolution.
func (l *Ledger) applyResolution(ctx context.Context, exc *models.SyncException, resolution models.ResolutionType) error {
	op, err := l.opStore.GetOperation(ctx, exc.OperationID)
	if err != nil {
		if errors.Is(err, storage.ErrOperationNotFound) {
			return nil
		}
		return fmt.Errorf("failed to get operation: %w", err)
	}

	switch resolution {
	case models.ResolutionUseLocal, models.ResolutionMerge:
		// merge currently behaves like use_local; field-level merging is a
		// caller-supplied transform and is not implemented here.
		op.Status = models.StatusPending
		op.Attempts = 0
		op.Error = ""
		op.ConflictData = nil
		if op.Data == nil {
			op.Data = make(map[string]any)
		}
		op.Data[models.ForceOverwriteKey] = true

		if err := l.opStore.SaveOperation(ctx, op); err != nil {
			return fmt.Errorf("failed to reset operation: %w", err)
		}

	case models.ResolutionUseServer, models.ResolutionDiscard:
		if err := l.opStore.DeleteOperation(ctx, op.ID); err != nil {
			return fmt.Errorf("failed to remove operation: %w", err)
		}
		l.bus.Emit(events.OperationRemoved, op.ID)
	}

	return nil
}
