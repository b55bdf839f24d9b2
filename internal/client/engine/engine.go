// Package engine drains the operation queue against the remote API,
// classifies outcomes and promotes unrecoverable failures into exceptions.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	httpapi "github.com/iudanet/possync/internal/client/api"
	"github.com/iudanet/possync/internal/client/ledger"
	"github.com/iudanet/possync/internal/client/storage"
	"github.com/iudanet/possync/internal/events"
	"github.com/iudanet/possync/internal/models"
)

// Summary aggregates the outcome counts of one drain.
type Summary struct {
	Synced    int `json:"synced"`
	Failed    int `json:"failed"`
	Conflicts int `json:"conflicts"`
}

// Engine owns every status transition of queued operations. It enforces a
// single-flight drain: at most one drain per process at a time.
type Engine struct {
	ops    storage.OperationStorage
	state  storage.StateStorage
	api    httpapi.ClientAPI
	ledger *ledger.Ledger
	bus    *events.Bus
	logger *slog.Logger
	cfg    Config

	// online and token are supplied by the lifecycle controller / session
	// layer so the engine has no dependency on either.
	online func() bool
	token  func() string

	inFlight atomic.Bool
}

// New creates a sync engine. online reports current connectivity; token
// supplies the bearer credential for remote calls. Either may be nil.
func New(
	ops storage.OperationStorage,
	state storage.StateStorage,
	apiClient httpapi.ClientAPI,
	ldg *ledger.Ledger,
	bus *events.Bus,
	logger *slog.Logger,
	cfg Config,
	online func() bool,
	token func() string,
) *Engine {
	return &Engine{
		ops:    ops,
		state:  state,
		api:    apiClient,
		ledger: ldg,
		bus:    bus,
		logger: logger,
		cfg:    cfg.withDefaults(),
		online: online,
		token:  token,
	}
}

// InProgress reports whether a drain is currently running.
func (e *Engine) InProgress() bool {
	return e.inFlight.Load()
}

// SyncPendingOperations runs one drain: select candidates, replay them
// sequentially in timestamp order, classify outcomes. No-op returning an
// empty summary when offline or when another drain is already running.
func (e *Engine) SyncPendingOperations(ctx context.Context) (*Summary, error) {
	summary := &Summary{}

	if e.online != nil && !e.online() {
		return summary, nil
	}

	if !e.inFlight.CompareAndSwap(false, true) {
		return summary, nil
	}
	defer e.inFlight.Store(false)

	e.bus.Emit(events.SyncStarted, nil)

	candidates, err := e.collectCandidates(ctx)
	if err != nil {
		e.finishDrain(ctx, summary, err)
		return summary, err
	}

	e.logger.Debug("drain started", "candidates", len(candidates))

	for _, op := range candidates {
		if ctx.Err() != nil {
			break
		}
		e.processOperation(ctx, op, summary)
	}

	e.finishDrain(ctx, summary, nil)

	e.logger.Info("drain completed",
		"synced", summary.Synced,
		"failed", summary.Failed,
		"conflicts", summary.Conflicts)

	return summary, nil
}

// collectCandidates selects pending operations plus failed ones whose retry
// budget and backoff window allow another attempt, sorted by ascending
// timestamp and capped at the batch size.
func (e *Engine) collectCandidates(ctx context.Context) ([]*models.SyncOperation, error) {
	pending, err := e.ops.ListOperations(ctx, storage.OperationFilter{Status: models.StatusPending})
	if err != nil {
		return nil, fmt.Errorf("failed to list pending operations: %w", err)
	}

	failed, err := e.ops.ListOperations(ctx, storage.OperationFilter{Status: models.StatusFailed})
	if err != nil {
		return nil, fmt.Errorf("failed to list failed operations: %w", err)
	}

	now := time.Now()
	candidates := make([]*models.SyncOperation, 0, len(pending)+len(failed))
	candidates = append(candidates, pending...)
	for _, op := range failed {
		if op.Attempts >= e.cfg.MaxRetries {
			continue
		}
		if !e.backoffElapsed(op, now) {
			continue
		}
		candidates = append(candidates, op)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Timestamp != candidates[j].Timestamp {
			return candidates[i].Timestamp < candidates[j].Timestamp
		}
		return candidates[i].ID < candidates[j].ID
	})

	if len(candidates) > e.cfg.BatchSize {
		candidates = candidates[:e.cfg.BatchSize]
	}

	return candidates, nil
}

// backoffElapsed reports whether enough time has passed since the last
// attempt for another retry of the same operation.
func (e *Engine) backoffElapsed(op *models.SyncOperation, now time.Time) bool {
	if op.LastAttempt.IsZero() || op.Attempts == 0 {
		return true
	}
	return now.Sub(op.LastAttempt) >= e.retryDelay(op.Attempts)
}

// retryDelay computes the backoff window after the given number of attempts:
// BaseDelay doubled per attempt, bounded by MaxDelay.
func (e *Engine) retryDelay(attempts int) time.Duration {
	delay := e.cfg.BaseDelay
	for i := 1; i < attempts; i++ {
		delay *= 2
		if delay >= e.cfg.MaxDelay {
			return e.cfg.MaxDelay
		}
	}
	if delay > e.cfg.MaxDelay {
		return e.cfg.MaxDelay
	}
	return delay
}

// processOperation replays one operation and records its outcome. Attempts
// increments immediately before the network call and is persisted first, so
// a crash mid-call still counts the attempt.
func (e *Engine) processOperation(ctx context.Context, op *models.SyncOperation, summary *Summary) {
	op.Status = models.StatusSyncing
	op.Attempts++
	op.LastAttempt = time.Now()

	if err := e.ops.SaveOperation(ctx, op); err != nil {
		e.logger.Error("failed to persist syncing state",
			"operation_id", op.ID, "error", err)
		return
	}

	var token string
	if e.token != nil {
		token = e.token()
	}

	resp, err := e.api.ExecuteOperation(ctx, token, op)
	if err == nil {
		op.Status = models.StatusSynced
		op.ServerID = resp.ServerID()
		op.Error = ""
		if saveErr := e.ops.SaveOperation(ctx, op); saveErr != nil {
			e.logger.Error("failed to persist synced state",
				"operation_id", op.ID, "error", saveErr)
			return
		}

		summary.Synced++
		e.bus.Emit(events.OperationSynced, op.Clone())
		return
	}

	var apiErr *httpapi.Error
	if errors.As(err, &apiErr) && apiErr.IsConflict() {
		e.recordConflict(ctx, op, apiErr, summary)
		return
	}

	e.recordFailure(ctx, op, err, summary)
}

// recordConflict moves the operation to the conflict state and raises an
// exception. Conflicts never auto-retry; they wait for a resolution.
func (e *Engine) recordConflict(ctx context.Context, op *models.SyncOperation, apiErr *httpapi.Error, summary *Summary) {
	op.Status = models.StatusConflict
	op.ConflictData = apiErr.ConflictData
	op.Error = apiErr.Message

	if err := e.ops.SaveOperation(ctx, op); err != nil {
		e.logger.Error("failed to persist conflict state",
			"operation_id", op.ID, "error", err)
		return
	}

	summary.Conflicts++
	e.bus.Emit(events.OperationConflict, op.Clone())

	if _, err := e.ledger.Report(ctx, op, models.ExceptionConflict, apiErr.Message, apiErr.ConflictData); err != nil {
		e.logger.Error("failed to report conflict exception",
			"operation_id", op.ID, "error", err)
	}
}

// recordFailure moves the operation to the failed state. At the retry bound
// it raises exactly one exception: attempts advances by one per drain, so
// the equality check fires on a single attempt.
func (e *Engine) recordFailure(ctx context.Context, op *models.SyncOperation, callErr error, summary *Summary) {
	op.Status = models.StatusFailed
	op.Error = callErr.Error()

	if err := e.ops.SaveOperation(ctx, op); err != nil {
		e.logger.Error("failed to persist failed state",
			"operation_id", op.ID, "error", err)
		return
	}

	summary.Failed++
	e.bus.Emit(events.OperationFailed, op.Clone())

	if op.Attempts == e.cfg.MaxRetries {
		excType := models.ExceptionNetwork
		var apiErr *httpapi.Error
		if errors.As(callErr, &apiErr) {
			excType = models.ExceptionServer
		}

		if _, err := e.ledger.Report(ctx, op, excType, callErr.Error(), nil); err != nil {
			e.logger.Error("failed to report failure exception",
				"operation_id", op.ID, "error", err)
		}
	}
}

// finishDrain persists the sync state and emits sync:completed.
func (e *Engine) finishDrain(ctx context.Context, summary *Summary, drainErr error) {
	state, err := e.state.GetSyncState(ctx)
	if err != nil {
		e.logger.Error("failed to read sync state", "error", err)
		state = &models.SyncState{}
	}

	state.LastSync = time.Now()
	state.SyncInProgress = false
	state.LastError = ""
	if drainErr != nil {
		state.LastError = drainErr.Error()
	}

	if err := e.state.SaveSyncState(ctx, state); err != nil {
		e.logger.Error("failed to save sync state", "error", err)
	}

	e.bus.Emit(events.SyncCompleted, *summary)
}
