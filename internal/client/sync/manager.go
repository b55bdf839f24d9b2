// Package sync wires the queue, engine, ledger, cache and connectivity
// monitor into the single facade the application talks to. One Manager per
// application instance, constructed at start-up and passed down explicitly.
package sync

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	httpapi "github.com/iudanet/possync/internal/client/api"
	"github.com/iudanet/possync/internal/client/cache"
	"github.com/iudanet/possync/internal/client/connectivity"
	"github.com/iudanet/possync/internal/client/engine"
	"github.com/iudanet/possync/internal/client/ledger"
	"github.com/iudanet/possync/internal/client/queue"
	"github.com/iudanet/possync/internal/client/storage"
	"github.com/iudanet/possync/internal/clock"
	"github.com/iudanet/possync/internal/events"
	"github.com/iudanet/possync/internal/models"
)

// Store is the durable store the manager runs on: the four logical tables
// behind one handle. The boltdb implementation satisfies it.
type Store interface {
	storage.OperationStorage
	storage.ExceptionStorage
	storage.CacheStorage
	storage.StateStorage
}

// Options configures a Manager.
type Options struct {
	// APIClient talks to the remote backend. Required.
	APIClient httpapi.ClientAPI

	// Token supplies the bearer credential for replayed writes. May be nil.
	Token func() string

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Engine tunes the drain loop. Zero fields take defaults.
	Engine engine.Config
}

// Status is a point-in-time snapshot of the sync core, not a subscription.
type Status struct {
	LastSync        time.Time `json:"last_sync,omitzero"`
	IsOnline        bool      `json:"is_online"`
	PendingCount    int       `json:"pending_count"`
	FailedCount     int       `json:"failed_count"`
	ConflictCount   int       `json:"conflict_count"`
	ExceptionsCount int       `json:"exceptions_count"`
}

// Manager is the offline sync facade.
type Manager struct {
	store   Store
	queue   *queue.Queue
	engine  *engine.Engine
	ledger  *ledger.Ledger
	cache   *cache.Cache
	monitor *connectivity.Monitor
	bus     *events.Bus
	clock   *clock.Clock
	logger  *slog.Logger

	startOnce sync.Once
	runCtx    context.Context
	runCancel context.CancelFunc
}

// NewManager wires the sync core over the given store.
func NewManager(store Store, opts Options) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if opts.APIClient == nil {
		return nil, fmt.Errorf("api client is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	bus := events.NewBus(logger)
	clk := clock.New()

	m := &Manager{
		store:  store,
		bus:    bus,
		clock:  clk,
		logger: logger,
	}

	m.queue = queue.New(store, clk, bus, logger)
	m.ledger = ledger.New(store, store, bus, logger)
	m.cache = cache.New(store, logger)

	cfg := opts.Engine
	interval := cfg.AutoSyncInterval
	if interval <= 0 {
		interval = engine.DefaultConfig().AutoSyncInterval
	}
	m.monitor = connectivity.NewMonitor(opts.APIClient, bus, logger, interval, m.backgroundSync)

	m.engine = engine.New(
		store, store, opts.APIClient, m.ledger, bus, logger, cfg,
		m.monitor.IsOnline, opts.Token,
	)

	return m, nil
}

// Start seeds the logical clock from persisted operations and begins
// connectivity monitoring. Idempotent: a second call is a no-op, so the
// persistent schema is never recreated and the timer loop never doubles.
func (m *Manager) Start(ctx context.Context) error {
	var startErr error

	m.startOnce.Do(func() {
		maxTS, err := m.store.MaxOperationTimestamp(ctx)
		if err != nil {
			startErr = fmt.Errorf("failed to read max operation timestamp: %w", err)
			return
		}
		m.clock.Observe(maxTS)

		m.runCtx, m.runCancel = context.WithCancel(context.Background())
		m.monitor.Start(m.runCtx)
	})

	return startErr
}

// Close stops the background loops. In-flight network calls fail or finish
// on their own.
func (m *Manager) Close() {
	if m.runCancel != nil {
		m.runCancel()
	}
	m.monitor.Stop()
}

// backgroundSync is the drain trigger shared by the connectivity monitor and
// enqueue. Fire-and-forget; the engine's single-flight guard dedupes.
func (m *Manager) backgroundSync(ctx context.Context) {
	if _, err := m.engine.SyncPendingOperations(ctx); err != nil {
		m.logger.Error("background sync failed", "error", err)
	}
}

// Enqueue queues a mutation and, when online, kicks off a background drain.
// It returns the operation id as soon as the record is durably stored;
// callers never block on network completion.
func (m *Manager) Enqueue(ctx context.Context, opType models.OperationType, entity string, data map[string]any, tenantID, userID string) (string, error) {
	op, err := m.queue.Enqueue(ctx, opType, entity, data, tenantID, userID)
	if err != nil {
		return "", err
	}

	if m.monitor.IsOnline() && !m.engine.InProgress() {
		runCtx := m.runCtx
		if runCtx == nil {
			runCtx = context.Background()
		}
		go m.backgroundSync(runCtx)
	}

	return op.ID, nil
}

// ListOperations returns queued operations in ascending timestamp order,
// optionally filtered by tenant and status (conjunctive).
func (m *Manager) ListOperations(ctx context.Context, tenantID string, status models.OperationStatus) ([]*models.SyncOperation, error) {
	return m.queue.List(ctx, tenantID, status)
}

// RemoveOperation deletes an operation unconditionally.
func (m *Manager) RemoveOperation(ctx context.Context, id string) error {
	return m.queue.Remove(ctx, id)
}

// SyncPendingOperations triggers one drain and returns its summary.
func (m *Manager) SyncPendingOperations(ctx context.Context) (*engine.Summary, error) {
	return m.engine.SyncPendingOperations(ctx)
}

// ListExceptions returns exceptions, optionally filtered by resolved state.
func (m *Manager) ListExceptions(ctx context.Context, resolved *bool) ([]*models.SyncException, error) {
	return m.ledger.List(ctx, resolved)
}

// ResolveException applies a human resolution to an exception.
func (m *Manager) ResolveException(ctx context.Context, exceptionID string, resolution models.ResolutionType, resolvedBy string) error {
	return m.ledger.Resolve(ctx, exceptionID, resolution, resolvedBy)
}

// CacheData stores an optimistic snapshot for offline reads.
func (m *Manager) CacheData(ctx context.Context, entity string, data map[string]any, tenantID string) error {
	return m.cache.Put(ctx, entity, data, tenantID)
}

// GetCachedData returns all cached snapshots for an entity and tenant.
func (m *Manager) GetCachedData(ctx context.Context, entity, tenantID string) ([]map[string]any, error) {
	return m.cache.GetAll(ctx, entity, tenantID)
}

// GetCachedItem returns one cached snapshot.
func (m *Manager) GetCachedItem(ctx context.Context, entity, localID string) (map[string]any, error) {
	return m.cache.GetOne(ctx, entity, localID)
}

// ClearCache removes cached snapshots, optionally scoped by entity and tenant.
func (m *Manager) ClearCache(ctx context.Context, entity, tenantID string) error {
	return m.cache.Clear(ctx, entity, tenantID)
}

// SetOnline overrides the connectivity state for hosts with their own
// platform signal.
func (m *Manager) SetOnline(ctx context.Context, online bool) {
	m.monitor.SetOnline(ctx, online)
}

// IsOnline reports the last observed connectivity state.
func (m *Manager) IsOnline() bool {
	return m.monitor.IsOnline()
}

// Subscribe registers an event handler and returns its unsubscribe function.
func (m *Manager) Subscribe(event events.Event, h events.Handler) func() {
	return m.bus.Subscribe(event, h)
}

// GetStatus assembles the ambient status surfaced by the UI.
func (m *Manager) GetStatus(ctx context.Context) (*Status, error) {
	status := &Status{IsOnline: m.monitor.IsOnline()}

	for _, s := range []struct {
		status models.OperationStatus
		count  *int
	}{
		{models.StatusPending, &status.PendingCount},
		{models.StatusFailed, &status.FailedCount},
		{models.StatusConflict, &status.ConflictCount},
	} {
		ops, err := m.store.ListOperations(ctx, storage.OperationFilter{Status: s.status})
		if err != nil {
			return nil, fmt.Errorf("failed to count %s operations: %w", s.status, err)
		}
		*s.count = len(ops)
	}

	unresolved := false
	excs, err := m.store.ListExceptions(ctx, &unresolved)
	if err != nil {
		return nil, fmt.Errorf("failed to count exceptions: %w", err)
	}
	status.ExceptionsCount = len(excs)

	state, err := m.store.GetSyncState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read sync state: %w", err)
	}
	status.LastSync = state.LastSync

	return status, nil
}
