// Package connectivity tracks online/offline transitions and drives the
// periodic background drain.
package connectivity

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/iudanet/possync/internal/events"
)

// Prober is the connectivity signal: anything that can answer "is the
// backend reachable right now". The API client's health check implements it.
type Prober interface {
	Ping(ctx context.Context) error
}

// Monitor mirrors the backend's reachability into an isOnline flag, emits
// online/offline transitions and invokes the drain callback on every tick
// while online. Overlapping drains are prevented by the engine's
// single-flight guarantee, not here.
type Monitor struct {
	probe    Prober
	bus      *events.Bus
	logger   *slog.Logger
	interval time.Duration
	onSync   func(ctx context.Context)

	online  atomic.Bool
	mu      sync.Mutex
	stopCh  chan struct{}
	started bool
}

// NewMonitor creates a monitor. onSync is the drain entry point invoked on
// online transitions and on every periodic tick; it may be nil.
func NewMonitor(probe Prober, bus *events.Bus, logger *slog.Logger, interval time.Duration, onSync func(ctx context.Context)) *Monitor {
	return &Monitor{
		probe:    probe,
		bus:      bus,
		logger:   logger,
		interval: interval,
		onSync:   onSync,
		stopCh:   make(chan struct{}),
	}
}

// Start begins probing. Idempotent: calling it again while running does not
// double-register the timer loop.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.mu.Unlock()

	// Initial probe so the first drain doesn't wait a full interval.
	m.probeAndTransition(ctx)

	go m.loop(ctx)
}

// Stop ends the periodic loop. In-flight work is allowed to finish on its
// own; there is no cancellation of a running drain.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.started {
		return
	}
	m.started = false
	close(m.stopCh)
	m.stopCh = make(chan struct{})
}

// IsOnline reports the last observed connectivity state.
func (m *Monitor) IsOnline() bool {
	return m.online.Load()
}

// SetOnline overrides the connectivity state for callers that have their own
// platform signal (or tests). Transitions emit events and trigger a drain
// exactly like probe results do.
func (m *Monitor) SetOnline(ctx context.Context, online bool) {
	m.transition(ctx, online)
}

func (m *Monitor) loop(ctx context.Context) {
	m.mu.Lock()
	stopCh := m.stopCh
	m.mu.Unlock()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.probeAndTransition(ctx)
			if m.online.Load() && m.onSync != nil {
				m.onSync(ctx)
			}
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// probeAndTransition checks reachability. Transient probe hiccups are
// retried with a short exponential backoff before declaring offline.
func (m *Monitor) probeAndTransition(ctx context.Context) {
	backoff := retry.WithMaxRetries(2, retry.NewExponential(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := m.probe.Ping(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})

	m.transition(ctx, err == nil)
}

// transition flips the online flag on edges only, emitting the matching
// event. Coming online triggers one immediate drain.
func (m *Monitor) transition(ctx context.Context, online bool) {
	previous := m.online.Swap(online)
	if previous == online {
		return
	}

	if online {
		m.logger.Info("connectivity restored")
		m.bus.Emit(events.Online, nil)
		if m.onSync != nil {
			go m.onSync(ctx)
		}
		return
	}

	m.logger.Warn("connectivity lost")
	m.bus.Emit(events.Offline, nil)
}
