// Package events provides the typed publish/subscribe bus consumed by the UI
// layer. All emissions are fire-and-forget notifications with no replay; a
// late subscriber misses past events.
package events

import (
	"log/slog"
	"slices"
	"sync"
)

// Event names the observable state changes of the sync core.
type Event string

const (
	Online            Event = "online"
	Offline           Event = "offline"
	SyncStarted       Event = "sync:started"
	SyncCompleted     Event = "sync:completed"
	OperationQueued   Event = "operation:queued"
	OperationSynced   Event = "operation:synced"
	OperationFailed   Event = "operation:failed"
	OperationConflict Event = "operation:conflict"
	OperationRemoved  Event = "operation:removed"
	ExceptionCreated  Event = "exception:created"
	ExceptionResolved Event = "exception:resolved"
)

// Handler receives an event payload. Payloads are deep copies; handlers may
// not assume they run on any particular goroutine.
type Handler func(payload any)

// Bus is a callback registry with unsubscribe support. A panicking handler
// does not prevent the remaining handlers from running.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Event]map[int]Handler
	next     int
	logger   *slog.Logger
}

// NewBus creates an event bus.
func NewBus(logger *slog.Logger) *Bus {
	return &Bus{
		handlers: make(map[Event]map[int]Handler),
		logger:   logger,
	}
}

// Subscribe registers a handler for event and returns its unsubscribe
// function. Unsubscribing twice is harmless.
func (b *Bus) Subscribe(event Event, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++

	if b.handlers[event] == nil {
		b.handlers[event] = make(map[int]Handler)
	}
	b.handlers[event][id] = h

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers[event], id)
	}
}

// Emit delivers payload to every handler subscribed to event, in
// registration order. Handler panics are recovered and logged so one failing
// listener cannot starve the others.
func (b *Bus) Emit(event Event, payload any) {
	b.mu.RLock()
	// Snapshot so handlers can subscribe/unsubscribe during delivery.
	snapshot := make([]Handler, 0, len(b.handlers[event]))
	ids := make([]int, 0, len(b.handlers[event]))
	for id := range b.handlers[event] {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		snapshot = append(snapshot, b.handlers[event][id])
	}
	b.mu.RUnlock()

	for _, h := range snapshot {
		b.call(event, h, payload)
	}
}

func (b *Bus) call(event Event, h Handler, payload any) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				"event", string(event),
				"panic", r)
		}
	}()
	h(payload)
}
