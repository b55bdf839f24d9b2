package models

import "time"

// OperationType identifies the kind of mutation queued against the remote backend.
type OperationType string

const (
	OperationCreate OperationType = "create"
	OperationUpdate OperationType = "update"
	OperationDelete OperationType = "delete"
)

// OperationStatus is the sync lifecycle state of a queued operation.
// Transitions: pending -> syncing -> {synced | failed | conflict}.
// failed loops back to syncing on a later drain while the retry budget lasts.
type OperationStatus string

const (
	StatusPending  OperationStatus = "pending"
	StatusSyncing  OperationStatus = "syncing"
	StatusSynced   OperationStatus = "synced"
	StatusFailed   OperationStatus = "failed"
	StatusConflict OperationStatus = "conflict"
)

// ForceOverwriteKey marks a replayed payload so the backend overwrites its
// own copy instead of applying its conflict policy. Set by the resolver on
// use_local / merge resolutions.
const ForceOverwriteKey = "_forceOverwrite"

// SyncOperation is a pending mutation against a remote entity. It is created
// by the queue, driven through its status transitions by the sync engine, and
// removed only when a resolution explicitly discards it.
type SyncOperation struct {
	CreatedAt    time.Time      `json:"created_at"`
	LastAttempt  time.Time      `json:"last_attempt,omitzero"` // time of the most recent sync attempt
	Data         map[string]any `json:"data"`                  // mutation body sent to the backend
	ConflictData map[string]any `json:"conflict_data,omitempty"`
	ID           string         `json:"id"`        // client-generated UUID, immutable
	Type         OperationType  `json:"type"`      // create, update or delete
	Entity       string         `json:"entity"`    // remote resource kind, e.g. "invoice"
	Status       OperationStatus `json:"status"`
	Error        string         `json:"error,omitempty"` // last failure message
	TenantID     string         `json:"tenant_id"`
	UserID       string         `json:"user_id,omitempty"`
	LocalID      string         `json:"local_id"`  // client-assigned id of the affected record
	ServerID     string         `json:"server_id,omitempty"` // assigned once the server accepts the operation
	Timestamp    int64          `json:"timestamp"` // logical clock value, drives FIFO ordering
	Attempts     int            `json:"attempts"`  // sync attempts made so far
}

// Terminal reports whether the operation will never be retried by the engine
// on its own: synced is final, conflict waits for a human resolution.
func (o *SyncOperation) Terminal() bool {
	return o.Status == StatusSynced || o.Status == StatusConflict
}

// Clone creates a deep copy of the operation. Event payloads are clones so
// listeners cannot mutate queue state.
func (o *SyncOperation) Clone() *SyncOperation {
	clone := *o
	clone.Data = cloneMap(o.Data)
	clone.ConflictData = cloneMap(o.ConflictData)
	return &clone
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
