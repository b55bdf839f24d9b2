package models

import "time"

// CachedItem is the last-known snapshot of a remote entity, used for
// optimistic reads while offline. Overwritten whole on every write, never
// merged field-by-field.
type CachedItem struct {
	UpdatedAt time.Time      `json:"updated_at"`
	Data      map[string]any `json:"data"`
	Key       string         `json:"key"` // entity + ":" + local id
	Entity    string         `json:"entity"`
	LocalID   string         `json:"local_id"`
	TenantID  string         `json:"tenant_id"`
}

// SyncState answers "when did we last successfully talk to the server".
// A single record per store.
type SyncState struct {
	LastSync       time.Time `json:"last_sync,omitzero"`
	LastError      string    `json:"last_error,omitempty"`
	SyncInProgress bool      `json:"sync_in_progress"`
}

// Session holds the credential and tenant context supplied by the auth layer.
// Persisted locally so CLI invocations don't need every flag every time.
type Session struct {
	ServerURL string `json:"server_url"`
	TenantID  string `json:"tenant_id"`
	UserID    string `json:"user_id"`
	Token     string `json:"token"`
}
