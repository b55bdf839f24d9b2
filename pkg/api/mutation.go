// Package api defines the wire contract between the offline sync client and
// the ERP mutation endpoint.
package api

// Request headers carried on every replayed offline write. The backend uses
// them to scope the mutation to a tenant and to apply its own conflict policy
// against the original client timestamp.
const (
	HeaderTenantID        = "X-Tenant-ID"
	HeaderOfflineSync     = "X-Offline-Sync"
	HeaderClientTimestamp = "X-Client-Timestamp"
)

// MutationResponse is the body returned by the backend for a mutation.
// On success either ID or Name carries the server-assigned identifier.
// On a 409 Data carries the server's conflicting document. On other errors
// Detail or Message carries the failure description.
type MutationResponse struct {
	Data    map[string]any `json:"data,omitempty"`
	ID      string         `json:"id,omitempty"`
	Name    string         `json:"name,omitempty"`
	Message string         `json:"message,omitempty"`
	Detail  string         `json:"detail,omitempty"`
}

// ServerID returns the identifier assigned by the server, preferring ID
// over Name.
func (r *MutationResponse) ServerID() string {
	if r.ID != "" {
		return r.ID
	}
	return r.Name
}

// HealthResponse is returned by the backend's health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}
