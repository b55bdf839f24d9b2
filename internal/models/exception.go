package models

import "time"

// ExceptionType classifies why an operation needed human attention.
type ExceptionType string

const (
	ExceptionConflict   ExceptionType = "conflict"   // 409, concurrent modification
	ExceptionValidation ExceptionType = "validation" // payload rejected before business logic
	ExceptionNetwork    ExceptionType = "network"    // transport failure, no response received
	ExceptionServer     ExceptionType = "server"     // non-409 HTTP error with a response
	ExceptionUnknown    ExceptionType = "unknown"
)

// ResolutionType is the human decision applied to an exception.
type ResolutionType string

const (
	ResolutionUseLocal  ResolutionType = "use_local"  // retry the local mutation with force-overwrite
	ResolutionUseServer ResolutionType = "use_server" // server wins, drop the local mutation
	ResolutionMerge     ResolutionType = "merge"      // currently identical to use_local
	ResolutionDiscard   ResolutionType = "discard"    // abandon the mutation
)

// ValidResolution reports whether r is one of the four known resolutions.
func ValidResolution(r ResolutionType) bool {
	switch r {
	case ResolutionUseLocal, ResolutionUseServer, ResolutionMerge, ResolutionDiscard:
		return true
	}
	return false
}

// SyncException is a persisted, human-actionable record of an operation that
// could not be silently resolved. The referenced operation stays owned by the
// queue; OperationID is a non-owning back-reference.
type SyncException struct {
	CreatedAt      time.Time      `json:"created_at"`
	ResolvedAt     time.Time      `json:"resolved_at,omitzero"`
	Details        map[string]any `json:"details,omitempty"`     // structured diagnostics
	LocalData      map[string]any `json:"local_data"`            // what the client attempted to send
	ServerData     map[string]any `json:"server_data,omitempty"` // server's conflicting state, if any
	ID             string         `json:"id"`
	OperationID    string         `json:"operation_id"`
	Type           ExceptionType  `json:"type"`
	Message        string         `json:"message"`
	ResolutionType ResolutionType `json:"resolution_type,omitempty"`
	ResolvedBy     string         `json:"resolved_by,omitempty"`
	Timestamp      int64          `json:"timestamp"`
	Resolved       bool           `json:"resolved"` // flips false -> true exactly once
}

// Clone creates a deep copy of the exception.
func (e *SyncException) Clone() *SyncException {
	clone := *e
	clone.Details = cloneMap(e.Details)
	clone.LocalData = cloneMap(e.LocalData)
	clone.ServerData = cloneMap(e.ServerData)
	return &clone
}
