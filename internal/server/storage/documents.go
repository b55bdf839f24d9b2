package storage

import (
	"context"
	"errors"
	"time"
)

// Common server storage errors
var (
	// ErrDocumentNotFound indicates that no document exists for the key
	ErrDocumentNotFound = errors.New("document not found")

	// ErrDocumentExists indicates that a document already exists for the key
	ErrDocumentExists = errors.New("document already exists")
)

// Document is one business record held by the stub backend, keyed by
// tenant, entity kind and document id.
type Document struct {
	CreatedAt       time.Time
	UpdatedAt       time.Time
	TenantID        string
	Entity          string
	DocID           string
	Payload         []byte // the record body as JSON
	Version         int64  // bumped on every accepted write
	ClientTimestamp int64  // original client timestamp of the accepted write
}

// DocumentStorage defines document persistence for the stub backend.
type DocumentStorage interface {
	// CreateDocument inserts a new document.
	// Returns ErrDocumentExists if the key is taken.
	CreateDocument(ctx context.Context, doc *Document) error

	// GetDocument retrieves a document by key.
	// Returns ErrDocumentNotFound if it doesn't exist.
	GetDocument(ctx context.Context, tenantID, entity, docID string) (*Document, error)

	// UpdateDocument replaces a document's payload, bumping its version.
	// Returns ErrDocumentNotFound if it doesn't exist.
	UpdateDocument(ctx context.Context, doc *Document) error

	// DeleteDocument removes a document. Deleting a missing document is
	// not an error so replayed deletes stay idempotent.
	DeleteDocument(ctx context.Context, tenantID, entity, docID string) error
}
