package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/possync/internal/server/storage"
)

// CreateDocument inserts a new document
// Returns ErrDocumentExists if the key is taken
func (s *Storage) CreateDocument(ctx context.Context, doc *storage.Document) error {
	existing, err := s.GetDocument(ctx, doc.TenantID, doc.Entity, doc.DocID)
	if err != nil && !errors.Is(err, storage.ErrDocumentNotFound) {
		return fmt.Errorf("failed to check existing document: %w", err)
	}
	if existing != nil {
		return storage.ErrDocumentExists
	}

	now := time.Now()
	query := `
		INSERT INTO documents (tenant_id, entity, doc_id, payload, version, client_timestamp, created_at, updated_at)
		VALUES (?, ?, ?, ?, 1, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		doc.TenantID,
		doc.Entity,
		doc.DocID,
		doc.Payload,
		doc.ClientTimestamp,
		now.Unix(),
		now.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}

	return nil
}

// GetDocument retrieves a document by key
func (s *Storage) GetDocument(ctx context.Context, tenantID, entity, docID string) (*storage.Document, error) {
	query := `
		SELECT tenant_id, entity, doc_id, payload, version, client_timestamp, created_at, updated_at
		FROM documents
		WHERE tenant_id = ? AND entity = ? AND doc_id = ?
	`

	var doc storage.Document
	var createdAt, updatedAt int64

	err := s.db.QueryRowContext(ctx, query, tenantID, entity, docID).Scan(
		&doc.TenantID,
		&doc.Entity,
		&doc.DocID,
		&doc.Payload,
		&doc.Version,
		&doc.ClientTimestamp,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	doc.CreatedAt = time.Unix(createdAt, 0)
	doc.UpdatedAt = time.Unix(updatedAt, 0)

	return &doc, nil
}

// UpdateDocument replaces a document's payload, bumping its version
func (s *Storage) UpdateDocument(ctx context.Context, doc *storage.Document) error {
	query := `
		UPDATE documents
		SET payload = ?, version = version + 1, client_timestamp = ?, updated_at = ?
		WHERE tenant_id = ? AND entity = ? AND doc_id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		doc.Payload,
		doc.ClientTimestamp,
		time.Now().Unix(),
		doc.TenantID,
		doc.Entity,
		doc.DocID,
	)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrDocumentNotFound
	}

	return nil
}

// DeleteDocument removes a document. Deleting a missing document is not an
// error so replayed deletes stay idempotent
func (s *Storage) DeleteDocument(ctx context.Context, tenantID, entity, docID string) error {
	query := `DELETE FROM documents WHERE tenant_id = ? AND entity = ? AND doc_id = ?`

	if _, err := s.db.ExecContext(ctx, query, tenantID, entity, docID); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	return nil
}
