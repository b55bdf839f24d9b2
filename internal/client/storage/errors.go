package storage

import "errors"

// Common client storage errors
var (
	// ErrOperationNotFound indicates that no sync operation exists for the id
	ErrOperationNotFound = errors.New("sync operation not found")

	// ErrExceptionNotFound indicates that no sync exception exists for the id
	ErrExceptionNotFound = errors.New("sync exception not found")

	// ErrCacheItemNotFound indicates that no cached snapshot exists for the key
	ErrCacheItemNotFound = errors.New("cached item not found")

	// ErrSessionNotFound indicates that no session has been saved yet
	ErrSessionNotFound = errors.New("session not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
