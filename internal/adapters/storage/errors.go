package storage

import (
	"errors"
	"fmt"
)

// Common storage error types
var (
	ErrAssetNotFound      = errors.New("asset not found")
	ErrInvalidKey         = errors.New("invalid asset key")
	ErrNotADirectory      = errors.New("not a directory")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrTimeout            = errors.New("operation timeout")
)

// StorageError represents a storage operation error with additional context
type StorageError struct {
	Op        string // Operation that failed (e.g., "Retrieve", "List")
	Key       string // Asset key involved in the operation
	Err       error  // Underlying error
	Retryable bool   // Whether the operation can be retried
}

func (e *StorageError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("storage %s operation failed for key '%s': %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("storage %s operation failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError creates a new StorageError
func NewStorageError(op, key string, err error, retryable bool) *StorageError {
	return &StorageError{
		Op:        op,
		Key:       key,
		Err:       err,
		Retryable: retryable,
	}
}

// IsNotFound returns true if the error indicates an asset was not found
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAssetNotFound)
}

// IsRetryable returns true if the error indicates a retryable condition
func IsRetryable(err error) bool {
	var storageErr *StorageError
	if errors.As(err, &storageErr) {
		return storageErr.Retryable
	}

	return errors.Is(err, ErrStorageUnavailable) ||
		errors.Is(err, ErrTimeout)
}
