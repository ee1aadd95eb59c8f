package database

import (
	"errors"
	"fmt"
)

var (
	// ErrDBClosed is returned when trying to operate on a closed database
	ErrDBClosed = errors.New("database is closed")

	// ErrKeyNotFound is returned when a key doesn't exist in the database
	ErrKeyNotFound = errors.New("key not found")

	// ErrNamespaceNotFound is returned when a named database or bucket is
	// not open
	ErrNamespaceNotFound = errors.New("namespace not found")

	// ErrUnknownBatchOp is returned for a BatchOperation with an invalid type
	ErrUnknownBatchOp = errors.New("unknown batch operation type")

	// ErrUnknownBackend is returned by OpenManager for an unsupported backend
	ErrUnknownBackend = errors.New("unknown storage backend")
)

// UnknownBatchOp reports op's type.
func UnknownBatchOp(op BatchOperation) error {
	return fmt.Errorf("%w: %d", ErrUnknownBatchOp, op.Type)
}
