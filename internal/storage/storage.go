// Package storage selects a key/value backend by name.
package storage

import (
	"fmt"
	"os"

	"github.com/LeJamon/goMIXR/internal/storage/database"
	"github.com/LeJamon/goMIXR/internal/storage/database/bbolt"
	"github.com/LeJamon/goMIXR/internal/storage/database/leveldb"
	"github.com/LeJamon/goMIXR/internal/storage/database/pebble"
)

const (
	BackendPebble  = "pebble"
	BackendLevelDB = "leveldb"
	BackendBBolt   = "bbolt"
	BackendMemory  = "memory"
)

// Backends lists the accepted backend names.
var Backends = []string{BackendPebble, BackendLevelDB, BackendBBolt, BackendMemory}

// OpenManager returns a manager for backend rooted at dir. dir is created
// if needed and ignored for the memory backend.
func OpenManager(backend, dir string) (database.Manager, error) {
	if backend == BackendMemory {
		return pebble.NewMemManager(), nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	switch backend {
	case BackendPebble:
		return pebble.NewManager(dir), nil
	case BackendLevelDB:
		return leveldb.NewManager(dir), nil
	case BackendBBolt:
		return bbolt.NewManager(dir), nil
	default:
		return nil, fmt.Errorf("%w: %q", database.ErrUnknownBackend, backend)
	}
}
