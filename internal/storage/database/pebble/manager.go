package pebble

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"

	"github.com/LeJamon/goMIXR/internal/storage/database"
)

type Manager struct {
	dbs  map[string]*DB
	path string
	fs   vfs.FS
	mu   sync.Mutex
}

func NewManager(path string) *Manager {
	return &Manager{
		dbs:  make(map[string]*DB),
		path: path,
	}
}

// NewMemManager keeps every database in memory. Contents are lost on
// Close.
func NewMemManager() *Manager {
	m := NewManager("")
	m.fs = vfs.NewMem()
	return m
}

func (m *Manager) OpenDB(name string) (database.DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if db, exists := m.dbs[name]; exists {
		return db, nil
	}

	opts := &pebble.Options{}
	if m.fs != nil {
		opts.FS = m.fs
	}

	db, err := pebble.Open(filepath.Join(m.path, name+".db"), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", name, err)
	}

	m.dbs[name] = NewDB(db)
	return m.dbs[name], nil
}

func (m *Manager) CloseDB(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	db, exists := m.dbs[name]
	if !exists {
		return fmt.Errorf("%w: %s", database.ErrNamespaceNotFound, name)
	}
	delete(m.dbs, name)
	return db.close()
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var lastErr error
	for name, db := range m.dbs {
		if err := db.close(); err != nil {
			lastErr = fmt.Errorf("failed to close database %s: %w", name, err)
		}
		delete(m.dbs, name)
	}
	return lastErr
}
