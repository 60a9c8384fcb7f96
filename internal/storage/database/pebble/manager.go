package pebble

import (
	"path/filepath"
	"sync"

	"github.com/LeJamon/goPriceFeed/internal/storage/database"
	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/pkg/errors"
)

type Manager struct {
	dbs  map[string]*pebble.DB
	path string
	fs   vfs.FS
	mu   sync.Mutex
}

func NewManager(path string) *Manager {
	return &Manager{
		dbs:  make(map[string]*pebble.DB),
		path: path,
	}
}

// NewMemManager returns a Manager whose databases live in memory.
func NewMemManager() *Manager {
	m := NewManager("")
	m.fs = vfs.NewMem()
	return m
}

func (m *Manager) OpenDB(name string) (database.DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if db, exists := m.dbs[name]; exists {
		return NewDB(db), nil // Already opened
	}

	opts := &pebble.Options{}
	if m.fs != nil {
		opts.FS = m.fs
	}

	db, err := pebble.Open(filepath.Join(m.path, name+".db"), opts)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database %s", name)
	}

	m.dbs[name] = db
	return NewDB(db), nil
}

func (m *Manager) CloseDB(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	db, exists := m.dbs[name]
	if !exists {
		return errors.Wrap(database.ErrNamespaceNotFound, name)
	}

	delete(m.dbs, name)
	return db.Close()
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var lastErr error
	for name, db := range m.dbs {
		if err := db.Close(); err != nil {
			lastErr = errors.Wrapf(err, "failed to close database %s", name)
		}
		delete(m.dbs, name)
	}
	return lastErr
}
