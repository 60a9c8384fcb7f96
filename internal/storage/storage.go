// Package storage opens the database backend selected in configuration.
package storage

import (
	"fmt"
	"strings"

	"github.com/LeJamon/goPriceFeed/internal/config"
	"github.com/LeJamon/goPriceFeed/internal/storage/database"
	"github.com/LeJamon/goPriceFeed/internal/storage/database/bbolt"
	"github.com/LeJamon/goPriceFeed/internal/storage/database/leveldb"
	"github.com/LeJamon/goPriceFeed/internal/storage/database/memory"
	"github.com/LeJamon/goPriceFeed/internal/storage/database/pebble"
)

// NewManager returns the database manager for cfg.Type. Relative paths
// are used as given.
func NewManager(cfg config.DatabaseConfig) (database.Manager, error) {
	switch strings.ToLower(cfg.Type) {
	case config.DatabasePebble:
		return pebble.NewManager(cfg.Path), nil
	case config.DatabaseLevelDB:
		return leveldb.NewManager(cfg.Path), nil
	case config.DatabaseBBolt:
		return bbolt.NewManager(cfg.Path), nil
	case config.DatabaseMemory:
		return memory.NewManager(), nil
	}
	return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
}

// Open returns the manager for cfg together with its named database.
func Open(cfg config.DatabaseConfig) (database.Manager, database.DB, error) {
	m, err := NewManager(cfg)
	if err != nil {
		return nil, nil, err
	}
	db, err := m.OpenDB(cfg.Name)
	if err != nil {
		_ = m.Close()
		return nil, nil, err
	}
	return m, db, nil
}
