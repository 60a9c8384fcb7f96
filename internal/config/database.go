package config

import (
	"fmt"
	"slices"
	"strings"
)

// Database backends accepted in [database] type.
const (
	DatabasePebble  = "pebble"
	DatabaseLevelDB = "leveldb"
	DatabaseBBolt   = "bbolt"
	DatabaseMemory  = "memory"
)

// DatabaseConfig represents the [database] section
type DatabaseConfig struct {
	Type string `toml:"type" mapstructure:"type"`
	Path string `toml:"path" mapstructure:"path"`
	Name string `toml:"name" mapstructure:"name"`
}

// Validate performs validation on the database configuration
func (d *DatabaseConfig) Validate() error {
	validTypes := []string{DatabasePebble, DatabaseLevelDB, DatabaseBBolt, DatabaseMemory}
	if !slices.Contains(validTypes, strings.ToLower(d.Type)) {
		return fmt.Errorf("invalid database type: %s (valid options: %s)", d.Type, strings.Join(validTypes, ", "))
	}
	if d.Name == "" {
		return fmt.Errorf("database name is required")
	}
	if d.Path == "" && !strings.EqualFold(d.Type, DatabaseMemory) {
		return fmt.Errorf("database path is required for %s", d.Type)
	}
	return nil
}
