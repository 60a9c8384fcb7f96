package config

import (
	"path/filepath"
)

// Config represents the complete pricefeedd configuration
type Config struct {
	Server   ServerConfig   `toml:"server" mapstructure:"server"`
	Database DatabaseConfig `toml:"database" mapstructure:"database"`
	Feed     FeedConfig     `toml:"feed" mapstructure:"feed"`
	Log      LogConfig      `toml:"log" mapstructure:"log"`

	configPath string
}

// ConfigPath returns the file the configuration was read from, if any.
func (c *Config) ConfigPath() string {
	return c.configPath
}

// ConfigDir returns the directory holding the configuration file.
func (c *Config) ConfigDir() string {
	if c.configPath == "" {
		return "."
	}
	return filepath.Dir(c.configPath)
}

// ResolvePath resolves p relative to the configuration directory.
func (c *Config) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.ConfigDir(), p)
}
