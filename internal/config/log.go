package config

import (
	"fmt"

	"go.uber.org/zap/zapcore"
)

// LogConfig represents the [log] section
type LogConfig struct {
	Level       string   `toml:"level" mapstructure:"level"`
	Development bool     `toml:"development" mapstructure:"development"`
	OutputPaths []string `toml:"output_paths" mapstructure:"output_paths"`
}

// Validate performs validation on the log configuration
func (l *LogConfig) Validate() error {
	if _, err := zapcore.ParseLevel(l.Level); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	return nil
}
