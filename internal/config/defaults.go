package config

import "github.com/spf13/viper"

// setDefaults sets the default value of every setting
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.ip", "127.0.0.1")
	v.SetDefault("server.port", 5005)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.metrics", true)
	v.SetDefault("server.websocket", true)
	v.SetDefault("server.admin", []string{"127.0.0.1", "::1"})

	v.SetDefault("database.type", DatabasePebble)
	v.SetDefault("database.path", "data")
	v.SetDefault("database.name", "pricefeed")

	v.SetDefault("feed.cache_size", 1024)
	v.SetDefault("feed.bound_pair", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("log.output_paths", []string{"stderr"})
}

// Default returns the default configuration, with environment overrides
// applied.
func Default() (*Config, error) {
	return LoadConfig("")
}
