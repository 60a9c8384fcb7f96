package config

import (
	"fmt"

	"github.com/LeJamon/goPriceFeed/internal/core/currency"
)

// FeedConfig represents the [feed] section
type FeedConfig struct {
	CacheSize int    `toml:"cache_size" mapstructure:"cache_size"` // Latest-price cache entries
	BoundPair string `toml:"bound_pair" mapstructure:"bound_pair"` // Optional FROM/TO served by the static provider
}

// Validate performs validation on the feed configuration. The symbol
// length of bound_pair is checked when the feed is built.
func (f *FeedConfig) Validate() error {
	if f.CacheSize < 0 {
		return fmt.Errorf("cache_size must be non-negative, got %d", f.CacheSize)
	}
	if f.BoundPair != "" {
		if _, err := currency.ParsePair(f.BoundPair); err != nil {
			return fmt.Errorf("invalid bound_pair: %w", err)
		}
	}
	return nil
}
