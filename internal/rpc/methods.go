package rpc

import (
	"github.com/LeJamon/goPriceFeed/internal/rpc/rpc_handlers"
)

// registerAllMethods registers all RPC methods
// This function is called by NewServer to set up the complete method registry
func (s *Server) registerAllMethods() {
	// Server Information Methods
	s.registry.Register("ping", &rpc_handlers.PingMethod{})
	s.registry.Register("version", &rpc_handlers.VersionMethod{BuildVersion: BuildVersion})

	// Price Feed Methods
	s.registry.Register("price_feed_price", &rpc_handlers.PriceFeedPriceMethod{Services: s.services})
	s.registry.Register("price_feed_price_per_unit", &rpc_handlers.PriceFeedPricePerUnitMethod{Services: s.services})
	s.registry.Register("price_feed_aggregate_price", &rpc_handlers.PriceFeedAggregatePriceMethod{Services: s.services})
	s.registry.Register("price_feed_pairs", &rpc_handlers.PriceFeedPairsMethod{Services: s.services})

	// Admin Methods
	s.registry.Register("price_feed_set_price", &rpc_handlers.PriceFeedSetPriceMethod{Services: s.services})
	s.registry.Register("stop", &rpc_handlers.StopMethod{Stop: s.requestStop})
}
