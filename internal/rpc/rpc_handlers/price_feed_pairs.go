package rpc_handlers

import (
	"encoding/json"

	"github.com/LeJamon/goPriceFeed/internal/core/currency"
	"github.com/LeJamon/goPriceFeed/internal/rpc/rpc_types"
)

// PriceFeedPairsMethod handles the price_feed_pairs RPC method, listing
// every pair with at least one published price.
type PriceFeedPairsMethod struct {
	Services *rpc_types.ServiceContainer
}

func (m *PriceFeedPairsMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	svc, rpcErr := feedService(m.Services)
	if rpcErr != nil {
		return nil, rpcErr
	}

	pairs, err := svc.Pairs(ctx.Context)
	if err != nil {
		return nil, rpc_types.RpcErrorRuntime(err)
	}
	response := &rpc_types.PairsResponse{
		Pairs: make([]currency.Pair[string, string], 0, len(pairs)),
	}
	for _, key := range pairs {
		response.Pairs = append(response.Pairs, key.Unbound())
	}
	return response, nil
}

func (m *PriceFeedPairsMethod) RequiredRole() rpc_types.Role {
	return rpc_types.RoleGuest
}

func (m *PriceFeedPairsMethod) SupportedApiVersions() []int {
	return rpc_types.SupportedApiVersions
}
