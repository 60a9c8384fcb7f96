package rpc_handlers

import (
	"encoding/json"

	"github.com/LeJamon/goPriceFeed/internal/rpc/rpc_types"
)

// PriceFeedPriceMethod handles the price_feed_price RPC method.
// It returns the latest price of a pair, or the price in effect at a
// given block when "at" is set. A pair with no price yields "price": null.
type PriceFeedPriceMethod struct {
	Services *rpc_types.ServiceContainer
}

func (m *PriceFeedPriceMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request priceRequest
	if params != nil {
		if err := json.Unmarshal(params, &request); err != nil {
			return nil, rpc_types.RpcErrorInvalidParams("Invalid parameters: " + err.Error())
		}
	}

	svc, rpcErr := feedService(m.Services)
	if rpcErr != nil {
		return nil, rpcErr
	}

	pair, rec, rpcErr := lookupPrice(ctx, svc, request)
	if rpcErr != nil {
		return nil, rpcErr
	}

	return &rpc_types.PriceResponse{
		Pair:  pair,
		Price: rpc_types.NewPriceResultOrNil(rec),
	}, nil
}

func (m *PriceFeedPriceMethod) RequiredRole() rpc_types.Role {
	return rpc_types.RoleGuest
}

func (m *PriceFeedPriceMethod) SupportedApiVersions() []int {
	return rpc_types.SupportedApiVersions
}
