package rpc_handlers

import (
	"encoding/json"

	"github.com/LeJamon/goPriceFeed/internal/feed"
	"github.com/LeJamon/goPriceFeed/internal/rpc/rpc_types"
)

// PriceFeedSetPriceMethod handles the price_feed_set_price RPC method.
// It publishes a price for a pair at a block and is restricted to
// admin clients.
type PriceFeedSetPriceMethod struct {
	Services *rpc_types.ServiceContainer
}

func (m *PriceFeedSetPriceMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		rpc_types.PairParams
		Amount      *uint64               `json:"amount"`
		Decimals    uint8                 `json:"decimals"`
		BlockNumber *rpc_types.BlockIndex `json:"block_number"`
	}
	if params != nil {
		if err := json.Unmarshal(params, &request); err != nil {
			return nil, rpc_types.RpcErrorInvalidParams("Invalid parameters: " + err.Error())
		}
	}

	pair, rpcErr := request.Pair()
	if rpcErr != nil {
		return nil, rpcErr
	}
	if request.Amount == nil {
		return nil, rpc_types.RpcErrorMissingField("amount")
	}
	if request.BlockNumber == nil {
		return nil, rpc_types.RpcErrorMissingField("block_number")
	}

	svc, rpcErr := feedService(m.Services)
	if rpcErr != nil {
		return nil, rpcErr
	}

	rec, err := svc.SetPrice(ctx.Context, pair, *request.Amount, request.Decimals, feed.BlockNumber(*request.BlockNumber))
	if err != nil {
		return nil, rpc_types.RpcErrorRuntime(err)
	}

	return &rpc_types.PriceResponse{
		Pair:  pair,
		Price: rpc_types.NewPriceResultOrNil(&rec),
	}, nil
}

func (m *PriceFeedSetPriceMethod) RequiredRole() rpc_types.Role {
	return rpc_types.RoleAdmin
}

func (m *PriceFeedSetPriceMethod) SupportedApiVersions() []int {
	return rpc_types.SupportedApiVersions
}
