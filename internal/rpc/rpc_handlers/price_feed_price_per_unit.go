package rpc_handlers

import (
	"encoding/json"
	"math/big"

	"github.com/LeJamon/goPriceFeed/internal/rpc/rpc_types"
)

// PriceFeedPricePerUnitMethod handles the price_feed_price_per_unit RPC
// method: the price of unit_amount units of from, expressed in the
// smallest unit of to.
type PriceFeedPricePerUnitMethod struct {
	Services *rpc_types.ServiceContainer
}

func (m *PriceFeedPricePerUnitMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		priceRequest
		UnitAmount string `json:"unit_amount"`
		RoundUp    bool   `json:"round_up,omitempty"`
	}
	if params != nil {
		if err := json.Unmarshal(params, &request); err != nil {
			return nil, rpc_types.RpcErrorInvalidParams("Invalid parameters: " + err.Error())
		}
	}

	if request.UnitAmount == "" {
		return nil, rpc_types.RpcErrorMissingField("unit_amount")
	}
	unit, ok := new(big.Int).SetString(request.UnitAmount, 10)
	if !ok || unit.Sign() < 0 {
		return nil, rpc_types.RpcErrorInvalidField("unit_amount")
	}

	svc, rpcErr := feedService(m.Services)
	if rpcErr != nil {
		return nil, rpcErr
	}

	pair, rec, rpcErr := lookupPrice(ctx, svc, request.priceRequest)
	if rpcErr != nil {
		return nil, rpcErr
	}

	response := &rpc_types.PricePerUnitResponse{
		PriceResponse: rpc_types.PriceResponse{
			Pair:  pair,
			Price: rpc_types.NewPriceResultOrNil(rec),
		},
		UnitAmount: unit.String(),
	}
	if rec == nil {
		return response, nil
	}

	compute := rec.PricePerUnitBig
	if request.RoundUp {
		compute = rec.PricePerUnitBigCeil
	}
	perUnit, ok := compute(unit)
	if !ok {
		return nil, rpc_types.NewRpcError(rpc_types.RpcGENERAL, "runtimeError", "runtimeError",
			"Price per unit overflows 256 bits")
	}
	rendered := perUnit.String()
	response.PricePerUnit = &rendered

	return response, nil
}

func (m *PriceFeedPricePerUnitMethod) RequiredRole() rpc_types.Role {
	return rpc_types.RoleGuest
}

func (m *PriceFeedPricePerUnitMethod) SupportedApiVersions() []int {
	return rpc_types.SupportedApiVersions
}
