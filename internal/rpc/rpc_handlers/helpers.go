package rpc_handlers

import (
	"github.com/LeJamon/goPriceFeed/internal/core/currency"
	"github.com/LeJamon/goPriceFeed/internal/feed"
	"github.com/LeJamon/goPriceFeed/internal/rpc/rpc_types"
)

func feedService(s *rpc_types.ServiceContainer) (rpc_types.FeedService, *rpc_types.RpcError) {
	if s == nil || s.Feed == nil {
		return nil, rpc_types.RpcErrorInternal("Price feed not available")
	}
	return s.Feed, nil
}

// priceRequest selects a record: the latest one, or the newest one at
// or before At. Omitting both symbols selects the configured bound pair.
type priceRequest struct {
	rpc_types.PairParams
	At *rpc_types.BlockIndex `json:"at,omitempty"`
}

// resolvePair returns the pair named by p, or the bound pair when p
// names none.
func resolvePair(svc rpc_types.FeedService, p rpc_types.PairParams) (currency.Pair[string, string], *rpc_types.RpcError) {
	if p.From == "" && p.To == "" {
		static, err := svc.Static()
		if err != nil {
			return currency.Pair[string, string]{}, rpc_types.RpcErrorMissingField("from")
		}
		return static.Pair(), nil
	}
	return p.Pair()
}

func lookupPrice(
	ctx *rpc_types.RpcContext,
	svc rpc_types.FeedService,
	req priceRequest,
) (currency.Pair[string, string], *feed.Record, *rpc_types.RpcError) {
	pair, rpcErr := resolvePair(svc, req.PairParams)
	if rpcErr != nil {
		return pair, nil, rpcErr
	}

	var (
		rec *feed.Record
		err error
	)
	switch {
	case req.From == "" && req.To == "" && req.At == nil:
		static, _ := svc.Static()
		rec, err = static.Price(ctx.Context)
	case req.At != nil:
		rec, err = svc.PriceAt(ctx.Context, pair, feed.BlockNumber(*req.At))
	default:
		rec, err = svc.PairPrice(ctx.Context, pair)
	}
	if err != nil {
		return pair, nil, rpc_types.RpcErrorRuntime(err)
	}
	return pair, rec, nil
}
