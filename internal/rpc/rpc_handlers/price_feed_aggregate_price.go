package rpc_handlers

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/LeJamon/goPriceFeed/internal/feed"
	"github.com/LeJamon/goPriceFeed/internal/rpc/rpc_types"
	"github.com/shopspring/decimal"
)

const (
	defaultAggregateCount = 20
	maxAggregateCount     = 200
	maxAggregateTrim      = 25
)

// PriceFeedAggregatePriceMethod handles the price_feed_aggregate_price RPC
// method: statistics over the most recent records of a pair.
type PriceFeedAggregatePriceMethod struct {
	Services *rpc_types.ServiceContainer
}

func (m *PriceFeedAggregatePriceMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		rpc_types.PairParams
		At             *rpc_types.BlockIndex `json:"at,omitempty"`
		Count          *int                  `json:"count,omitempty"`
		Trim           uint32                `json:"trim,omitempty"`
		BlockThreshold uint32                `json:"block_threshold,omitempty"`
	}

	if params != nil {
		if err := json.Unmarshal(params, &request); err != nil {
			return nil, rpc_types.RpcErrorInvalidParams("Invalid parameters: " + err.Error())
		}
	}

	count := defaultAggregateCount
	if request.Count != nil {
		count = *request.Count
	}
	if count < 1 || count > maxAggregateCount {
		return nil, rpc_types.RpcErrorInvalidParams("count must be between 1 and 200")
	}
	if request.Trim > maxAggregateTrim {
		return nil, rpc_types.RpcErrorInvalidParams("trim must be between 0 and 25")
	}

	svc, rpcErr := feedService(m.Services)
	if rpcErr != nil {
		return nil, rpcErr
	}
	pair, rpcErr := resolvePair(svc, request.PairParams)
	if rpcErr != nil {
		return nil, rpcErr
	}

	at := feed.BlockNumber(math.MaxUint32)
	if request.At != nil {
		at = feed.BlockNumber(*request.At)
	}
	recs, err := svc.History(ctx.Context, pair, at, count)
	if err != nil {
		return nil, rpc_types.RpcErrorRuntime(err)
	}
	if len(recs) == 0 {
		return nil, rpc_types.RpcErrorObjectNotFound("No price data found")
	}

	// Records are newest first.
	latest := recs[0].BlockNumber()
	if request.BlockThreshold > 0 {
		var threshold feed.BlockNumber
		if latest > request.BlockThreshold {
			threshold = latest - request.BlockThreshold
		}
		filtered := recs[:0]
		for _, rec := range recs {
			if rec.BlockNumber() >= threshold {
				filtered = append(filtered, rec)
			}
		}
		recs = filtered
	}

	prices := make([]decimal.Decimal, len(recs))
	for i, rec := range recs {
		prices[i] = rec.Decimal()
	}
	sort.Slice(prices, func(i, j int) bool {
		return prices[i].LessThan(prices[j])
	})

	response := &rpc_types.AggregatePriceResponse{
		Pair:        pair,
		BlockNumber: latest,
		EntireSet:   calculateStats(prices),
		Median:      calculateMedian(prices).String(),
	}

	if request.Trim > 0 && len(prices) > 2 {
		trimCount := len(prices) * int(request.Trim) / 100
		if trimCount > 0 && len(prices) > 2*trimCount {
			trimmed := calculateStats(prices[trimCount : len(prices)-trimCount])
			response.TrimmedSet = &trimmed
		}
	}

	return response, nil
}

// calculateStats calculates mean and sample standard deviation of prices
func calculateStats(prices []decimal.Decimal) rpc_types.SetStats {
	stats := rpc_types.SetStats{Size: len(prices), Mean: "0", StandardDeviation: "0"}
	if len(prices) == 0 {
		return stats
	}

	n := decimal.NewFromInt(int64(len(prices)))
	mean := decimal.Sum(decimal.Zero, prices...).Div(n)
	stats.Mean = mean.String()

	if len(prices) > 1 {
		variance := decimal.Zero
		for _, p := range prices {
			diff := p.Sub(mean)
			variance = variance.Add(diff.Mul(diff))
		}
		variance = variance.Div(n.Sub(decimal.NewFromInt(1)))
		stats.StandardDeviation = decimal.NewFromFloat(math.Sqrt(variance.InexactFloat64())).String()
	}

	return stats
}

// calculateMedian calculates the median of sorted prices
func calculateMedian(prices []decimal.Decimal) decimal.Decimal {
	n := len(prices)
	if n == 0 {
		return decimal.Zero
	}

	if n%2 == 0 {
		return prices[n/2-1].Add(prices[n/2]).Div(decimal.NewFromInt(2))
	}
	return prices[n/2]
}

func (m *PriceFeedAggregatePriceMethod) RequiredRole() rpc_types.Role {
	return rpc_types.RoleGuest
}

func (m *PriceFeedAggregatePriceMethod) SupportedApiVersions() []int {
	return rpc_types.SupportedApiVersions
}
