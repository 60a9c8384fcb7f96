package rpc_types

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/LeJamon/goPriceFeed/internal/core/currency"
	"github.com/LeJamon/goPriceFeed/internal/core/provider"
	"github.com/LeJamon/goPriceFeed/internal/feed"
)

// API Version constants
const (
	ApiVersion1       = 1
	ApiVersion2       = 2
	DefaultApiVersion = ApiVersion1
)

// SupportedApiVersions lists every version the server answers.
var SupportedApiVersions = []int{ApiVersion1, ApiVersion2}

// Role-based access control matching rippled
type Role int

const (
	RoleGuest Role = iota
	RoleUser
	RoleAdmin
)

// RPC Context contains request-specific information
type RpcContext struct {
	Context    context.Context
	Role       Role
	ApiVersion int
	IsAdmin    bool
	ClientIP   string
}

// Method handler interface - all RPC methods implement this
type MethodHandler interface {
	Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError)
	RequiredRole() Role
	SupportedApiVersions() []int
}

// Method registry for dynamic method registration
type MethodRegistry struct {
	methods map[string]MethodHandler
}

func NewMethodRegistry() *MethodRegistry {
	return &MethodRegistry{
		methods: make(map[string]MethodHandler),
	}
}

func (r *MethodRegistry) Register(name string, handler MethodHandler) {
	r.methods[name] = handler
}

func (r *MethodRegistry) Get(name string) (MethodHandler, bool) {
	handler, exists := r.methods[name]
	return handler, exists
}

// List returns the registered method names, sorted.
func (r *MethodRegistry) List() []string {
	methods := make([]string, 0, len(r.methods))
	for name := range r.methods {
		methods = append(methods, name)
	}
	sort.Strings(methods)
	return methods
}

// FeedService is the price feed as seen by RPC handlers.
type FeedService interface {
	PairPrice(ctx context.Context, pair currency.Pair[string, string]) (*feed.Record, error)
	PriceAt(ctx context.Context, pair currency.Pair[string, string], at feed.BlockNumber) (*feed.Record, error)
	History(ctx context.Context, pair currency.Pair[string, string], at feed.BlockNumber, limit int) ([]feed.Record, error)
	SetPrice(ctx context.Context, pair currency.Pair[string, string], amount uint64, decimals uint8, blockNumber feed.BlockNumber) (feed.Record, error)
	Pairs(ctx context.Context) ([]feed.Key, error)
	Static() (*provider.StaticPriceProvider[feed.BlockNumber], error)
}

// ServiceContainer holds references to all services needed by RPC handlers
type ServiceContainer struct {
	Feed FeedService
}

// BlockIndex is a block number that can be unmarshaled from either a JSON
// number or a numeric string, as ledger_index is in the XRPL API.
type BlockIndex uint32

// UnmarshalJSON implements custom unmarshaling for BlockIndex
func (b *BlockIndex) UnmarshalJSON(data []byte) error {
	var numVal uint32
	if err := json.Unmarshal(data, &numVal); err == nil {
		*b = BlockIndex(numVal)
		return nil
	}

	var strVal string
	if err := json.Unmarshal(data, &strVal); err == nil {
		parsed, err := strconv.ParseUint(strVal, 10, 32)
		if err != nil {
			return fmt.Errorf("block index must be a 32-bit unsigned integer, got: %q", strVal)
		}
		*b = BlockIndex(parsed)
		return nil
	}

	return fmt.Errorf("block index must be a number or string, got: %s", string(data))
}

// PairParams are the params naming a currency pair.
type PairParams struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Pair validates that both symbols are present.
func (p PairParams) Pair() (currency.Pair[string, string], *RpcError) {
	if p.From == "" {
		return currency.Pair[string, string]{}, RpcErrorMissingField("from")
	}
	if p.To == "" {
		return currency.Pair[string, string]{}, RpcErrorMissingField("to")
	}
	return currency.New(p.From, p.To), nil
}

// PriceResult is the JSON form of a price record in responses.
type PriceResult struct {
	Amount      uint64 `json:"amount"`
	Decimals    uint32 `json:"decimals"`
	BlockNumber uint32 `json:"block_number"`
	Price       string `json:"price"`
}

// NewPriceResult renders rec.
func NewPriceResult(rec feed.Record) PriceResult {
	return PriceResult{
		Amount:      rec.Amount(),
		Decimals:    rec.Decimals(),
		BlockNumber: rec.BlockNumber(),
		Price:       rec.Decimal().String(),
	}
}

// NewPriceResultOrNil renders rec, or returns nil when there is no
// record so it encodes as JSON null.
func NewPriceResultOrNil(rec *feed.Record) *PriceResult {
	if rec == nil {
		return nil
	}
	result := NewPriceResult(*rec)
	return &result
}

// WebSocket specific structures
type WebSocketCommand struct {
	Command    string          `json:"command"`
	ID         interface{}     `json:"id,omitempty"`
	ApiVersion *int            `json:"api_version,omitempty"`
	Params     json.RawMessage `json:"-"`
}

// WebSocketResponse represents an XRPL WebSocket API response
type WebSocketResponse struct {
	Status       string      `json:"status"`
	Type         string      `json:"type"`
	Result       interface{} `json:"result,omitempty"`
	ID           interface{} `json:"id,omitempty"`
	ApiVersion   int         `json:"api_version,omitempty"`
	Error        string      `json:"error,omitempty"`
	ErrorCode    int         `json:"error_code,omitempty"`
	ErrorMessage string      `json:"error_message,omitempty"`
}

// PriceResponse is the result of price_feed_price and
// price_feed_set_price.
type PriceResponse struct {
	Pair  currency.Pair[string, string] `json:"pair"`
	Price *PriceResult                  `json:"price"`
}

// PricePerUnitResponse is the result of price_feed_price_per_unit.
type PricePerUnitResponse struct {
	PriceResponse
	UnitAmount   string  `json:"unit_amount"`
	PricePerUnit *string `json:"price_per_unit"`
}

// PairsResponse is the result of price_feed_pairs.
type PairsResponse struct {
	Pairs []currency.Pair[string, string] `json:"pairs"`
}

// SetStats describes a set of prices.
type SetStats struct {
	Mean              string `json:"mean"`
	Size              int    `json:"size"`
	StandardDeviation string `json:"standard_deviation"`
}

// AggregatePriceResponse is the result of price_feed_aggregate_price.
type AggregatePriceResponse struct {
	Pair        currency.Pair[string, string] `json:"pair"`
	BlockNumber uint32                        `json:"block_number"`
	EntireSet   SetStats                      `json:"entire_set"`
	Median      string                        `json:"median"`
	TrimmedSet  *SetStats                     `json:"trimmed_set,omitempty"`
}
