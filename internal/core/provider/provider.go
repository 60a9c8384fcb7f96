// Package provider defines how prices are looked up by pair.
package provider

import (
	"context"

	"github.com/LeJamon/goPriceFeed/internal/core/currency"
	"github.com/LeJamon/goPriceFeed/internal/core/price"
	"github.com/LeJamon/goPriceFeed/internal/core/symbol"
)

// PriceProvider returns the latest price recorded for a pair.
type PriceProvider[B price.BlockNumber] interface {
	// PairPrice returns a nil record and no error when no price was ever
	// published for pair. Errors are reserved for pairs that cannot be
	// used as a key.
	PairPrice(ctx context.Context, pair currency.Pair[string, string]) (*price.Record[B], error)
}

// PairPrice queries p with a pair of any string-like symbol types.
func PairPrice[B price.BlockNumber, F, T symbol.Like](
	ctx context.Context,
	p PriceProvider[B],
	pair currency.Pair[F, T],
) (*price.Record[B], error) {
	return p.PairPrice(ctx, currency.New(string(pair.From()), string(pair.To())))
}

// BoundedSource looks a record up by its storage key.
type BoundedSource[L symbol.Bound, B price.BlockNumber] interface {
	LatestPrice(ctx context.Context, key currency.BoundedPair[L, string, string]) (*price.Record[B], error)
}

// KeyedProvider implements PriceProvider over a BoundedSource: it
// converts the pair to its bounded form and does exactly one lookup.
type KeyedProvider[L symbol.Bound, B price.BlockNumber] struct {
	source BoundedSource[L, B]
}

func NewKeyedProvider[L symbol.Bound, B price.BlockNumber](source BoundedSource[L, B]) *KeyedProvider[L, B] {
	return &KeyedProvider[L, B]{source: source}
}

func (p *KeyedProvider[L, B]) PairPrice(ctx context.Context, pair currency.Pair[string, string]) (*price.Record[B], error) {
	key, err := currency.ToBounded[L](pair)
	if err != nil {
		return nil, err
	}
	return p.source.LatestPrice(ctx, key)
}

// StaticPriceProvider serves the price of a single pair fixed ahead of
// time.
type StaticPriceProvider[B price.BlockNumber] struct {
	provider PriceProvider[B]
	pair     currency.PairGetter
}

func NewStaticPriceProvider[B price.BlockNumber](p PriceProvider[B], pair currency.PairGetter) *StaticPriceProvider[B] {
	return &StaticPriceProvider[B]{provider: p, pair: pair}
}

// Pair returns the pair this provider is bound to.
func (s *StaticPriceProvider[B]) Pair() currency.Pair[string, string] {
	return s.pair.Get()
}

// Price returns the latest price of the bound pair.
func (s *StaticPriceProvider[B]) Price(ctx context.Context) (*price.Record[B], error) {
	return s.provider.PairPrice(ctx, s.pair.Get())
}
