package currency

import "github.com/LeJamon/goPriceFeed/internal/core/symbol"

// PairGetter yields a pair fixed ahead of time.
type PairGetter interface {
	Get() Pair[string, string]
}

// Const is implemented by zero-size types naming a constant symbol.
type Const interface {
	Symbol() string
}

// StaticPair is a pair fixed at compile time by two Const types. It
// holds no data.
type StaticPair[F, T Const] struct{}

// Get materializes the pair.
func (StaticPair[F, T]) Get() Pair[string, string] {
	var from F
	var to T
	return New(from.Symbol(), to.Symbol())
}

// FixedPair is a pair fixed by configuration. It can only be built
// through NewFixedPair, so a FixedPair always fits the ceiling it was
// validated against.
type FixedPair struct {
	pair Pair[string, string]
}

// NewFixedPair validates from and to against L.
func NewFixedPair[L symbol.Bound](from, to string) (FixedPair, error) {
	bounded, err := NewBounded[L](from, to)
	if err != nil {
		return FixedPair{}, err
	}
	return FixedPair{pair: bounded.Unbound()}, nil
}

// ParseFixedPair parses "FROM/TO" and validates it against L.
func ParseFixedPair[L symbol.Bound](s string) (FixedPair, error) {
	p, err := ParsePair(s)
	if err != nil {
		return FixedPair{}, err
	}
	return NewFixedPair[L](p.From(), p.To())
}

func (f FixedPair) Get() Pair[string, string] {
	return f.pair
}

func (f FixedPair) String() string {
	return f.pair.String()
}
