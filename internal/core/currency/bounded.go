package currency

import (
	"encoding/json"
	"fmt"

	"github.com/LeJamon/goPriceFeed/internal/codec/binary-codec/types/interfaces"
	"github.com/LeJamon/goPriceFeed/internal/core/symbol"
)

// BoundedPair is a pair whose slots are symbols sharing the ceiling L.
// It is the form used as a storage key.
type BoundedPair[L symbol.Bound, F, T symbol.Like] struct {
	from symbol.Symbol[L, F]
	to   symbol.Symbol[L, T]
}

// ToBounded validates both slots of p against L, from first. Either
// both slots are accepted or symbol.ErrLengthExceeded is returned.
func ToBounded[L symbol.Bound, F, T symbol.Like](p Pair[F, T]) (BoundedPair[L, F, T], error) {
	withFrom, err := TranslateOverFrom(p, symbol.New[L, F])
	if err != nil {
		return BoundedPair[L, F, T]{}, err
	}
	bounded, err := TranslateOverTo(withFrom, symbol.New[L, T])
	if err != nil {
		return BoundedPair[L, F, T]{}, err
	}
	return BoundedPair[L, F, T]{from: bounded.from, to: bounded.to}, nil
}

// NewBounded is shorthand for ToBounded(New(from, to)).
func NewBounded[L symbol.Bound, F, T symbol.Like](from F, to T) (BoundedPair[L, F, T], error) {
	return ToBounded[L](New(from, to))
}

// MaxBoundedPairEncodedLen is the largest encoded size of a BoundedPair
// under L.
func MaxBoundedPairEncodedLen[L symbol.Bound]() int {
	return 2 * symbol.MaxEncodedLen[L]()
}

func (p BoundedPair[L, F, T]) From() symbol.Symbol[L, F] {
	return p.from
}

func (p BoundedPair[L, F, T]) To() symbol.Symbol[L, T] {
	return p.to
}

// Symbols returns the pair with its bounded slots, for use with the
// pair combinators.
func (p BoundedPair[L, F, T]) Symbols() Pair[symbol.Symbol[L, F], symbol.Symbol[L, T]] {
	return New(p.from, p.to)
}

// Unbound unwraps both slots.
func (p BoundedPair[L, F, T]) Unbound() Pair[F, T] {
	return New(p.from.Inner(), p.to.Inner())
}

func (p BoundedPair[L, F, T]) String() string {
	return fmt.Sprintf("%s/%s", p.from, p.to)
}

// CompareBounded orders bounded pairs by from, then to.
func CompareBounded[L symbol.Bound, F, T symbol.Like](a, b BoundedPair[L, F, T]) int {
	if c := symbol.Compare(a.from, b.from); c != 0 {
		return c
	}
	return symbol.Compare(a.to, b.to)
}

// EncodeBinary writes from then to, each as a VL-prefixed string. The
// encoding is identical to that of the unbounded pair.
func (p BoundedPair[L, F, T]) EncodeBinary(s interfaces.BinarySerializer) error {
	if err := p.from.EncodeBinary(s); err != nil {
		return err
	}
	return p.to.EncodeBinary(s)
}

// DecodeBinary reads and validates from, then to.
func (p *BoundedPair[L, F, T]) DecodeBinary(r interfaces.BinaryParser) error {
	var decoded BoundedPair[L, F, T]
	if err := decoded.from.DecodeBinary(r); err != nil {
		return err
	}
	if err := decoded.to.DecodeBinary(r); err != nil {
		return err
	}
	*p = decoded
	return nil
}

func (p BoundedPair[L, F, T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(pairJSON[symbol.Symbol[L, F], symbol.Symbol[L, T]]{From: p.from, To: p.to})
}

func (p *BoundedPair[L, F, T]) UnmarshalJSON(data []byte) error {
	var raw pairJSON[F, T]
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded, err := NewBounded[L](raw.From, raw.To)
	if err != nil {
		return err
	}
	*p = decoded
	return nil
}
