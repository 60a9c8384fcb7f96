// Package currency implements ordered (from, to) currency pairs. A price
// N on a pair means 1 unit of from is worth N units of to.
package currency

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/LeJamon/goPriceFeed/internal/core/errors"
)

// ModuleName is the module used for errors originating in this package.
const ModuleName = "currency"

// ErrInvalidPairFormat is returned by ParsePair for input that is not
// of the form FROM/TO.
var ErrInvalidPairFormat = errors.New(ModuleName, 1, "pair must be formatted as FROM/TO")

// Pair is an ordered pair of currency symbols. The slots are not
// interchangeable: (A, B) and (B, A) are different pairs.
type Pair[F, T any] struct {
	from F
	to   T
}

// New creates a pair. No validation is performed.
func New[F, T any](from F, to T) Pair[F, T] {
	return Pair[F, T]{from: from, to: to}
}

// ParsePair parses a pair written as "FROM/TO".
func ParsePair(s string) (Pair[string, string], error) {
	from, to, ok := strings.Cut(s, "/")
	if !ok || from == "" || to == "" || strings.Contains(to, "/") {
		return Pair[string, string]{}, errors.WithContext(ErrInvalidPairFormat, s)
	}
	return New(from, to), nil
}

// From returns the currency being priced.
func (p Pair[F, T]) From() F {
	return p.from
}

// To returns the currency the price is expressed in.
func (p Pair[F, T]) To() T {
	return p.to
}

func (p Pair[F, T]) String() string {
	return fmt.Sprintf("%v/%v", p.from, p.to)
}

type pairJSON[F, T any] struct {
	From F `json:"from"`
	To   T `json:"to"`
}

func (p Pair[F, T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(pairJSON[F, T]{From: p.from, To: p.to})
}

func (p *Pair[F, T]) UnmarshalJSON(data []byte) error {
	var raw pairJSON[F, T]
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = New(raw.From, raw.To)
	return nil
}

// MapOverFrom replaces the from slot with f(from).
func MapOverFrom[F, T, R any](p Pair[F, T], f func(F) R) Pair[R, T] {
	return New(f(p.from), p.to)
}

// MapOverTo replaces the to slot with f(to).
func MapOverTo[F, T, R any](p Pair[F, T], f func(T) R) Pair[F, R] {
	return New(p.from, f(p.to))
}

// TranslateOverFrom replaces the from slot with the result of f. If f
// fails no pair is returned.
func TranslateOverFrom[F, T, R any](p Pair[F, T], f func(F) (R, error)) (Pair[R, T], error) {
	from, err := f(p.from)
	if err != nil {
		return Pair[R, T]{}, err
	}
	return New(from, p.to), nil
}

// TranslateOverTo replaces the to slot with the result of f. If f fails
// no pair is returned.
func TranslateOverTo[F, T, R any](p Pair[F, T], f func(T) (R, error)) (Pair[F, R], error) {
	to, err := f(p.to)
	if err != nil {
		return Pair[F, R]{}, err
	}
	return New(p.from, to), nil
}

// MapPair applies f to from, then to.
func MapPair[S, R any](p Pair[S, S], f func(S) R) Pair[R, R] {
	from := f(p.from)
	return New(from, f(p.to))
}

// TranslatePair applies f to from, then to. f is not called on to once
// it has failed on from.
func TranslatePair[S, R any](p Pair[S, S], f func(S) (R, error)) (Pair[R, R], error) {
	from, err := f(p.from)
	if err != nil {
		return Pair[R, R]{}, err
	}
	to, err := f(p.to)
	if err != nil {
		return Pair[R, R]{}, err
	}
	return New(from, to), nil
}
