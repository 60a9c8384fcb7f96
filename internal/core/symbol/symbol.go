// Package symbol implements currency symbols whose encoded byte size is
// bounded by a ceiling fixed at the type level.
package symbol

import (
	"cmp"
	"fmt"
	"unicode/utf8"

	"github.com/LeJamon/goPriceFeed/internal/codec/binary-codec/serdes"
	"github.com/LeJamon/goPriceFeed/internal/core/errors"
)

// ModuleName is the module used for errors originating in this package.
const ModuleName = "symbol"

var (
	// ErrLengthExceeded is returned when a symbol's encoded byte size is
	// larger than its ceiling allows.
	ErrLengthExceeded = errors.New(ModuleName, 1, "the string byte size exceeds max allowed")
	// ErrInvalidUTF8 is returned when a symbol is not valid UTF-8.
	ErrInvalidUTF8 = errors.New(ModuleName, 2, "symbol is not valid UTF-8")
)

// Bound is a ceiling on the byte length of a symbol. Implementations are
// zero-size types so the ceiling becomes part of the symbol's type.
type Bound interface {
	MaxBytes() uint32
}

// Like is any string-based payload type.
type Like interface {
	~string
}

// Symbol is a string-like value of type S whose encoded size never
// exceeds MaxEncodedLen[L]. The zero value holds the empty string.
type Symbol[L Bound, S Like] struct {
	value S
}

// New validates value against the ceiling L. The length is checked
// before the UTF-8 encoding.
func New[L Bound, S Like](value S) (Symbol[L, S], error) {
	if !fits[L](value) {
		return Symbol[L, S]{}, ErrLengthExceeded
	}
	if !utf8.ValidString(string(value)) {
		return Symbol[L, S]{}, ErrInvalidUTF8
	}
	return Symbol[L, S]{value: value}, nil
}

// MustNew is like New but panics on an invalid value. It is meant for
// constants known to be valid.
func MustNew[L Bound, S Like](value S) Symbol[L, S] {
	s, err := New[L](value)
	if err != nil {
		panic(fmt.Sprintf("symbol: %q: %v", string(value), err))
	}
	return s
}

// MaxEncodedLen returns the largest encoded size allowed under L: the
// size of the VL prefix for the ceiling plus the ceiling itself.
//
// It panics if the ceiling cannot be expressed as a VL length.
func MaxEncodedLen[L Bound]() int {
	var l L
	n := int(l.MaxBytes())
	prefix := serdes.VLSize(n)
	if prefix == 0 {
		panic(fmt.Sprintf("symbol: ceiling %d exceeds max VL length %d", n, serdes.MaxVLLength))
	}
	return prefix + n
}

// EncodedSize returns the size of value in the host encoding. It
// reports false when value is too long to be encoded at all.
func EncodedSize[S Like](value S) (int, bool) {
	n := len(value)
	prefix := serdes.VLSize(n)
	if prefix == 0 {
		return 0, false
	}
	return prefix + n, true
}

func fits[L Bound, S Like](value S) bool {
	size, ok := EncodedSize(value)
	return ok && size <= MaxEncodedLen[L]()
}

// Inner returns the wrapped value.
func (s Symbol[L, S]) Inner() S {
	return s.value
}

func (s Symbol[L, S]) String() string {
	return string(s.value)
}

// Compare orders symbols by their byte content.
func Compare[L Bound, S Like](a, b Symbol[L, S]) int {
	return cmp.Compare(a.value, b.value)
}

// Map applies f to the payload and validates the result against L.
func Map[L Bound, S, R Like](s Symbol[L, S], f func(S) R) (Symbol[L, R], error) {
	return New[L](f(s.value))
}

// Translate is Map for fallible functions. An error from f is returned
// unchanged.
func Translate[L Bound, S, R Like](s Symbol[L, S], f func(S) (R, error)) (Symbol[L, R], error) {
	r, err := f(s.value)
	if err != nil {
		return Symbol[L, R]{}, err
	}
	return New[L](r)
}

// Rebound moves a symbol under a different ceiling, validating it again.
func Rebound[M, L Bound, S Like](s Symbol[L, S]) (Symbol[M, S], error) {
	return New[M](s.value)
}
