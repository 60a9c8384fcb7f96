// Package price implements fixed-point price records: a raw integer
// amount scaled by a power of ten, tagged with the block it was recorded
// at.
package price

import (
	"fmt"
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

// BlockNumber is the provenance type of a record: the height of the
// block a price was recorded at.
type BlockNumber interface {
	~uint32 | ~uint64
}

// Record is a price of amount / 10^decimals recorded at blockNumber.
// Records with different decimals are not comparable; no ordering is
// defined on them.
type Record[B BlockNumber] struct {
	amount      uint64
	decimals    uint8
	blockNumber B
}

// NewRecord creates a record. Every decimals value is accepted.
func NewRecord[B BlockNumber](amount uint64, decimals uint8, blockNumber B) Record[B] {
	return Record[B]{amount: amount, decimals: decimals, blockNumber: blockNumber}
}

// Amount returns the raw unscaled amount.
func (r Record[B]) Amount() uint64 {
	return r.amount
}

// Decimals returns the scale of the amount.
func (r Record[B]) Decimals() uint32 {
	return uint32(r.decimals)
}

// RawDecimals returns the scale as stored.
func (r Record[B]) RawDecimals() uint8 {
	return r.decimals
}

// BlockNumber returns the block the record was published at.
func (r Record[B]) BlockNumber() B {
	return r.blockNumber
}

// IncDecimals returns a copy with decimals increased by by. The amount is
// not rescaled. It reports false if decimals would exceed 255.
func (r Record[B]) IncDecimals(by uint8) (Record[B], bool) {
	if r.decimals > math.MaxUint8-by {
		return Record[B]{}, false
	}
	r.decimals += by
	return r, true
}

// DecDecimals returns a copy with decimals decreased by by. The amount is
// not rescaled. It reports false if decimals would go below zero.
func (r Record[B]) DecDecimals(by uint8) (Record[B], bool) {
	if r.decimals < by {
		return Record[B]{}, false
	}
	r.decimals -= by
	return r, true
}

// Decimal returns the scaled price.
func (r Record[B]) Decimal() decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(r.amount), -int32(r.decimals))
}

func (r Record[B]) String() string {
	return fmt.Sprintf("%s@%d", r.Decimal().String(), uint64(r.blockNumber))
}
