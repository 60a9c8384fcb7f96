package cli

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// parsePrice converts a decimal price to the amount and number of
// decimals it is stored as. A negative decimals keeps the scale written
// in s, so "1.50" is 150 with 2 decimals.
func parsePrice(s string, decimals int) (uint64, uint8, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid price %q: %w", s, err)
	}
	if d.IsNegative() {
		return 0, 0, fmt.Errorf("price must be non-negative, got %s", s)
	}

	if decimals < 0 {
		decimals = 0
		if exp := d.Exponent(); exp < 0 {
			decimals = int(-exp)
		}
	}
	if decimals > math.MaxUint8 {
		return 0, 0, fmt.Errorf("decimals must be at most %d, got %d", math.MaxUint8, decimals)
	}

	shifted := d.Shift(int32(decimals))
	if !shifted.Equal(shifted.Truncate(0)) {
		return 0, 0, fmt.Errorf("price %s has more than %d decimals", s, decimals)
	}
	amount := shifted.BigInt()
	if !amount.IsUint64() {
		return 0, 0, fmt.Errorf("price %s does not fit a 64-bit amount with %d decimals", s, decimals)
	}
	return amount.Uint64(), uint8(decimals), nil
}
