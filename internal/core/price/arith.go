package price

import (
	"math/big"

	"github.com/holiman/uint256"
)

// Integer is any built-in integer type.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// pow10 holds every power of ten representable in 256 bits.
var pow10 = func() []uint256.Int {
	var powers []uint256.Int
	p := uint256.NewInt(1)
	ten := uint256.NewInt(10)
	for {
		powers = append(powers, *p)
		if _, overflow := p.MulOverflow(p, ten); overflow {
			return powers
		}
	}
}()

func checkedPow10(exp uint8) (*uint256.Int, bool) {
	if int(exp) >= len(pow10) {
		return nil, false
	}
	return new(uint256.Int).Set(&pow10[exp]), true
}

func widen[I Integer](v I) (*uint256.Int, bool) {
	if v < 0 {
		return nil, false
	}
	return uint256.NewInt(uint64(v)), true
}

func narrow[O Integer](v *uint256.Int) (O, bool) {
	if !v.IsUint64() {
		return 0, false
	}
	u := v.Uint64()
	o := O(u)
	if o < 0 || uint64(o) != u {
		return 0, false
	}
	return o, true
}

// scaled returns amount * unit and 10^decimals.
func (r Record[B]) scaled(unit *uint256.Int) (*uint256.Int, *uint256.Int, bool) {
	divisor, ok := checkedPow10(r.decimals)
	if !ok {
		return nil, nil, false
	}
	product, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(r.amount), unit)
	if overflow {
		return nil, nil, false
	}
	return product, divisor, true
}

// PricePerUnitWide returns floor(amount * unit / 10^decimals) computed
// in 256 bits. It reports false if the product or 10^decimals overflows.
func (r Record[B]) PricePerUnitWide(unit *uint256.Int) (*uint256.Int, bool) {
	product, divisor, ok := r.scaled(unit)
	if !ok {
		return nil, false
	}
	return product.Div(product, divisor), true
}

// PricePerUnitWideCeil is PricePerUnitWide rounding up instead of down.
func (r Record[B]) PricePerUnitWideCeil(unit *uint256.Int) (*uint256.Int, bool) {
	product, divisor, ok := r.scaled(unit)
	if !ok {
		return nil, false
	}
	quot, rem := new(uint256.Int).DivMod(product, divisor, new(uint256.Int))
	if !rem.IsZero() {
		// quot < 2^256-1 since divisor > 1 whenever rem != 0.
		quot.AddUint64(quot, 1)
	}
	return quot, true
}

// PricePerUnitBig is PricePerUnitWide for callers working with big.Int.
func (r Record[B]) PricePerUnitBig(unit *big.Int) (*big.Int, bool) {
	return viaBig(unit, r.PricePerUnitWide)
}

// PricePerUnitBigCeil is PricePerUnitWideCeil for callers working with
// big.Int.
func (r Record[B]) PricePerUnitBigCeil(unit *big.Int) (*big.Int, bool) {
	return viaBig(unit, r.PricePerUnitWideCeil)
}

func viaBig(unit *big.Int, f func(*uint256.Int) (*uint256.Int, bool)) (*big.Int, bool) {
	if unit.Sign() < 0 {
		return nil, false
	}
	wide, overflow := uint256.FromBig(unit)
	if overflow {
		return nil, false
	}
	v, ok := f(wide)
	if !ok {
		return nil, false
	}
	return v.ToBig(), true
}

// PricePerUnit returns the price of unitAmount units of the record's from
// currency, floor(amount * unitAmount / 10^decimals), as an O. It
// reports false when unitAmount is negative, when the intermediate value
// does not fit in 256 bits, or when the result does not fit in O.
func PricePerUnit[O Integer, B BlockNumber, I Integer](r Record[B], unitAmount I) (O, bool) {
	unit, ok := widen(unitAmount)
	if !ok {
		return 0, false
	}
	v, ok := r.PricePerUnitWide(unit)
	if !ok {
		return 0, false
	}
	return narrow[O](v)
}

// PricePerUnitCeil is PricePerUnit rounding up instead of down.
func PricePerUnitCeil[O Integer, B BlockNumber, I Integer](r Record[B], unitAmount I) (O, bool) {
	unit, ok := widen(unitAmount)
	if !ok {
		return 0, false
	}
	v, ok := r.PricePerUnitWideCeil(unit)
	if !ok {
		return 0, false
	}
	return narrow[O](v)
}
