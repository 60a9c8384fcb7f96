package price

import (
	"encoding/json"
	"math"
	"math/big"
	"testing"

	binarycodec "github.com/LeJamon/goPriceFeed/internal/codec/binary-codec"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type height uint32

func TestRecordAccessors(t *testing.T) {
	r := NewRecord(1234, 3, uint64(77))
	assert.Equal(t, uint64(1234), r.Amount())
	assert.Equal(t, uint32(3), r.Decimals())
	assert.Equal(t, uint8(3), r.RawDecimals())
	assert.Equal(t, uint64(77), r.BlockNumber())
	assert.Equal(t, "1.234", r.Decimal().String())
	assert.Equal(t, "1.234@77", r.String())
}

func TestPricePerUnit(t *testing.T) {
	r := NewRecord(1234, 3, uint64(0))

	v, ok := PricePerUnit[uint64](r, uint64(32))
	require.True(t, ok)
	assert.Equal(t, uint64(39), v)

	inc, ok := r.IncDecimals(1)
	require.True(t, ok)
	v, ok = PricePerUnit[uint64](inc, uint64(32))
	require.True(t, ok)
	assert.Equal(t, uint64(3), v)

	dec, ok := inc.DecDecimals(2)
	require.True(t, ok)
	v, ok = PricePerUnit[uint64](dec, uint64(32))
	require.True(t, ok)
	assert.Equal(t, uint64(394), v)
}

func TestPricePerUnitWidths(t *testing.T) {
	r := NewRecord(math.MaxUint64, 0, uint32(0))

	_, ok := PricePerUnit[uint64](r, uint32(1000))
	assert.False(t, ok)

	wide, ok := r.PricePerUnitWide(uint256.NewInt(1000))
	require.True(t, ok)
	assert.Equal(t, "18446744073709551615000", wide.Dec())

	b, ok := r.PricePerUnitBig(big.NewInt(1000))
	require.True(t, ok)
	expected, _ := new(big.Int).SetString("18446744073709551615000", 10)
	assert.Equal(t, 0, expected.Cmp(b))

	v, ok := PricePerUnit[uint64](r, 1)
	require.True(t, ok)
	assert.Equal(t, uint64(math.MaxUint64), v)
}

func TestPricePerUnitZeroUnits(t *testing.T) {
	r := NewRecord(math.MaxUint64, 0, uint32(0))
	v, ok := PricePerUnit[uint8](r, 0)
	require.True(t, ok)
	assert.Equal(t, uint8(0), v)
}

func TestPricePerUnitNarrowing(t *testing.T) {
	r := NewRecord(300, 0, uint32(0))

	_, ok := PricePerUnit[uint8](r, 1)
	assert.False(t, ok)
	_, ok = PricePerUnit[int8](r, 1)
	assert.False(t, ok)

	v16, ok := PricePerUnit[int16](r, 1)
	require.True(t, ok)
	assert.Equal(t, int16(300), v16)

	half := NewRecord(1<<63, 0, uint32(0))
	_, ok = PricePerUnit[int64](half, 1)
	assert.False(t, ok)
	u, ok := PricePerUnit[uint64](half, 1)
	require.True(t, ok)
	assert.Equal(t, uint64(1<<63), u)
}

func TestPricePerUnitRejectsNegativeUnits(t *testing.T) {
	r := NewRecord(1, 0, uint32(0))
	_, ok := PricePerUnit[uint64](r, -1)
	assert.False(t, ok)
	_, ok = r.PricePerUnitBig(big.NewInt(-1))
	assert.False(t, ok)
}

func TestPricePerUnitDecimalsOverflow(t *testing.T) {
	r77 := NewRecord(math.MaxUint64, 77, uint32(0))
	v, ok := PricePerUnit[uint64](r77, uint64(1))
	require.True(t, ok)
	assert.Equal(t, uint64(0), v)

	r78 := NewRecord(1, 78, uint32(0))
	_, ok = PricePerUnit[uint64](r78, uint64(1))
	assert.False(t, ok)

	r255 := NewRecord(1, 255, uint32(0))
	_, ok = r255.PricePerUnitWide(uint256.NewInt(1))
	assert.False(t, ok)
}

func TestPricePerUnitProductOverflow(t *testing.T) {
	r := NewRecord(math.MaxUint64, 0, uint32(0))
	unit := new(uint256.Int).Lsh(uint256.NewInt(1), 200)
	_, ok := r.PricePerUnitWide(unit)
	assert.False(t, ok)

	tooWide := new(big.Int).Lsh(big.NewInt(1), 256)
	_, ok = r.PricePerUnitBig(tooWide)
	assert.False(t, ok)
}

func TestPricePerUnitCeil(t *testing.T) {
	r := NewRecord(1234, 3, uint32(0))

	v, ok := PricePerUnitCeil[uint64](r, uint64(32))
	require.True(t, ok)
	assert.Equal(t, uint64(40), v)

	v, ok = PricePerUnitCeil[uint64](r, uint64(1000))
	require.True(t, ok)
	assert.Equal(t, uint64(1234), v)

	_, ok = PricePerUnitCeil[uint64](NewRecord(1, 100, uint32(0)), 1)
	assert.False(t, ok)

	b, ok := r.PricePerUnitBigCeil(big.NewInt(32))
	require.True(t, ok)
	assert.Equal(t, "40", b.String())

	b, ok = r.PricePerUnitBig(big.NewInt(32))
	require.True(t, ok)
	assert.Equal(t, "39", b.String())

	_, ok = r.PricePerUnitBigCeil(big.NewInt(-1))
	assert.False(t, ok)
}

func TestDecimalsArithmetic(t *testing.T) {
	_, ok := NewRecord(1, 255, uint32(0)).IncDecimals(1)
	assert.False(t, ok)

	_, ok = NewRecord(1, 0, uint32(0)).DecDecimals(1)
	assert.False(t, ok)

	r := NewRecord(42, 15, uint32(9))
	inc, ok := r.IncDecimals(15)
	require.True(t, ok)
	assert.Equal(t, NewRecord(42, 30, uint32(9)), inc)

	dec, ok := r.DecDecimals(15)
	require.True(t, ok)
	assert.Equal(t, NewRecord(42, 0, uint32(9)), dec)

	top, ok := NewRecord(1, 0, uint32(0)).IncDecimals(255)
	require.True(t, ok)
	assert.Equal(t, uint32(255), top.Decimals())

	assert.Equal(t, uint32(15), r.Decimals(), "rescaling must not modify the receiver")
}

func TestRecordBinary(t *testing.T) {
	t.Run("32-bit block numbers", func(t *testing.T) {
		r := NewRecord(0x0102030405060708, 9, height(0x0A0B0C0D))
		encoded, err := binarycodec.Encode(r)
		require.NoError(t, err)
		assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 0x0A, 0x0B, 0x0C, 0x0D}, encoded)
		assert.Len(t, encoded, EncodedLen[height]())

		var decoded Record[height]
		require.NoError(t, binarycodec.Decode(encoded, &decoded))
		assert.Equal(t, r, decoded)
	})

	t.Run("64-bit block numbers", func(t *testing.T) {
		r := NewRecord(5, 2, uint64(1<<40))
		encoded, err := binarycodec.Encode(r)
		require.NoError(t, err)
		assert.Len(t, encoded, 17)
		assert.Equal(t, 17, EncodedLen[uint64]())

		var decoded Record[uint64]
		require.NoError(t, binarycodec.Decode(encoded, &decoded))
		assert.Equal(t, r, decoded)
	})

	t.Run("truncated", func(t *testing.T) {
		var decoded Record[uint32]
		err := binarycodec.Decode([]byte{1, 2, 3}, &decoded)
		assert.True(t, binarycodec.IsDecodeError(err))
	})
}

func TestRecordJSON(t *testing.T) {
	r := NewRecord(1234, 3, uint32(10))
	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":1234,"decimals":3,"block_number":10}`, string(data))

	var decoded Record[uint32]
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, r, decoded)

	assert.Error(t, json.Unmarshal([]byte(`{"amount":1,"decimals":256,"block_number":1}`), &decoded))
}
