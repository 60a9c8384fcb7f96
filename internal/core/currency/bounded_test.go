package currency

import (
	"encoding/json"
	"testing"

	binarycodec "github.com/LeJamon/goPriceFeed/internal/codec/binary-codec"
	"github.com/LeJamon/goPriceFeed/internal/codec/binary-codec/serdes"
	"github.com/LeJamon/goPriceFeed/internal/core/symbol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type max3 struct{}

func (max3) MaxBytes() uint32 { return 3 }

type max5 struct{}

func (max5) MaxBytes() uint32 { return 5 }

type max6 struct{}

func (max6) MaxBytes() uint32 { return 6 }

func TestToBounded(t *testing.T) {
	p, err := ToBounded[max3](New("ABC", "USD"))
	require.NoError(t, err)
	assert.Equal(t, "ABC", p.From().Inner())
	assert.Equal(t, "USD", p.To().Inner())
	assert.Equal(t, "ABC/USD", p.String())
	assert.Equal(t, 8, MaxBoundedPairEncodedLen[max3]())
}

func TestToBoundedAllOrNothing(t *testing.T) {
	_, err := ToBounded[max3](New("ABCDE", "B"))
	assert.ErrorIs(t, err, symbol.ErrLengthExceeded)

	_, err = ToBounded[max3](New("B", "ABCDE"))
	assert.ErrorIs(t, err, symbol.ErrLengthExceeded)

	_, err = NewBounded[max3]("ABCDE", "FGHIJ")
	assert.ErrorIs(t, err, symbol.ErrLengthExceeded)
}

func TestUnboundRebound(t *testing.T) {
	for _, raw := range []Pair[string, string]{New("A", "B"), New("", "USD"), New("DOCK", "DOCK")} {
		bounded, err := ToBounded[max5](raw)
		require.NoError(t, err)

		unbound := bounded.Unbound()
		assert.Equal(t, raw, unbound)

		again, err := ToBounded[max5](unbound)
		require.NoError(t, err)
		assert.Equal(t, bounded, again)
		assert.True(t, bounded == again)
	}
}

func TestBoundedSymbols(t *testing.T) {
	bounded, err := NewBounded[max5]("dock", "usd")
	require.NoError(t, err)

	upper, err := TranslatePair(
		MapPair(bounded.Unbound(), func(s string) string { return s + "x" }),
		symbol.New[max5, string],
	)
	require.NoError(t, err)
	assert.Equal(t, "dockx", upper.From().Inner())

	syms := bounded.Symbols()
	assert.Equal(t, bounded.From(), syms.From())
	assert.Equal(t, bounded.To(), syms.To())
}

func TestCompareBounded(t *testing.T) {
	ab, _ := NewBounded[max3]("A", "B")
	ba, _ := NewBounded[max3]("B", "A")
	ac, _ := NewBounded[max3]("A", "C")

	assert.Equal(t, -1, CompareBounded(ab, ba))
	assert.Equal(t, -1, CompareBounded(ab, ac))
	assert.Equal(t, 1, CompareBounded(ba, ac))
	assert.Equal(t, 0, CompareBounded(ab, ab))
}

func TestBoundedBinary(t *testing.T) {
	bounded, err := NewBounded[max6]("ABCDEF", "USD")
	require.NoError(t, err)

	encoded, err := binarycodec.Encode(bounded)
	require.NoError(t, err)

	plain := serdes.NewBinarySerializer()
	require.NoError(t, plain.WriteVL([]byte("ABCDEF")))
	require.NoError(t, plain.WriteVL([]byte("USD")))
	assert.Equal(t, plain.GetSink(), encoded)
	assert.LessOrEqual(t, len(encoded), MaxBoundedPairEncodedLen[max6]())

	var decoded BoundedPair[max6, string, string]
	require.NoError(t, binarycodec.Decode(encoded, &decoded))
	assert.Equal(t, bounded, decoded)

	var narrow BoundedPair[max5, string, string]
	err = binarycodec.Decode(encoded, &narrow)
	require.Error(t, err)
	assert.True(t, binarycodec.IsDecodeError(err))
	assert.ErrorIs(t, err, symbol.ErrLengthExceeded)
	assert.Equal(t, BoundedPair[max5, string, string]{}, narrow)
}

func TestBoundedJSON(t *testing.T) {
	bounded, err := NewBounded[max6]("ABCDEF", "USD")
	require.NoError(t, err)

	data, err := json.Marshal(bounded)
	require.NoError(t, err)
	assert.JSONEq(t, `{"from":"ABCDEF","to":"USD"}`, string(data))

	var decoded BoundedPair[max6, string, string]
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, bounded, decoded)

	var narrow BoundedPair[max5, string, string]
	assert.ErrorIs(t, json.Unmarshal(data, &narrow), symbol.ErrLengthExceeded)
}
