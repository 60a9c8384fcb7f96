package price

import (
	"encoding/json"
	"math"

	"github.com/LeJamon/goPriceFeed/internal/codec/binary-codec/types/interfaces"
)

// BlockNumberWidth returns the encoded width of B in bytes.
func BlockNumberWidth[B BlockNumber]() int {
	if uint64(^B(0)) > math.MaxUint32 {
		return 8
	}
	return 4
}

// EncodedLen returns the fixed size of an encoded Record[B].
func EncodedLen[B BlockNumber]() int {
	return 8 + 1 + BlockNumberWidth[B]()
}

// EncodeBinary writes amount (8 bytes), decimals (1 byte) and the block
// number in its fixed width, all big-endian.
func (r Record[B]) EncodeBinary(s interfaces.BinarySerializer) error {
	s.WriteUint64(r.amount)
	if err := s.WriteByte(r.decimals); err != nil {
		return err
	}
	if BlockNumberWidth[B]() == 8 {
		s.WriteUint64(uint64(r.blockNumber))
	} else {
		s.WriteUint32(uint32(r.blockNumber))
	}
	return nil
}

func (r *Record[B]) DecodeBinary(p interfaces.BinaryParser) error {
	amount, err := p.ReadUint64()
	if err != nil {
		return err
	}
	decimals, err := p.ReadByte()
	if err != nil {
		return err
	}
	var blockNumber B
	if BlockNumberWidth[B]() == 8 {
		v, err := p.ReadUint64()
		if err != nil {
			return err
		}
		blockNumber = B(v)
	} else {
		v, err := p.ReadUint32()
		if err != nil {
			return err
		}
		blockNumber = B(v)
	}
	*r = NewRecord(amount, decimals, blockNumber)
	return nil
}

type recordJSON[B BlockNumber] struct {
	Amount      uint64 `json:"amount"`
	Decimals    uint8  `json:"decimals"`
	BlockNumber B      `json:"block_number"`
}

func (r Record[B]) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON[B]{Amount: r.amount, Decimals: r.decimals, BlockNumber: r.blockNumber})
}

func (r *Record[B]) UnmarshalJSON(data []byte) error {
	var raw recordJSON[B]
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = NewRecord(raw.Amount, raw.Decimals, raw.BlockNumber)
	return nil
}
