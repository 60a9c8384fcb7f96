package feed

import (
	"github.com/LeJamon/goPriceFeed/internal/codec/binary-codec/serdes"
	"github.com/LeJamon/goPriceFeed/internal/storage/database"
)

// Key layout:
//
//	priceKeyPrefix ‖ VL(from) ‖ VL(to) ‖ block number (4 bytes, big-endian)
//
// All records of a pair share the pair prefix and sort by block number.
const priceKeyPrefix byte = 0x50

func pairPrefix(key Key) ([]byte, error) {
	s := serdes.NewBinarySerializer()
	if err := s.WriteByte(priceKeyPrefix); err != nil {
		return nil, err
	}
	if err := key.EncodeBinary(s); err != nil {
		return nil, err
	}
	return s.GetSink(), nil
}

func recordKey(key Key, blockNumber BlockNumber) ([]byte, error) {
	prefix, err := pairPrefix(key)
	if err != nil {
		return nil, err
	}
	return appendBlockNumber(prefix, blockNumber), nil
}

func appendBlockNumber(prefix []byte, blockNumber BlockNumber) []byte {
	s := serdes.NewBinarySerializer()
	s.WriteBytes(prefix)
	s.WriteUint32(blockNumber)
	return s.GetSink()
}

// rangeUpTo returns the [start, end) bounds of the records of key whose
// block number is at most at.
func rangeUpTo(key Key, at BlockNumber) ([]byte, []byte, error) {
	prefix, err := pairPrefix(key)
	if err != nil {
		return nil, nil, err
	}
	if at == maxBlockNumber {
		return prefix, database.PrefixEnd(prefix), nil
	}
	return prefix, appendBlockNumber(prefix, at+1), nil
}

// parseRecordKey splits a stored key back into its pair and block number.
func parseRecordKey(raw []byte) (Key, BlockNumber, error) {
	p := serdes.NewBinaryParser(raw)
	var key Key

	prefix, err := p.ReadByte()
	if err != nil {
		return key, 0, err
	}
	if prefix != priceKeyPrefix {
		return key, 0, ErrCorruptKey
	}
	if err := key.DecodeBinary(p); err != nil {
		return key, 0, err
	}
	blockNumber, err := p.ReadUint32()
	if err != nil {
		return key, 0, err
	}
	if p.HasMore() {
		return key, 0, ErrCorruptKey
	}
	return key, blockNumber, nil
}
