package serdes

import "errors"

const (
	// MaxSingleByteLength is the largest length encoded in one prefix byte.
	MaxSingleByteLength = 192
	// MaxDoubleByteLength is the largest length encoded in two prefix bytes.
	MaxDoubleByteLength = 12480
	// MaxVLLength is the largest length a VL prefix can express.
	MaxVLLength = 918744
)

var (
	ErrLengthPrefixTooLong = errors.New("length of value must not exceed 918744 bytes of data")
	ErrInvalidLengthPrefix = errors.New("invalid variable length prefix")
)

// VLSize returns the number of prefix bytes used to encode length, or 0
// when length cannot be encoded.
func VLSize(length int) int {
	switch {
	case length < 0:
		return 0
	case length <= MaxSingleByteLength:
		return 1
	case length <= MaxDoubleByteLength:
		return 2
	case length <= MaxVLLength:
		return 3
	}
	return 0
}

// EncodeVL encodes a length as a 1 to 3 byte VL prefix.
func EncodeVL(length int) ([]byte, error) {
	switch VLSize(length) {
	case 1:
		return []byte{byte(length)}, nil
	case 2:
		length -= MaxSingleByteLength + 1
		return []byte{byte((length >> 8) + 193), byte(length & 0xFF)}, nil
	case 3:
		length -= MaxDoubleByteLength + 1
		return []byte{byte((length >> 16) + 241), byte((length >> 8) & 0xFF), byte(length & 0xFF)}, nil
	}
	return nil, ErrLengthPrefixTooLong
}

// DecodeVL decodes a VL prefix from the start of data and returns the
// length together with the number of prefix bytes consumed.
func DecodeVL(data []byte) (int, int, error) {
	if len(data) == 0 {
		return 0, 0, ErrUnexpectedEOF
	}
	b1 := int(data[0])
	switch {
	case b1 <= 192:
		return b1, 1, nil
	case b1 <= 240:
		if len(data) < 2 {
			return 0, 0, ErrUnexpectedEOF
		}
		return 193 + (b1-193)*256 + int(data[1]), 2, nil
	case b1 <= 254:
		if len(data) < 3 {
			return 0, 0, ErrUnexpectedEOF
		}
		length := 12481 + (b1-241)*65536 + int(data[1])*256 + int(data[2])
		if length > MaxVLLength {
			return 0, 0, ErrInvalidLengthPrefix
		}
		return length, 3, nil
	}
	return 0, 0, ErrInvalidLengthPrefix
}
