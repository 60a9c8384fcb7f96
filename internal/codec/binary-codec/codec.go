// Package binarycodec encodes and decodes values in the host ledger's
// binary format.
package binarycodec

import (
	"errors"
	"fmt"

	"github.com/LeJamon/goPriceFeed/internal/codec/binary-codec/serdes"
	"github.com/LeJamon/goPriceFeed/internal/codec/binary-codec/types/interfaces"
)

// ErrTrailingBytes is returned when input remains after a value was decoded.
var ErrTrailingBytes = errors.New("unexpected trailing bytes")

// Encoder is implemented by values with a host binary encoding.
type Encoder interface {
	EncodeBinary(s interfaces.BinarySerializer) error
}

// Decoder is implemented by values that can be read back from their host
// binary encoding. DecodeBinary must validate the value it reads.
type Decoder interface {
	DecodeBinary(p interfaces.BinaryParser) error
}

// DecodeError marks a failure that happened while decoding input.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Encode returns the binary encoding of v.
func Encode(v Encoder) ([]byte, error) {
	s := serdes.NewBinarySerializer()
	if err := v.EncodeBinary(s); err != nil {
		return nil, err
	}
	return s.GetSink(), nil
}

// Decode reads exactly one value from data into v. Every failure,
// including validation performed by v, is returned as a *DecodeError.
func Decode(data []byte, v Decoder) error {
	p := serdes.NewBinaryParser(data)
	if err := v.DecodeBinary(p); err != nil {
		return &DecodeError{Err: err}
	}
	if p.HasMore() {
		return &DecodeError{Err: ErrTrailingBytes}
	}
	return nil
}

// IsDecodeError reports whether err originated in Decode.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}
