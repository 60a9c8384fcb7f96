package serdes

import (
	"encoding/binary"
	"errors"
)

var ErrUnexpectedEOF = errors.New("unexpected end of input")

// BinaryParser reads host-encoded values from a byte slice.
type BinaryParser struct {
	data []byte
	pos  int
}

func NewBinaryParser(data []byte) *BinaryParser {
	return &BinaryParser{data: data}
}

// ReadByte reads a single byte.
func (p *BinaryParser) ReadByte() (byte, error) {
	if p.pos >= len(p.data) {
		return 0, ErrUnexpectedEOF
	}
	b := p.data[p.pos]
	p.pos++
	return b, nil
}

// Peek returns the next byte without consuming it.
func (p *BinaryParser) Peek() (byte, error) {
	if p.pos >= len(p.data) {
		return 0, ErrUnexpectedEOF
	}
	return p.data[p.pos], nil
}

// ReadBytes reads n bytes. The returned slice is a copy.
func (p *BinaryParser) ReadBytes(n int) ([]byte, error) {
	if n < 0 || n > len(p.data)-p.pos {
		return nil, ErrUnexpectedEOF
	}
	out := make([]byte, n)
	copy(out, p.data[p.pos:p.pos+n])
	p.pos += n
	return out, nil
}

// HasMore reports whether unread bytes remain.
func (p *BinaryParser) HasMore() bool {
	return p.pos < len(p.data)
}

// ReadVariableLength reads a VL length prefix.
func (p *BinaryParser) ReadVariableLength() (int, error) {
	length, n, err := DecodeVL(p.data[p.pos:])
	if err != nil {
		return 0, err
	}
	p.pos += n
	return length, nil
}

// ReadVL reads a VL-prefixed byte string.
func (p *BinaryParser) ReadVL() ([]byte, error) {
	length, err := p.ReadVariableLength()
	if err != nil {
		return nil, err
	}
	return p.ReadBytes(length)
}

func (p *BinaryParser) ReadUint32() (uint32, error) {
	b, err := p.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (p *BinaryParser) ReadUint64() (uint64, error) {
	b, err := p.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}
