package serdes

import "encoding/binary"

// BinarySerializer appends host-encoded values to an in-memory sink.
type BinarySerializer struct {
	sink []byte
}

func NewBinarySerializer() *BinarySerializer {
	return &BinarySerializer{}
}

func (s *BinarySerializer) WriteByte(b byte) error {
	s.sink = append(s.sink, b)
	return nil
}

func (s *BinarySerializer) WriteBytes(b []byte) {
	s.sink = append(s.sink, b...)
}

// WriteVL writes b preceded by its VL length prefix.
func (s *BinarySerializer) WriteVL(b []byte) error {
	prefix, err := EncodeVL(len(b))
	if err != nil {
		return err
	}
	s.sink = append(s.sink, prefix...)
	s.sink = append(s.sink, b...)
	return nil
}

func (s *BinarySerializer) WriteUint32(v uint32) {
	s.sink = binary.BigEndian.AppendUint32(s.sink, v)
}

func (s *BinarySerializer) WriteUint64(v uint64) {
	s.sink = binary.BigEndian.AppendUint64(s.sink, v)
}

// GetSink returns the bytes written so far.
func (s *BinarySerializer) GetSink() []byte {
	return s.sink
}
