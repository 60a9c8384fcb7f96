// Package interfaces defines the parser and serializer contracts used by
// values that encode themselves in the host binary format.
//
//revive:disable:var-naming
package interfaces

// BinaryParser is an interface that defines the methods for a binary parser.
type BinaryParser interface {
	ReadByte() (byte, error)
	Peek() (byte, error)
	ReadBytes(n int) ([]byte, error)
	HasMore() bool
	ReadVariableLength() (int, error)
	ReadVL() ([]byte, error)
	ReadUint32() (uint32, error)
	ReadUint64() (uint64, error)
}
