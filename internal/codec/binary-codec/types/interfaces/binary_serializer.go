//revive:disable:var-naming
package interfaces

// BinarySerializer is an interface that defines the methods for a binary serializer.
type BinarySerializer interface {
	WriteByte(b byte) error
	WriteBytes(b []byte)
	WriteVL(b []byte) error
	WriteUint32(v uint32)
	WriteUint64(v uint64)
	GetSink() []byte
}
