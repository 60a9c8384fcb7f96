package symbol

import (
	"encoding/json"

	"github.com/LeJamon/goPriceFeed/internal/codec/binary-codec/types/interfaces"
)

// EncodeBinary writes the symbol as a VL-prefixed string. The ceiling is
// not part of the encoding.
func (s Symbol[L, S]) EncodeBinary(w interfaces.BinarySerializer) error {
	return w.WriteVL([]byte(s.value))
}

// DecodeBinary reads a VL-prefixed string and validates it as New does.
func (s *Symbol[L, S]) DecodeBinary(p interfaces.BinaryParser) error {
	b, err := p.ReadVL()
	if err != nil {
		return err
	}
	decoded, err := New[L](S(b))
	if err != nil {
		return err
	}
	*s = decoded
	return nil
}

func (s Symbol[L, S]) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s.value))
}

func (s *Symbol[L, S]) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded, err := New[L](S(raw))
	if err != nil {
		return err
	}
	*s = decoded
	return nil
}
