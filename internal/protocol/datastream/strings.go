package datastream

import (
	"fmt"

	"golang.org/x/text/encoding/unicode"
)

var utf16LE = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// WriteString writes s as UTF-16 code units prefixed by their byte length.
func (s *Stream) WriteString(v string) {
	if v == "" {
		s.WriteUint32(0)
		return
	}
	encoded, err := utf16LE.NewEncoder().Bytes([]byte(v))
	if err != nil {
		// The encoder substitutes invalid input; this path only covers allocation failures.
		encoded = nil
	}
	s.WriteUint32(uint32(len(encoded)))
	s.wbuf.Write(encoded)
}

// WriteNullableString writes nil as the null string.
func (s *Stream) WriteNullableString(v *string) {
	if v == nil {
		s.WriteUint32(nullLength)
		return
	}
	s.WriteString(*v)
}

// ReadString reads a string; the null string reads as "".
func (s *Stream) ReadString() (string, error) {
	v, err := s.ReadNullableString()
	if err != nil || v == nil {
		return "", err
	}
	return *v, nil
}

// ReadNullableString reads a string, returning nil for the null string.
func (s *Stream) ReadNullableString() (*string, error) {
	length, err := s.ReadUint32()
	if err != nil {
		return nil, err
	}
	if length == nullLength {
		return nil, nil
	}
	if length == 0 {
		empty := ""
		return &empty, nil
	}
	if length%2 != 0 {
		return nil, fmt.Errorf("%w: odd string byte length %d", ErrCorruptData, length)
	}
	raw, err := s.readChunked(int(length))
	if err != nil {
		return nil, err
	}
	decoded, err := utf16LE.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
	}
	out := string(decoded)
	return &out, nil
}

// WriteBytes writes a byte blob; nil is the null blob, []byte{} the empty one.
func (s *Stream) WriteBytes(v []byte) {
	if v == nil {
		s.WriteUint32(nullLength)
		return
	}
	s.WriteUint32(uint32(len(v)))
	s.wbuf.Write(v)
}

// ReadBytes reads a byte blob, returning nil for the null blob.
func (s *Stream) ReadBytes() ([]byte, error) {
	length, err := s.ReadUint32()
	if err != nil {
		return nil, err
	}
	if length == nullLength {
		return nil, nil
	}
	if length == 0 {
		return []byte{}, nil
	}
	return s.readChunked(int(length))
}
