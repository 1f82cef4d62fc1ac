package protocol

import (
	"time"

	"github.com/danmuck/pimd/internal/protocol/datastream"
	"github.com/danmuck/pimd/internal/protocol/imapset"
	"github.com/danmuck/pimd/internal/protocol/scope"
)

// decoder wraps a stream with a sticky error so payload decoders read field
// after field and check once at the end.
type decoder struct {
	s   *datastream.Stream
	err error
}

func readWith[T any](d *decoder, read func(*datastream.Stream) (T, error)) T {
	var zero T
	if d.err != nil {
		return zero
	}
	v, err := read(d.s)
	if err != nil {
		d.err = err
		return zero
	}
	return v
}

func decodeList[T any](d *decoder, read func(*decoder) T) []T {
	n := d.uint32()
	if d.err != nil || n == 0 {
		return nil
	}
	out := make([]T, 0, min(int(n), 4096))
	for i := uint32(0); i < n; i++ {
		v := read(d)
		if d.err != nil {
			return nil
		}
		out = append(out, v)
	}
	return out
}

func (d *decoder) bool() bool         { return readWith(d, (*datastream.Stream).ReadBool) }
func (d *decoder) int8() int8         { return readWith(d, (*datastream.Stream).ReadInt8) }
func (d *decoder) uint8() uint8       { return readWith(d, (*datastream.Stream).ReadUint8) }
func (d *decoder) int32() int32       { return readWith(d, (*datastream.Stream).ReadInt32) }
func (d *decoder) uint32() uint32     { return readWith(d, (*datastream.Stream).ReadUint32) }
func (d *decoder) int64() int64       { return readWith(d, (*datastream.Stream).ReadInt64) }
func (d *decoder) string() string     { return readWith(d, (*datastream.Stream).ReadString) }
func (d *decoder) bytes() []byte      { return readWith(d, (*datastream.Stream).ReadBytes) }
func (d *decoder) time() time.Time    { return readWith(d, (*datastream.Stream).ReadTime) }
func (d *decoder) scope() scope.Scope { return readWith(d, scope.Read) }
func (d *decoder) set() imapset.Set   { return readWith(d, imapset.Read) }

// byteString reads a blob holding an identifier such as a session id or a flag.
func (d *decoder) byteString() string {
	return string(d.bytes())
}

func (d *decoder) strings() []string {
	return readWith(d, func(s *datastream.Stream) ([]string, error) {
		return datastream.ReadList(s, (*datastream.Stream).ReadString)
	})
}

func (d *decoder) byteStrings() []string {
	return readWith(d, func(s *datastream.Stream) ([]string, error) {
		return datastream.ReadList(s, readByteString)
	})
}

func (d *decoder) int64s() []int64 {
	return readWith(d, func(s *datastream.Stream) ([]int64, error) {
		return datastream.ReadList(s, (*datastream.Stream).ReadInt64)
	})
}

func (d *decoder) attributes() Attributes {
	return readWith(d, func(s *datastream.Stream) (Attributes, error) {
		m, err := datastream.ReadMap(s, readByteString, (*datastream.Stream).ReadBytes)
		if len(m) == 0 {
			return nil, err
		}
		return m, err
	})
}

func writeByteString(w *datastream.Stream, v string) {
	w.WriteBytes([]byte(v))
}

func readByteString(r *datastream.Stream) (string, error) {
	b, err := r.ReadBytes()
	return string(b), err
}

func writeStrings(w *datastream.Stream, v []string) {
	datastream.WriteList(w, v, (*datastream.Stream).WriteString)
}

func writeByteStrings(w *datastream.Stream, v []string) {
	datastream.WriteList(w, v, writeByteString)
}

func writeInt64s(w *datastream.Stream, v []int64) {
	datastream.WriteList(w, v, (*datastream.Stream).WriteInt64)
}

func writeAttributes(w *datastream.Stream, v Attributes) {
	datastream.WriteMap(w, v, writeByteString, (*datastream.Stream).WriteBytes)
}
