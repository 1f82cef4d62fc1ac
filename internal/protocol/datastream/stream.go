package datastream

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"
)

const (
	// DefaultWaitTimeout bounds a single WaitForData call.
	DefaultWaitTimeout = 30 * time.Second
	// ChunkSize is the largest amount of data a single wait asks for.
	ChunkSize = 1 << 20

	nullLength uint32 = math.MaxUint32
)

type readDeadliner interface {
	SetReadDeadline(t time.Time) error
}

// Stream is a typed reader/writer over one duplex byte connection.
//
// A Stream is not safe for concurrent use. Connections that read and write from
// different goroutines use one Stream per direction.
type Stream struct {
	r  io.Reader
	br *bufio.Reader
	w  io.Writer

	wbuf        bytes.Buffer
	scratch     [8]byte
	waitTimeout time.Duration
}

// New returns a stream reading from and writing to rw.
func New(rw io.ReadWriter) *Stream {
	s := NewReader(rw)
	s.w = rw
	return s
}

// NewReader returns a read-only stream.
func NewReader(r io.Reader) *Stream {
	return &Stream{
		r:           r,
		br:          bufio.NewReaderSize(r, ChunkSize),
		waitTimeout: DefaultWaitTimeout,
	}
}

// NewWriter returns a write-only stream.
func NewWriter(w io.Writer) *Stream {
	return &Stream{w: w, waitTimeout: DefaultWaitTimeout}
}

func (s *Stream) WaitTimeout() time.Duration {
	return s.waitTimeout
}

// SetWaitTimeout changes the bound of WaitForData. Zero or negative waits forever.
func (s *Stream) SetWaitTimeout(d time.Duration) {
	s.waitTimeout = d
}

// Buffered reports how many incoming bytes can be read without blocking.
func (s *Stream) Buffered() int {
	if s.br == nil {
		return 0
	}
	return s.br.Buffered()
}

// Pending reports how many written bytes are waiting for Flush.
func (s *Stream) Pending() int {
	return s.wbuf.Len()
}

// WaitForData blocks until at least n bytes are available. It fails with
// ErrTimeout when nothing arrives within the wait timeout and with
// ErrDisconnected when the peer goes away meanwhile. The deadline only applies
// when the underlying reader supports read deadlines.
func (s *Stream) WaitForData(n int) error {
	if s.br == nil {
		return ErrNoDevice
	}
	if n <= 0 || s.br.Buffered() >= n {
		return nil
	}
	if n > s.br.Size() {
		return fmt.Errorf("%w: wait for %d bytes exceeds chunk size", ErrProtocol, n)
	}
	if d, ok := s.r.(readDeadliner); ok && s.waitTimeout > 0 {
		if err := d.SetReadDeadline(time.Now().Add(s.waitTimeout)); err == nil {
			defer d.SetReadDeadline(time.Time{})
		}
	}
	if _, err := s.br.Peek(n); err != nil {
		return classifyReadError(err)
	}
	return nil
}

// Flush writes all buffered data to the device. Dropping a Stream does not flush.
func (s *Stream) Flush() error {
	if s.w == nil {
		return ErrNoDevice
	}
	if s.wbuf.Len() == 0 {
		return nil
	}
	want := s.wbuf.Len()
	n, err := s.w.Write(s.wbuf.Bytes())
	s.wbuf.Reset()
	if err != nil {
		return classifyWriteError(err)
	}
	if n != want {
		return fmt.Errorf("%w: short write %d of %d bytes", ErrProtocol, n, want)
	}
	return nil
}

// WriteRaw appends b without any length prefix.
func (s *Stream) WriteRaw(b []byte) {
	s.wbuf.Write(b)
}

// ReadRaw reads exactly n bytes without any length prefix, waiting in chunks.
func (s *Stream) ReadRaw(n int) ([]byte, error) {
	return s.readChunked(n)
}

func (s *Stream) WriteBool(v bool) {
	if v {
		s.wbuf.WriteByte(1)
		return
	}
	s.wbuf.WriteByte(0)
}

func (s *Stream) WriteInt8(v int8) {
	s.wbuf.WriteByte(byte(v))
}

func (s *Stream) WriteUint8(v uint8) {
	s.wbuf.WriteByte(v)
}

func (s *Stream) WriteInt16(v int16) {
	s.WriteUint16(uint16(v))
}

func (s *Stream) WriteUint16(v uint16) {
	s.wbuf.Write(binary.LittleEndian.AppendUint16(s.scratch[:0], v))
}

func (s *Stream) WriteInt32(v int32) {
	s.WriteUint32(uint32(v))
}

func (s *Stream) WriteUint32(v uint32) {
	s.wbuf.Write(binary.LittleEndian.AppendUint32(s.scratch[:0], v))
}

func (s *Stream) WriteInt64(v int64) {
	s.WriteUint64(uint64(v))
}

func (s *Stream) WriteUint64(v uint64) {
	s.wbuf.Write(binary.LittleEndian.AppendUint64(s.scratch[:0], v))
}

func (s *Stream) WriteFloat64(v float64) {
	s.WriteUint64(math.Float64bits(v))
}

func (s *Stream) ReadBool() (bool, error) {
	v, err := s.ReadUint8()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

func (s *Stream) ReadInt8() (int8, error) {
	v, err := s.ReadUint8()
	return int8(v), err
}

func (s *Stream) ReadUint8() (uint8, error) {
	b, err := s.readFixed(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (s *Stream) ReadInt16() (int16, error) {
	v, err := s.ReadUint16()
	return int16(v), err
}

func (s *Stream) ReadUint16() (uint16, error) {
	b, err := s.readFixed(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (s *Stream) ReadInt32() (int32, error) {
	v, err := s.ReadUint32()
	return int32(v), err
}

func (s *Stream) ReadUint32() (uint32, error) {
	b, err := s.readFixed(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (s *Stream) ReadInt64() (int64, error) {
	v, err := s.ReadUint64()
	return int64(v), err
}

func (s *Stream) ReadUint64() (uint64, error) {
	b, err := s.readFixed(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (s *Stream) ReadFloat64() (float64, error) {
	v, err := s.ReadUint64()
	return math.Float64frombits(v), err
}

// PeekUint8 returns the next byte without consuming it.
func (s *Stream) PeekUint8() (uint8, error) {
	if err := s.WaitForData(1); err != nil {
		return 0, err
	}
	b, err := s.br.Peek(1)
	if err != nil {
		return 0, classifyReadError(err)
	}
	return b[0], nil
}

func (s *Stream) readFixed(n int) ([]byte, error) {
	if err := s.WaitForData(n); err != nil {
		return nil, err
	}
	buf := s.scratch[:n]
	if _, err := io.ReadFull(s.br, buf); err != nil {
		return nil, classifyReadError(err)
	}
	return buf, nil
}

// readChunked reads n bytes waiting for at most ChunkSize bytes at a time.
func (s *Stream) readChunked(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative length %d", ErrCorruptData, n)
	}
	out := make([]byte, 0, min(n, ChunkSize))
	for remaining := n; remaining > 0; {
		chunk := min(remaining, ChunkSize)
		if err := s.WaitForData(chunk); err != nil {
			return nil, err
		}
		start := len(out)
		out = append(out, make([]byte, chunk)...)
		if _, err := io.ReadFull(s.br, out[start:]); err != nil {
			return nil, classifyReadError(err)
		}
		remaining -= chunk
	}
	return out, nil
}
