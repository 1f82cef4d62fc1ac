package datastream

import (
	"bytes"
	"errors"
	"io"
	"net"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/danmuck/pimd/internal/testutil/testlog"
)

func roundTrip(t *testing.T, write func(*Stream)) *Stream {
	t.Helper()
	var buf bytes.Buffer
	w := NewWriter(&buf)
	write(w)
	if err := w.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	return NewReader(&buf)
}

func TestPrimitiveRoundTrip(t *testing.T) {
	testlog.Start(t)
	r := roundTrip(t, func(s *Stream) {
		s.WriteBool(true)
		s.WriteInt8(-5)
		s.WriteUint8(200)
		s.WriteInt16(-1234)
		s.WriteUint16(65000)
		s.WriteInt32(-70000)
		s.WriteUint32(4000000000)
		s.WriteInt64(-1 << 40)
		s.WriteUint64(1 << 63)
		s.WriteFloat64(3.5)
	})
	if v, err := r.ReadBool(); err != nil || !v {
		t.Fatalf("bool got=%v err=%v", v, err)
	}
	if v, err := r.ReadInt8(); err != nil || v != -5 {
		t.Fatalf("int8 got=%v err=%v", v, err)
	}
	if v, err := r.ReadUint8(); err != nil || v != 200 {
		t.Fatalf("uint8 got=%v err=%v", v, err)
	}
	if v, err := r.ReadInt16(); err != nil || v != -1234 {
		t.Fatalf("int16 got=%v err=%v", v, err)
	}
	if v, err := r.ReadUint16(); err != nil || v != 65000 {
		t.Fatalf("uint16 got=%v err=%v", v, err)
	}
	if v, err := r.ReadInt32(); err != nil || v != -70000 {
		t.Fatalf("int32 got=%v err=%v", v, err)
	}
	if v, err := r.ReadUint32(); err != nil || v != 4000000000 {
		t.Fatalf("uint32 got=%v err=%v", v, err)
	}
	if v, err := r.ReadInt64(); err != nil || v != -1<<40 {
		t.Fatalf("int64 got=%v err=%v", v, err)
	}
	if v, err := r.ReadUint64(); err != nil || v != 1<<63 {
		t.Fatalf("uint64 got=%v err=%v", v, err)
	}
	if v, err := r.ReadFloat64(); err != nil || v != 3.5 {
		t.Fatalf("float64 got=%v err=%v", v, err)
	}
}

func TestIntegersAreLittleEndian(t *testing.T) {
	testlog.Start(t)
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.WriteUint32(0x01020304)
	if err := w.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), []byte{4, 3, 2, 1}) {
		t.Fatalf("unexpected bytes % x", buf.Bytes())
	}
}

func TestStringRoundTrip(t *testing.T) {
	testlog.Start(t)
	cases := []string{"", "hello", "Grüße 東京 \U0001F600"}
	for _, want := range cases {
		r := roundTrip(t, func(s *Stream) { s.WriteString(want) })
		got, err := r.ReadString()
		if err != nil {
			t.Fatalf("read %q: %v", want, err)
		}
		if got != want {
			t.Fatalf("got=%q want=%q", got, want)
		}
	}
}

func TestStringByteLengthIsUTF16(t *testing.T) {
	testlog.Start(t)
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.WriteString("ab")
	if err := w.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	want := []byte{4, 0, 0, 0, 'a', 0, 'b', 0}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("unexpected bytes % x", buf.Bytes())
	}
}

func TestNullableString(t *testing.T) {
	testlog.Start(t)
	empty := ""
	r := roundTrip(t, func(s *Stream) {
		s.WriteNullableString(nil)
		s.WriteNullableString(&empty)
		s.WriteNullableString(nil)
	})
	v, err := r.ReadNullableString()
	if err != nil || v != nil {
		t.Fatalf("expected null string got=%v err=%v", v, err)
	}
	v, err = r.ReadNullableString()
	if err != nil || v == nil || *v != "" {
		t.Fatalf("expected empty string got=%v err=%v", v, err)
	}
	plain, err := r.ReadString()
	if err != nil || plain != "" {
		t.Fatalf("null as plain string got=%q err=%v", plain, err)
	}
}

func TestOddStringLengthIsCorrupt(t *testing.T) {
	testlog.Start(t)
	r := NewReader(bytes.NewReader([]byte{3, 0, 0, 0, 'a', 0, 'b'}))
	if _, err := r.ReadString(); !errors.Is(err, ErrCorruptData) {
		t.Fatalf("expected corrupt data, got %v", err)
	}
}

func TestBytesNullAndEmpty(t *testing.T) {
	testlog.Start(t)
	r := roundTrip(t, func(s *Stream) {
		s.WriteBytes(nil)
		s.WriteBytes([]byte{})
		s.WriteBytes([]byte{0, 1, 0, 2})
	})
	v, err := r.ReadBytes()
	if err != nil || v != nil {
		t.Fatalf("expected null blob got=%v err=%v", v, err)
	}
	v, err = r.ReadBytes()
	if err != nil || v == nil || len(v) != 0 {
		t.Fatalf("expected empty blob got=%v err=%v", v, err)
	}
	v, err = r.ReadBytes()
	if err != nil || !bytes.Equal(v, []byte{0, 1, 0, 2}) {
		t.Fatalf("unexpected blob got=%v err=%v", v, err)
	}
}

func TestLargeBlobIsReadInChunks(t *testing.T) {
	testlog.Start(t)
	blob := bytes.Repeat([]byte{0xab}, ChunkSize*2+17)
	r := roundTrip(t, func(s *Stream) { s.WriteBytes(blob) })
	got, err := r.ReadBytes()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, blob) {
		t.Fatalf("blob mismatch len=%d", len(got))
	}
}

func TestTimeRoundTrip(t *testing.T) {
	testlog.Start(t)
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatalf("load zone: %v", err)
	}
	cases := []struct {
		name string
		in   time.Time
		spec TimeSpec
	}{
		{"utc", time.Date(2024, 2, 29, 13, 14, 15, 678000000, time.UTC), SpecUTC},
		{"before epoch", time.Date(1901, 12, 13, 0, 0, 1, 0, time.UTC), SpecUTC},
		{"offset", time.Date(2020, 5, 1, 8, 30, 0, 0, time.FixedZone("", 2*3600)), SpecOffsetFromUTC},
		{"zone", time.Date(2021, 10, 31, 1, 2, 3, 0, berlin), SpecTimeZone},
		{"ambiguous wall clock", time.Date(2021, 10, 31, 2, 30, 0, 0, berlin).Add(-time.Hour), SpecOffsetFromUTC},
		{"fixed zone named like a real one", time.Date(2024, 7, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600)), SpecOffsetFromUTC},
		{"fixed zone matching the real one", time.Date(2024, 1, 15, 12, 0, 0, 0, time.FixedZone("CET", 3600)), SpecTimeZone},
		{"local", time.Date(2022, 1, 1, 0, 0, 0, 0, time.Local), SpecLocalTime},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := NewWriter(&buf)
			w.WriteTime(tc.in)
			if err := w.Flush(); err != nil {
				t.Fatalf("flush: %v", err)
			}
			tag := NewReader(bytes.NewReader(buf.Bytes()[12:]))
			if spec, err := tag.ReadInt32(); err != nil || TimeSpec(spec) != tc.spec {
				t.Fatalf("spec got=%d want=%d err=%v", spec, tc.spec, err)
			}
			got, err := NewReader(&buf).ReadTime()
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if !got.Equal(tc.in) {
				t.Fatalf("got=%v want=%v", got, tc.in)
			}
		})
	}
}

func TestJulianDayOfEpoch(t *testing.T) {
	testlog.Start(t)
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.WriteTime(time.Unix(0, 0).UTC())
	if err := w.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	jd, err := NewReader(bytes.NewReader(buf.Bytes())).ReadInt64()
	if err != nil || jd != 2440588 {
		t.Fatalf("jd got=%d err=%v", jd, err)
	}
}

func TestZeroTimeRoundTrip(t *testing.T) {
	testlog.Start(t)
	r := roundTrip(t, func(s *Stream) { s.WriteTime(time.Time{}) })
	got, err := r.ReadTime()
	if err != nil || !got.IsZero() {
		t.Fatalf("expected zero time got=%v err=%v", got, err)
	}
}

func TestContainersRoundTrip(t *testing.T) {
	testlog.Start(t)
	r := roundTrip(t, func(s *Stream) {
		WriteList(s, []int64{3, 1, 2}, (*Stream).WriteInt64)
		WriteList(s, []string{}, (*Stream).WriteString)
		WriteSet(s, map[string]struct{}{"b": {}, "a": {}}, (*Stream).WriteString)
		WriteMap(s, map[string]int32{"x": 1, "y": -2}, (*Stream).WriteString, (*Stream).WriteInt32)
	})
	list, err := ReadList(r, (*Stream).ReadInt64)
	if err != nil || len(list) != 3 || list[0] != 3 || list[2] != 2 {
		t.Fatalf("list got=%v err=%v", list, err)
	}
	empty, err := ReadList(r, (*Stream).ReadString)
	if err != nil || empty != nil {
		t.Fatalf("empty list should read back as nil got=%#v err=%v", empty, err)
	}
	set, err := ReadSet(r, (*Stream).ReadString)
	if err != nil || len(set) != 2 {
		t.Fatalf("set got=%v err=%v", set, err)
	}
	if _, ok := set["a"]; !ok {
		t.Fatalf("set missing member: %v", set)
	}
	m, err := ReadMap(r, (*Stream).ReadString, (*Stream).ReadInt32)
	if err != nil || m["x"] != 1 || m["y"] != -2 {
		t.Fatalf("map got=%v err=%v", m, err)
	}
}

func TestTruncatedListFails(t *testing.T) {
	testlog.Start(t)
	r := NewReader(bytes.NewReader([]byte{2, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0}))
	if _, err := ReadList(r, (*Stream).ReadInt64); !errors.Is(err, ErrDisconnected) {
		t.Fatalf("expected disconnect error, got %v", err)
	}
}

func TestWaitForDataTimesOut(t *testing.T) {
	testlog.Start(t)
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	r := NewReader(server)
	r.SetWaitTimeout(50 * time.Millisecond)
	err := r.WaitForData(4)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestWaitForDataSeesDisconnect(t *testing.T) {
	testlog.Start(t)
	client, server := net.Pipe()
	defer server.Close()

	r := NewReader(server)
	go func() {
		_, _ = client.Write([]byte{1})
		_ = client.Close()
	}()
	err := r.WaitForData(4)
	if !errors.Is(err, ErrDisconnected) || !errors.Is(err, ErrProtocol) {
		t.Fatalf("expected disconnect, got %v", err)
	}
}

func TestWaitForDataAcrossWrites(t *testing.T) {
	testlog.Start(t)
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		w := NewWriter(client)
		w.WriteInt32(7)
		_ = w.Flush()
		time.Sleep(10 * time.Millisecond)
		w.WriteString("late")
		_ = w.Flush()
	}()
	r := NewReader(server)
	if v, err := r.ReadInt32(); err != nil || v != 7 {
		t.Fatalf("int32 got=%d err=%v", v, err)
	}
	if v, err := r.ReadString(); err != nil || v != "late" {
		t.Fatalf("string got=%q err=%v", v, err)
	}
}

type shortWriter struct{}

func (shortWriter) Write(p []byte) (int, error) {
	return len(p) / 2, nil
}

func TestShortWriteIsProtocolError(t *testing.T) {
	testlog.Start(t)
	w := NewWriter(shortWriter{})
	w.WriteString("truncated")
	if err := w.Flush(); !errors.Is(err, ErrProtocol) {
		t.Fatalf("expected protocol error, got %v", err)
	}
}

type failingWriter struct{ err error }

func (w failingWriter) Write([]byte) (int, error) { return 0, w.err }

func TestPeerResetIsDisconnect(t *testing.T) {
	testlog.Start(t)
	reset := &net.OpError{Op: "write", Net: "tcp", Err: os.NewSyscallError("write", syscall.ECONNRESET)}
	for _, err := range []error{reset, syscall.EPIPE, io.ErrClosedPipe} {
		w := NewWriter(failingWriter{err: err})
		w.WriteInt32(1)
		if got := w.Flush(); !errors.Is(got, ErrDisconnected) {
			t.Fatalf("write error %v: expected disconnect, got %v", err, got)
		}
	}
	w := NewWriter(failingWriter{err: errors.New("disk on fire")})
	w.WriteInt32(1)
	if got := w.Flush(); errors.Is(got, ErrDisconnected) || !errors.Is(got, ErrProtocol) {
		t.Fatalf("expected plain protocol error, got %v", got)
	}
}

func TestWriterWithoutDevice(t *testing.T) {
	testlog.Start(t)
	r := NewReader(strings.NewReader(""))
	r.WriteInt8(1)
	if err := r.Flush(); !errors.Is(err, ErrNoDevice) {
		t.Fatalf("expected no device, got %v", err)
	}
	w := NewWriter(io.Discard)
	if _, err := w.ReadInt8(); !errors.Is(err, ErrNoDevice) {
		t.Fatalf("expected no device on read, got %v", err)
	}
}
