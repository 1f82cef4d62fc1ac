package protocol

import (
	"fmt"

	"github.com/danmuck/pimd/internal/protocol/datastream"
)

// Serialize writes the type code, the error fields of a response and then the
// payload. It buffers only; callers flush.
func Serialize(w *datastream.Stream, cmd Command) {
	code := cmd.Type()
	switch c := cmd.(type) {
	case *InvalidCommand:
		code = c.RawType &^ ResponseBit
	case *InvalidResponse:
		code = c.RawType &^ ResponseBit
	}
	if cmd.IsResponse() {
		code |= ResponseBit
	}
	w.WriteUint8(uint8(code))
	if resp, ok := cmd.(Response); ok {
		w.WriteInt32(resp.ErrorCode())
		w.WriteString(resp.ErrorMessage())
	}
	if cmd.IsValid() {
		cmd.encode(w)
	}
}

// Deserialize reads one command or response. A code the catalogue cannot build
// is not an error: it yields an *InvalidCommand or *InvalidResponse holding the
// raw code, and its payload, if any, is left unread.
func Deserialize(r *datastream.Stream) (Command, error) {
	raw, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}
	code := Type(raw)

	var cmd Command
	d := &decoder{s: r}
	if code&ResponseBit != 0 {
		resp := NewResponse(code &^ ResponseBit)
		errCode := d.int32()
		errMessage := d.string()
		resp.SetError(errCode, errMessage)
		cmd = resp
	} else {
		cmd = NewCommand(code)
	}
	if cmd.IsValid() {
		cmd.decode(d)
	}
	if d.err != nil {
		return nil, fmt.Errorf("protocol: decode %s: %w", code, d.err)
	}
	return cmd, nil
}
