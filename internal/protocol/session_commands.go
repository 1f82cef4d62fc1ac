package protocol

import "github.com/danmuck/pimd/internal/protocol/datastream"

// HelloResponse is sent unsolicited by the server right after accepting a
// connection. There is no Hello command.
type HelloResponse struct {
	ResponseBase
	ServerName string
	Message    string
	Protocol   int32
	Generation int64
}

func (*HelloResponse) Type() Type { return Hello }

func (r *HelloResponse) encode(w *datastream.Stream) {
	w.WriteString(r.ServerName)
	w.WriteString(r.Message)
	w.WriteInt32(r.Protocol)
	w.WriteInt64(r.Generation)
}

func (r *HelloResponse) decode(d *decoder) {
	r.ServerName = d.string()
	r.Message = d.string()
	r.Protocol = d.int32()
	r.Generation = d.int64()
}

// SessionMode selects what a logged in connection is used for.
type SessionMode uint8

const (
	CommandMode SessionMode = iota
	NotificationBusMode
)

type LoginCommand struct {
	commandBase
	SessionID   string
	SessionMode SessionMode
}

func (*LoginCommand) Type() Type { return Login }

func (c *LoginCommand) encode(w *datastream.Stream) {
	writeByteString(w, c.SessionID)
	w.WriteUint8(uint8(c.SessionMode))
}

func (c *LoginCommand) decode(d *decoder) {
	c.SessionID = d.byteString()
	c.SessionMode = SessionMode(d.uint8())
}

type LoginResponse struct{ ResponseBase }

func (*LoginResponse) Type() Type { return Login }

type LogoutCommand struct{ commandBase }

func (*LogoutCommand) Type() Type { return Logout }

type LogoutResponse struct{ ResponseBase }

func (*LogoutResponse) Type() Type { return Logout }

// TransactionMode is the step of a storage transaction.
type TransactionMode uint8

const (
	TransactionInvalid TransactionMode = iota
	TransactionBegin
	TransactionCommit
	TransactionRollback
)

type TransactionCommand struct {
	commandBase
	Mode TransactionMode
}

func (*TransactionCommand) Type() Type { return Transaction }

func (c *TransactionCommand) encode(w *datastream.Stream) { w.WriteUint8(uint8(c.Mode)) }
func (c *TransactionCommand) decode(d *decoder)           { c.Mode = TransactionMode(d.uint8()) }

type TransactionResponse struct{ ResponseBase }

func (*TransactionResponse) Type() Type { return Transaction }

// SelectResourceCommand binds the session to the resource with ResourceID.
type SelectResourceCommand struct {
	commandBase
	ResourceID string
}

func (*SelectResourceCommand) Type() Type { return SelectResource }

func (c *SelectResourceCommand) encode(w *datastream.Stream) { w.WriteString(c.ResourceID) }
func (c *SelectResourceCommand) decode(d *decoder)           { c.ResourceID = d.string() }

type SelectResourceResponse struct{ ResponseBase }

func (*SelectResourceResponse) Type() Type { return SelectResource }

// PayloadRequest selects what a StreamPayload command asks for.
type PayloadRequest uint8

const (
	PayloadMetaData PayloadRequest = iota
	PayloadData
)

// StreamPayloadCommand asks the peer for part data during an item transfer.
type StreamPayloadCommand struct {
	commandBase
	PayloadName string
	Request     PayloadRequest
	Destination string
}

func (*StreamPayloadCommand) Type() Type { return StreamPayload }

func (c *StreamPayloadCommand) encode(w *datastream.Stream) {
	writeByteString(w, c.PayloadName)
	w.WriteUint8(uint8(c.Request))
	w.WriteString(c.Destination)
}

func (c *StreamPayloadCommand) decode(d *decoder) {
	c.PayloadName = d.byteString()
	c.Request = PayloadRequest(d.uint8())
	c.Destination = d.string()
}

type StreamPayloadResponse struct {
	ResponseBase
	PayloadName string
	MetaData    PartMetaData
	Data        []byte
}

func (*StreamPayloadResponse) Type() Type { return StreamPayload }

func (r *StreamPayloadResponse) encode(w *datastream.Stream) {
	writeByteString(w, r.PayloadName)
	r.MetaData.encode(w)
	w.WriteBytes(r.Data)
}

func (r *StreamPayloadResponse) decode(d *decoder) {
	r.PayloadName = d.byteString()
	r.MetaData.decode(d)
	r.Data = d.bytes()
}
