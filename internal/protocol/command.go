package protocol

import "github.com/danmuck/pimd/internal/protocol/datastream"

// Command is implemented by every command, response and notification variant.
// The set of implementations is closed to this package.
type Command interface {
	Type() Type
	IsValid() bool
	IsResponse() bool

	encode(w *datastream.Stream)
	decode(d *decoder)
}

// Response is a Command flowing back to the requester, optionally as an error.
type Response interface {
	Command
	IsError() bool
	ErrorCode() int32
	ErrorMessage() string
	SetError(code int32, message string)
}

type commandBase struct{}

func (commandBase) IsValid() bool               { return true }
func (commandBase) IsResponse() bool            { return false }
func (commandBase) encode(w *datastream.Stream) {}
func (commandBase) decode(d *decoder)           {}

// ResponseBase carries the error fields every response writes before its payload.
type ResponseBase struct {
	errorCode    int32
	errorMessage string
}

func (*ResponseBase) IsValid() bool               { return true }
func (*ResponseBase) IsResponse() bool            { return true }
func (*ResponseBase) encode(w *datastream.Stream) {}
func (*ResponseBase) decode(d *decoder)           {}

func (r *ResponseBase) IsError() bool        { return r.errorCode != 0 || r.errorMessage != "" }
func (r *ResponseBase) ErrorCode() int32     { return r.errorCode }
func (r *ResponseBase) ErrorMessage() string { return r.errorMessage }

func (r *ResponseBase) SetError(code int32, message string) {
	r.errorCode = code
	r.errorMessage = message
}

// InvalidCommand stands in for a command code this catalogue cannot build.
// RawType keeps the code as it was read.
type InvalidCommand struct {
	commandBase
	RawType Type
}

func (*InvalidCommand) Type() Type    { return Invalid }
func (*InvalidCommand) IsValid() bool { return false }

// InvalidResponse stands in for a response code this catalogue cannot build.
type InvalidResponse struct {
	ResponseBase
	RawType Type
}

func (*InvalidResponse) Type() Type    { return Invalid }
func (*InvalidResponse) IsValid() bool { return false }

// NewErrorResponse builds the response for t carrying an error. Types without
// a response form yield an InvalidResponse with the error set.
func NewErrorResponse(t Type, code int32, message string) Response {
	resp := NewResponse(t)
	resp.SetError(code, message)
	return resp
}
