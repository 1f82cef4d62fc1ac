package protocol

import "errors"

var (
	ErrUnexpectedCommand = errors.New("protocol: unexpected command")
	ErrNotNotification   = errors.New("protocol: not a change notification")
)
