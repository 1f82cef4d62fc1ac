package session

import "errors"

var (
	ErrHandshake   = errors.New("session: handshake failed")
	ErrOutboxFull  = errors.New("session: outbox full")
	ErrOutboxClose = errors.New("session: outbox closed")
	ErrUnexpected  = errors.New("session: unexpected frame")
)
