package datastream

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"
)

var (
	ErrProtocol    = errors.New("datastream: protocol error")
	ErrTimeout     = errors.New("datastream: timeout waiting for data")
	ErrCorruptData = errors.New("datastream: corrupt data")
	ErrNoDevice    = errors.New("datastream: no device")

	// ErrDisconnected matches ErrProtocol as well.
	ErrDisconnected = fmt.Errorf("%w: peer disconnected", ErrProtocol)
)

// classifyReadError maps a transport read failure onto the stream error taxonomy.
func classifyReadError(err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	switch {
	case errors.Is(err, os.ErrDeadlineExceeded):
		return ErrTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		return ErrTimeout
	case errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		peerGone(err):
		return ErrDisconnected
	default:
		return fmt.Errorf("%w: %v", ErrProtocol, err)
	}
}

func classifyWriteError(err error) error {
	if peerGone(err) {
		return ErrDisconnected
	}
	return fmt.Errorf("%w: write failed: %v", ErrProtocol, err)
}

// peerGone matches local closes and the resets a socket reports once the
// other side has hung up.
func peerGone(err error) bool {
	return errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNABORTED)
}
