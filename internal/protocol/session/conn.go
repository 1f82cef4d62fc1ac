package session

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/danmuck/pimd/internal/protocol"
	"github.com/danmuck/pimd/internal/protocol/datastream"
)

const (
	// HelloTag carries the greeting the server sends on accept.
	HelloTag int64 = 0
	// NotificationTag carries server-pushed change notifications.
	NotificationTag int64 = 4
)

// Frame is one tagged command or response.
type Frame struct {
	Tag     int64
	Command protocol.Command
}

// Conn frames protocol commands over a net.Conn. ReadFrame belongs to a single
// reader goroutine; WriteFrame may be called from anywhere.
type Conn struct {
	nc  net.Conn
	cfg Config

	r *datastream.Stream

	wmu sync.Mutex
	w   *datastream.Stream

	closed    atomic.Bool
	peerGone  atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

func NewConn(nc net.Conn, cfg Config) *Conn {
	cfg = cfg.WithDefaults()
	r := datastream.NewReader(nc)
	r.SetWaitTimeout(cfg.WaitTimeout)
	return &Conn{
		nc:  nc,
		cfg: cfg,
		r:   r,
		w:   datastream.NewWriter(nc),
	}
}

func (c *Conn) RemoteAddr() string {
	if addr := c.nc.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}

// Connected is false once Close was called or a read or write found the
// peer gone.
func (c *Conn) Connected() bool {
	return !c.closed.Load() && !c.peerGone.Load()
}

func (c *Conn) observe(err error) error {
	if errors.Is(err, datastream.ErrDisconnected) {
		c.peerGone.Store(true)
	}
	return err
}

// Close closes the socket once; later calls return the first result.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.closeErr = c.nc.Close()
	})
	return c.closeErr
}

// WriteFrame serializes and flushes one frame under the write deadline.
func (c *Conn) WriteFrame(tag int64, cmd protocol.Command) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if c.cfg.WriteTimeout > 0 {
		_ = c.nc.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
		defer c.nc.SetWriteDeadline(time.Time{})
	}
	c.w.WriteInt64(tag)
	protocol.Serialize(c.w, cmd)
	return c.observe(c.w.Flush())
}

// ReadFrame waits for the next frame. Waiting for its first byte honors only
// ctx; the rest of the frame must arrive within the wait timeout.
func (c *Conn) ReadFrame(ctx context.Context) (Frame, error) {
	if err := c.awaitFrame(ctx); err != nil {
		return Frame{}, c.observe(err)
	}
	tag, err := c.r.ReadInt64()
	if err != nil {
		return Frame{}, fmt.Errorf("session: read tag: %w", c.observe(err))
	}
	cmd, err := protocol.Deserialize(c.r)
	if err != nil {
		return Frame{}, c.observe(err)
	}
	return Frame{Tag: tag, Command: cmd}, nil
}

func (c *Conn) awaitFrame(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := c.r.WaitForData(1)
		if err == nil {
			return nil
		}
		if !errors.Is(err, datastream.ErrTimeout) {
			return err
		}
	}
}

// SendHello greets a freshly accepted peer.
func (c *Conn) SendHello(hello *protocol.HelloResponse) error {
	return c.WriteFrame(HelloTag, hello)
}

// ReadHello expects the server greeting within the handshake timeout.
func (c *Conn) ReadHello(ctx context.Context) (*protocol.HelloResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.HandshakeTimeout)
	defer cancel()
	c.r.SetWaitTimeout(min(c.cfg.WaitTimeout, c.cfg.HandshakeTimeout))
	defer c.r.SetWaitTimeout(c.cfg.WaitTimeout)

	f, err := c.ReadFrame(ctx)
	if err != nil {
		return nil, fmt.Errorf("session: read hello: %w", err)
	}
	hello, ok := f.Command.(*protocol.HelloResponse)
	if !ok || f.Tag != HelloTag {
		return nil, fmt.Errorf("%w: expected hello, got %s tag=%d", ErrHandshake, f.Command.Type(), f.Tag)
	}
	if hello.IsError() {
		return nil, fmt.Errorf("%w: server refused: %s", ErrHandshake, hello.ErrorMessage())
	}
	return hello, nil
}
