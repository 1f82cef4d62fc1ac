package session

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"time"

	"github.com/danmuck/pimd/internal/protocol"
	"github.com/rs/zerolog/log"
)

// Client is the subscriber side of a notification connection. It is not safe
// for concurrent use.
type Client struct {
	conn  *Conn
	hello *protocol.HelloResponse

	nextTag int64
	// notifications that arrived while waiting for a response
	backlog []protocol.ChangeNotification
}

// Dial connects to addr and consumes the server greeting. Failed attempts are
// retried with backoff up to cfg.DialRetries times.
func Dial(ctx context.Context, network, addr string, cfg Config) (*Client, error) {
	cfg = cfg.WithDefaults()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	dialer := net.Dialer{Timeout: cfg.ConnectTimeout}

	var lastErr error
	for attempt := 1; attempt <= cfg.DialRetries; attempt++ {
		if attempt > 1 {
			delay := cfg.Backoff.Delay(attempt-1, rng)
			log.Debug().Msgf("session.dial retry addr=%q attempt=%d delay=%s err=%v", addr, attempt, delay, lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
		nc, err := dialer.DialContext(ctx, network, addr)
		if err != nil {
			lastErr = err
			continue
		}
		c := NewConn(nc, cfg)
		hello, err := c.ReadHello(ctx)
		if err != nil {
			_ = c.Close()
			lastErr = err
			continue
		}
		log.Debug().Msgf("session.dial connected addr=%q server=%q protocol=%d", addr, hello.ServerName, hello.Protocol)
		return &Client{conn: c, hello: hello, nextTag: NotificationTag + 1}, nil
	}
	return nil, fmt.Errorf("session: dial %s: %w", addr, lastErr)
}

// NewClient wraps an already greeted connection.
func NewClient(conn *Conn, hello *protocol.HelloResponse) *Client {
	return &Client{conn: conn, hello: hello, nextTag: NotificationTag + 1}
}

func (c *Client) Hello() *protocol.HelloResponse { return c.hello }
func (c *Client) Close() error                   { return c.conn.Close() }

// CreateSubscription registers this connection under name.
func (c *Client) CreateSubscription(ctx context.Context, name, sessionID string) error {
	_, err := c.roundTrip(ctx, &protocol.CreateSubscriptionCommand{SubscriberName: name, Session: sessionID})
	return err
}

// ModifySubscription sends a filter change and waits for the acknowledgement.
func (c *Client) ModifySubscription(ctx context.Context, cmd *protocol.ModifySubscriptionCommand) error {
	_, err := c.roundTrip(ctx, cmd)
	return err
}

// Logout asks the server to end the session. The server hangs up without a
// response, so this only writes.
func (c *Client) Logout() error {
	tag := c.allocTag()
	return c.conn.WriteFrame(tag, &protocol.LogoutCommand{})
}

// NextNotification returns the next pushed change notification.
func (c *Client) NextNotification(ctx context.Context) (protocol.ChangeNotification, error) {
	if len(c.backlog) > 0 {
		ntf := c.backlog[0]
		c.backlog = c.backlog[1:]
		return ntf, nil
	}
	for {
		f, err := c.conn.ReadFrame(ctx)
		if err != nil {
			return nil, err
		}
		if ntf, ok := f.Command.(protocol.ChangeNotification); ok {
			return ntf, nil
		}
		log.Warn().Msgf("session.client unexpected frame type=%s tag=%d", f.Command.Type(), f.Tag)
	}
}

func (c *Client) allocTag() int64 {
	tag := c.nextTag
	c.nextTag++
	return tag
}

func (c *Client) roundTrip(ctx context.Context, cmd protocol.Command) (protocol.Response, error) {
	tag := c.allocTag()
	if err := c.conn.WriteFrame(tag, cmd); err != nil {
		return nil, err
	}
	for {
		f, err := c.conn.ReadFrame(ctx)
		if err != nil {
			return nil, err
		}
		if ntf, ok := f.Command.(protocol.ChangeNotification); ok && f.Tag == NotificationTag {
			c.backlog = append(c.backlog, ntf)
			continue
		}
		resp, ok := f.Command.(protocol.Response)
		if !ok || f.Tag != tag || resp.Type() != cmd.Type() {
			return nil, fmt.Errorf("%w: want %s response tag=%d, got %s tag=%d", ErrUnexpected, cmd.Type(), tag, f.Command.Type(), f.Tag)
		}
		if resp.IsError() {
			return resp, fmt.Errorf("session: %s failed code=%d: %s", cmd.Type(), resp.ErrorCode(), resp.ErrorMessage())
		}
		return resp, nil
	}
}
