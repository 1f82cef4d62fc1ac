package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/danmuck/pimd/internal/notify"
	"github.com/danmuck/pimd/internal/observability"
	"github.com/danmuck/pimd/internal/protocol"
	"github.com/danmuck/pimd/internal/protocol/datastream"
	"github.com/danmuck/pimd/internal/protocol/session"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Service accepts protocol connections and attaches each to the
// notification bus.
type Service struct {
	cfg      ServiceConfig
	manager  *notify.Manager
	appeared time.Time

	connsMu sync.Mutex
	conns   map[net.Conn]struct{}

	clientCount atomic.Int64
}

func NewService() *Service {
	return NewServiceWithConfig(DefaultServiceConfig())
}

func NewServiceWithConfig(cfg ServiceConfig) *Service {
	def := DefaultServiceConfig()
	if strings.TrimSpace(cfg.Network) == "" {
		cfg.Network = def.Network
	}
	if strings.TrimSpace(cfg.ListenAddr) == "" {
		cfg.ListenAddr = def.ListenAddr
	}
	if strings.TrimSpace(cfg.ServerName) == "" {
		cfg.ServerName = def.ServerName
	}
	cfg.Session = cfg.Session.WithDefaults()
	return &Service{
		cfg:      cfg,
		manager:  notify.NewManager(),
		appeared: time.Now(),
		conns:    make(map[net.Conn]struct{}),
	}
}

// Manager exposes the bus so storage code can publish notifications.
func (s *Service) Manager() *notify.Manager {
	return s.manager
}

// Clients reports the number of open protocol connections.
func (s *Service) Clients() int64 {
	return s.clientCount.Load()
}

// Run listens and serves until ctx ends, together with the inspection API
// when one is configured.
func (s *Service) Run(ctx context.Context) error {
	ln, err := s.Listen()
	if err != nil {
		return err
	}
	log.Info().Msgf("server.Service.Run listening network=%s addr=%q", s.cfg.Network, ln.Addr().String())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.Serve(ctx, ln)
	})
	if addr := strings.TrimSpace(s.cfg.AdminListenAddr); addr != "" {
		g.Go(func() error {
			return s.serveAdmin(ctx, addr)
		})
	}
	return g.Wait()
}

// Listen opens the configured listener, removing a stale unix socket first.
func (s *Service) Listen() (net.Listener, error) {
	if s.cfg.Network == "unix" {
		if err := os.Remove(s.cfg.ListenAddr); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	return net.Listen(s.cfg.Network, s.cfg.ListenAddr)
}

// Serve runs the accept loop on ln until ctx ends.
func (s *Service) Serve(ctx context.Context, ln net.Listener) error {
	defer ln.Close()
	go func() {
		<-ctx.Done()
		s.closeAllConns()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		s.trackConn(conn)
		go s.handleConn(ctx, conn)
	}
}

func (s *Service) serveAdmin(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Router()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Info().Msgf("server.Service admin listening addr=%q", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// connTransport hangs up before stopping the writer so a stalled peer
// cannot hold up the drain.
type connTransport struct {
	conn *session.Conn
	out  *session.Outbox
}

func (t connTransport) Enqueue(tag int64, cmd protocol.Command) error {
	return t.out.Enqueue(tag, cmd)
}

func (t connTransport) Close() {
	_ = t.conn.Close()
	t.out.Close()
}

func (s *Service) handleConn(ctx context.Context, nc net.Conn) {
	defer s.untrackConn(nc)

	id := ulid.Make().String()
	logger := observability.ConnLogger("server", id)
	conn := session.NewConn(nc, s.cfg.Session)
	out := session.NewOutbox(conn, s.cfg.Session.SendQueue, func(f session.Frame, err error) {
		if !conn.Connected() || errors.Is(err, datastream.ErrDisconnected) {
			return
		}
		observability.RecordWriteFailure("write")
		logger.Warn().Err(err).Msgf("server.write failed type=%s tag=%d", f.Command.Type(), f.Tag)
	})
	sub := s.manager.NewSubscriber(id, connTransport{conn: conn, out: out}, logger)
	defer sub.Disconnect()

	remote := conn.RemoteAddr()
	active := s.clientCount.Add(1)
	observability.RecordConnection(1)
	logger.Info().Msgf("server.session client connected remote=%q active_clients=%d", remote, active)
	defer func() {
		remaining := s.clientCount.Add(-1)
		observability.RecordConnection(-1)
		logger.Info().Msgf("server.session client disconnected remote=%q active_clients=%d", remote, remaining)
	}()

	sub.WriteCommand(session.HelloTag, s.cfg.hello())

	for {
		f, err := conn.ReadFrame(ctx)
		if err != nil {
			if ctx.Err() != nil || !conn.Connected() || errors.Is(err, datastream.ErrDisconnected) {
				logger.Debug().Msgf("server.handleConn closed err=%v", err)
			} else {
				logger.Warn().Err(err).Msg("server.handleConn read failed")
			}
			return
		}
		observability.RecordCommand(f.Command.Type().String(), f.Command.IsValid())
		if !s.dispatch(sub, f, logger) {
			return
		}
	}
}

// dispatch handles one frame and reports whether the connection stays open.
func (s *Service) dispatch(sub *notify.Subscriber, f session.Frame, logger zerolog.Logger) bool {
	switch cmd := f.Command.(type) {
	case *protocol.CreateSubscriptionCommand:
		if err := sub.Register(cmd.SubscriberName, cmd.Session); err != nil {
			logger.Warn().Err(err).Msgf("server.dispatch create subscription name=%q", cmd.SubscriberName)
			return false
		}
		sub.WriteCommand(f.Tag, &protocol.CreateSubscriptionResponse{})
		return true
	case *protocol.ModifySubscriptionCommand:
		if err := sub.Modify(cmd); err != nil {
			logger.Warn().Err(err).Msg("server.dispatch modify subscription")
			return false
		}
		sub.WriteCommand(f.Tag, &protocol.ModifySubscriptionResponse{})
		return true
	case *protocol.LogoutCommand:
		logger.Debug().Msgf("server.dispatch logout subscriber=%q", sub.Name())
		return false
	default:
		logger.Warn().Msgf("server.dispatch unexpected command type=%s valid=%t tag=%d", f.Command.Type(), f.Command.IsValid(), f.Tag)
		return false
	}
}

func (s *Service) trackConn(conn net.Conn) {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	s.conns[conn] = struct{}{}
}

func (s *Service) untrackConn(conn net.Conn) {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	delete(s.conns, conn)
}

func (s *Service) closeAllConns() {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	for conn := range s.conns {
		_ = conn.Close()
		delete(s.conns, conn)
	}
}
