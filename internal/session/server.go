// Package session accepts client connections, performs the Hello handshake
// and turns each inbound frame into a room or lobby request. Replies and
// room events reach the client only through its outbound queue.
package session

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"golang.org/x/text/unicode/norm"

	"github.com/DoyleJ11/yaht-backend/internal/hub"
	"github.com/DoyleJ11/yaht-backend/internal/room"
	"github.com/DoyleJ11/yaht-backend/internal/types"
	"github.com/DoyleJ11/yaht-backend/internal/wire"
)

const MaxNameLength = 32

type Config struct {
	MaxConnections   int
	QueueSize        int
	MaxFrame         int
	HandshakeTimeout time.Duration
	ServerVersion    string
}

func (c Config) withDefaults() Config {
	if c.MaxConnections <= 0 {
		c.MaxConnections = 256
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 64
	}
	if c.MaxFrame <= 0 {
		c.MaxFrame = wire.DefaultMaxFrame
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = 10 * time.Second
	}
	if c.ServerVersion == "" {
		c.ServerVersion = "dev"
	}
	return c
}

type Server struct {
	cfg   Config
	hub   *hub.Hub
	conns *Registry
	slots *semaphore.Weighted
	log   *zap.Logger

	// how long a disconnecting client may wait to leave its room
	leaveTimeout time.Duration

	// cancelled by Close; ends handshakes still in progress
	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	closing   bool
	listeners map[net.Listener]struct{}
	wg        sync.WaitGroup
}

func NewServer(cfg Config, h *hub.Hub, log *zap.Logger) *Server {
	cfg = cfg.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:       cfg,
		hub:       h,
		conns:     NewRegistry(),
		slots:     semaphore.NewWeighted(int64(cfg.MaxConnections)),
		log:       log.Named("session"),
		listeners: make(map[net.Listener]struct{}),

		leaveTimeout: 5 * time.Second,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Connections is the number of handshaken clients.
func (s *Server) Connections() int { return s.conns.Len() }

// MaxFrame is the largest payload accepted from a client.
func (s *Server) MaxFrame() int { return s.cfg.MaxFrame }

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts framed TCP connections on ln until ctx is cancelled, then
// closes every connection and waits for their cleanup.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.listeners[ln] = struct{}{}
	s.mu.Unlock()

	s.log.Info("listening", zap.String("addr", ln.Addr().String()), zap.Int("max_connections", s.cfg.MaxConnections))

	stop := context.AfterFunc(ctx, func() { _ = s.Close() })
	defer stop()

	var backoff time.Duration
	for {
		nc, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				_ = s.Close()
				s.wg.Wait()
				return nil
			}
			backoff = min(max(2*backoff, 5*time.Millisecond), time.Second)
			s.log.Warn("accept failed", zap.Error(err), zap.Duration("retry_in", backoff))
			time.Sleep(backoff)
			continue
		}
		backoff = 0

		wc := wire.NewStreamConn(nc, s.cfg.MaxFrame)
		go func() {
			if err := s.ServeConn(ctx, wc); errors.Is(err, ErrServerFull) {
				s.log.Warn("rejecting connection", zap.String("remote", wc.RemoteAddr()), zap.Error(err))
			}
		}()
	}
}

// Close stops all listeners and closes every client connection. Later
// ServeConn calls return ErrServerClosed.
func (s *Server) Close() error {
	s.mu.Lock()
	s.closing = true
	s.cancel()
	var err error
	for ln := range s.listeners {
		if cerr := ln.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
			err = multierr.Append(err, cerr)
		}
		delete(s.listeners, ln)
	}
	s.mu.Unlock()

	s.conns.CloseAll()
	return err
}

// ServeConn runs one client from handshake to cleanup. It takes a
// connection slot first; when none is free the transport is closed
// unread and ErrServerFull is returned. Serve does not return before
// every ServeConn has finished, whichever transport it came from.
func (s *Server) ServeConn(ctx context.Context, wc wire.Conn) error {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		_ = wc.Close()
		return ErrServerClosed
	}
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	if !s.slots.TryAcquire(1) {
		_ = wc.Close()
		return ErrServerFull
	}
	defer s.slots.Release(1)

	stop := context.AfterFunc(ctx, func() { _ = wc.Close() })
	defer stop()
	stopOnClose := context.AfterFunc(s.ctx, func() { _ = wc.Close() })
	defer stopOnClose()

	log := s.log.With(zap.String("remote", wc.RemoteAddr()))
	hello, err := s.handshake(wc)
	if err != nil {
		log.Debug("handshake failed", zap.Error(err))
		_ = wc.Close()
		return err
	}

	c := newConn(uuid.NewString(), hello.Name, wc, s.cfg.QueueSize, log)
	c.log = log.With(zap.String("player_id", c.id), zap.String("name", c.name))
	s.conns.Add(c)
	c.startWriter()
	c.Send(types.Welcome{PlayerID: c.id, ServerVersion: s.cfg.ServerVersion})
	c.log.Info("client connected", zap.String("client_version", hello.Version))

	err = s.readLoop(ctx, c)
	s.cleanup(c)
	if errors.Is(err, errDisconnect) {
		return nil
	}
	return err
}

var errHandshake = errors.New("handshake failed")

// handshake reads exactly one frame, which must be a valid Hello. Anything
// else gets a HandshakeError.
func (s *Server) handshake(wc wire.Conn) (types.Hello, error) {
	if err := wc.SetReadDeadline(time.Now().Add(s.cfg.HandshakeTimeout)); err != nil {
		return types.Hello{}, err
	}
	frame, err := wc.ReadFrame()
	if err != nil {
		return types.Hello{}, err
	}
	_ = wc.SetReadDeadline(time.Time{})

	reject := func(reason string) (types.Hello, error) {
		_ = writeMessage(wc, types.HandshakeError{Reason: reason})
		return types.Hello{}, fmt.Errorf("%w: %s", errHandshake, reason)
	}

	m, err := types.DecodeClient(frame)
	if err != nil {
		return reject("expected Hello")
	}
	hello, ok := m.(types.Hello)
	if !ok {
		return reject("expected Hello, got " + m.Kind())
	}
	name, err := normalizeName(hello.Name)
	if err != nil {
		return reject(err.Error())
	}
	hello.Name = name
	return hello, nil
}

func normalizeName(raw string) (string, error) {
	name := norm.NFC.String(strings.TrimSpace(raw))
	switch {
	case name == "":
		return "", errors.New("name must not be empty")
	case utf8.RuneCountInString(name) > MaxNameLength:
		return "", fmt.Errorf("name must be at most %d characters", MaxNameLength)
	case strings.ContainsFunc(name, unicode.IsControl):
		return "", errors.New("name contains control characters")
	}
	return name, nil
}

func (s *Server) readLoop(ctx context.Context, c *Conn) error {
	for {
		frame, err := c.wc.ReadFrame()
		if err != nil {
			return err
		}
		m, err := types.DecodeClient(frame)
		if err != nil {
			c.log.Debug("bad message", zap.Error(err))
			c.Send(errorReply(err))
			continue
		}
		if err := s.dispatch(ctx, c, m); err != nil {
			if errors.Is(err, errDisconnect) {
				return err
			}
			reply := errorReply(err)
			if reply.Code == types.CodeInternalError {
				c.log.Error("handler failed", zap.String("type", m.Kind()), zap.Error(err))
			} else {
				c.log.Debug("request rejected", zap.String("type", m.Kind()), zap.Error(err))
			}
			c.Send(reply)
		}
	}
}

// cleanup runs on the reader goroutine as the connection goes away, so the
// room and registry are consistent before ServeConn returns.
func (s *Server) cleanup(c *Conn) {
	if c.room != nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.leaveTimeout)
		err := c.room.Leave(ctx, c.id)
		cancel()
		switch {
		case err == nil, errors.Is(err, room.ErrRoomClosed), errors.Is(err, room.ErrNotMember):
		case errors.Is(err, context.DeadlineExceeded):
			c.log.Warn("leave on disconnect timed out, room is not responding",
				zap.String("room_id", c.room.ID()), zap.Duration("timeout", s.leaveTimeout))
		default:
			c.log.Warn("leave on disconnect", zap.String("room_id", c.room.ID()), zap.Error(err))
		}
		c.room = nil
	}
	s.conns.Remove(c.id)
	c.Close()
	c.wg.Wait()
	c.log.Info("client disconnected")
}
