// Package ws carries the game protocol over WebSocket: one binary or text
// message per frame, handed to the same session server as raw TCP.
package ws

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/DoyleJ11/yaht-backend/internal/session"
	"github.com/DoyleJ11/yaht-backend/internal/wire"
)

const writeTimeout = 5 * time.Second

// Conn adapts a websocket connection to wire.Conn.
type Conn struct {
	ws       *websocket.Conn
	remote   string
	deadline atomic.Pointer[time.Time]

	closeOnce sync.Once
	closeErr  error
}

var _ wire.Conn = (*Conn)(nil)

func NewConn(c *websocket.Conn, remote string, maxFrame int) *Conn {
	if maxFrame <= 0 {
		maxFrame = wire.DefaultMaxFrame
	}
	c.SetReadLimit(int64(maxFrame))
	return &Conn{ws: c, remote: remote}
}

func (c *Conn) ReadFrame() ([]byte, error) {
	ctx := context.Background()
	if d := c.deadline.Load(); d != nil && !d.IsZero() {
		var cancel context.CancelFunc
		ctx, cancel = context.WithDeadline(ctx, *d)
		defer cancel()
	}
	_, data, err := c.ws.Read(ctx)
	if err != nil {
		if websocket.CloseStatus(err) == websocket.StatusMessageTooBig {
			return nil, wire.ErrFrameTooLarge
		}
		return nil, err
	}
	return data, nil
}

func (c *Conn) WriteFrame(payload []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	return c.ws.Write(ctx, websocket.MessageBinary, payload)
}

func (c *Conn) SetReadDeadline(t time.Time) error {
	c.deadline.Store(&t)
	return nil
}

func (c *Conn) RemoteAddr() string { return c.remote }

func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.ws.Close(websocket.StatusNormalClosure, "bye")
		var ce websocket.CloseError
		if errors.As(c.closeErr, &ce) {
			c.closeErr = nil
		}
	})
	return c.closeErr
}

type HandlerOptions struct {
	// OriginPatterns loosens the same-origin check, e.g. "localhost:*" in dev.
	OriginPatterns []string
}

// Handler upgrades the request and serves it until the client goes away.
func Handler(srv *session.Server, opts HandlerOptions, log *zap.Logger) http.HandlerFunc {
	log = log.Named("ws")
	return func(w http.ResponseWriter, r *http.Request) {
		wsc, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: opts.OriginPatterns,
		})
		if err != nil {
			log.Debug("upgrade failed", zap.String("remote", r.RemoteAddr), zap.Error(err))
			return
		}

		conn := NewConn(wsc, r.RemoteAddr, srv.MaxFrame())
		if err := srv.ServeConn(r.Context(), conn); err != nil && !errors.Is(err, session.ErrServerFull) {
			log.Debug("connection ended", zap.String("remote", r.RemoteAddr), zap.Error(err))
		}
		_ = conn.Close()
	}
}
