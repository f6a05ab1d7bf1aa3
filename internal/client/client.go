// Package client is a framed TCP client for the game server.
package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/DoyleJ11/yaht-backend/internal/types"
	"github.com/DoyleJ11/yaht-backend/internal/wire"
)

var ErrHandshake = errors.New("handshake rejected")

type Client struct {
	wc            *wire.StreamConn
	writeMu       sync.Mutex
	PlayerID      string
	ServerVersion string
}

// Dial connects to addr and completes the Hello/Welcome handshake.
func Dial(ctx context.Context, addr, name, version string) (*Client, error) {
	var d net.Dialer
	nc, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	c := &Client{wc: wire.NewStreamConn(nc, wire.DefaultMaxFrame)}
	if deadline, ok := ctx.Deadline(); ok {
		_ = nc.SetReadDeadline(deadline)
	}

	if err := c.Send(types.Hello{Name: name, Version: version}); err != nil {
		_ = c.Close()
		return nil, err
	}
	m, err := c.Recv()
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	_ = nc.SetReadDeadline(time.Time{})

	switch m := m.(type) {
	case types.Welcome:
		c.PlayerID, c.ServerVersion = m.PlayerID, m.ServerVersion
		return c, nil
	case types.HandshakeError:
		_ = c.Close()
		return nil, fmt.Errorf("%w: %s", ErrHandshake, m.Reason)
	default:
		_ = c.Close()
		return nil, fmt.Errorf("%w: unexpected %s", ErrHandshake, m.Kind())
	}
}

// Send is safe for concurrent use.
func (c *Client) Send(m types.ClientMessage) error {
	b, err := types.EncodeClient(m)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.wc.WriteFrame(b)
}

// Recv blocks for the next server message. Call it from one goroutine.
func (c *Client) Recv() (types.ServerMessage, error) {
	frame, err := c.wc.ReadFrame()
	if err != nil {
		return nil, err
	}
	return types.DecodeServer(frame)
}

func (c *Client) SetReadDeadline(t time.Time) error {
	return c.wc.SetReadDeadline(t)
}

func (c *Client) Close() error { return c.wc.Close() }
