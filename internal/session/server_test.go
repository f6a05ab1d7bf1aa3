package session

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/DoyleJ11/yaht-backend/internal/client"
	"github.com/DoyleJ11/yaht-backend/internal/hub"
	"github.com/DoyleJ11/yaht-backend/internal/room"
	"github.com/DoyleJ11/yaht-backend/internal/types"
	"github.com/DoyleJ11/yaht-backend/internal/wire"
)

func init() {
	room.PasswordCost = bcrypt.MinCost
}

const within = 2 * time.Second

// startServer serves on a loopback port until the test ends.
func startServer(t *testing.T, cfg Config) (string, *Server) {
	t.Helper()
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "test"
	}
	ctx, cancel := context.WithCancel(context.Background())
	h := hub.NewHub(ctx, hub.Options{}, zap.NewNop())
	srv := NewServer(cfg, h, zap.NewNop())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(within):
			t.Errorf("server did not stop")
		}
	})
	return ln.Addr().String(), srv
}

func dial(t *testing.T, addr, name string) *client.Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), within)
	defer cancel()
	c, err := client.Dial(ctx, addr, name, "test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func send(t *testing.T, c *client.Client, m types.ClientMessage) {
	t.Helper()
	require.NoError(t, c.Send(m))
}

func recv(t *testing.T, c *client.Client) types.ServerMessage {
	t.Helper()
	require.NoError(t, c.SetReadDeadline(time.Now().Add(within)))
	m, err := c.Recv()
	require.NoError(t, err)
	return m
}

// expect receives the next message and requires it to be a T.
func expect[T types.ServerMessage](t *testing.T, c *client.Client) T {
	t.Helper()
	m := recv(t, c)
	got, ok := m.(T)
	require.Truef(t, ok, "want %T, got %T %+v", *new(T), m, m)
	return got
}

// waitFor skips messages until one is a T accepted by match.
func waitFor[T types.ServerMessage](t *testing.T, c *client.Client, match func(T) bool) T {
	t.Helper()
	deadline := time.Now().Add(within)
	for time.Now().Before(deadline) {
		if got, ok := recv(t, c).(T); ok && (match == nil || match(got)) {
			return got
		}
	}
	t.Fatalf("timed out waiting for %T", *new(T))
	var zero T
	return zero
}

func expectError(t *testing.T, c *client.Client, code types.ErrorCode) {
	t.Helper()
	e := expect[types.ErrorMessage](t, c)
	assert.Equal(t, code, e.Code, e.Message)
}

// rawConn skips the client package to speak arbitrary frames.
func rawConn(t *testing.T, addr string) *wire.StreamConn {
	t.Helper()
	nc, err := net.DialTimeout("tcp", addr, within)
	require.NoError(t, err)
	wc := wire.NewStreamConn(nc, wire.DefaultMaxFrame)
	t.Cleanup(func() { _ = wc.Close() })
	require.NoError(t, wc.SetReadDeadline(time.Now().Add(within)))
	return wc
}

func createRoom(t *testing.T, c *client.Client, name string, max int) types.RoomJoined {
	t.Helper()
	send(t, c, types.CreateRoom{Name: name, MaxPlayers: max})
	return expect[types.RoomJoined](t, c)
}

func TestHandshake_Welcome(t *testing.T) {
	addr, srv := startServer(t, Config{})
	c := dial(t, addr, "  Ana  ")
	assert.NotEmpty(t, c.PlayerID)
	assert.Equal(t, "test", c.ServerVersion)

	require.Eventually(t, func() bool { return srv.Connections() == 1 }, within, 10*time.Millisecond)

	send(t, c, types.Ping{})
	expect[types.Pong](t, c)

	send(t, c, types.Hello{Name: "again"})
	expectError(t, c, types.CodeInvalidAction)
}

func TestHandshake_RejectsOtherFirstMessage(t *testing.T) {
	addr, _ := startServer(t, Config{})
	wc := rawConn(t, addr)

	b, err := types.EncodeClient(types.ListRooms{})
	require.NoError(t, err)
	require.NoError(t, wc.WriteFrame(b))

	frame, err := wc.ReadFrame()
	require.NoError(t, err)
	m, err := types.DecodeServer(frame)
	require.NoError(t, err)
	require.IsType(t, types.HandshakeError{}, m)

	_, err = wc.ReadFrame()
	assert.Error(t, err)
}

func TestHandshake_BadNames(t *testing.T) {
	addr, _ := startServer(t, Config{})
	for _, name := range []string{"", "   ", strings.Repeat("x", MaxNameLength+1), "a\x00b"} {
		ctx, cancel := context.WithTimeout(context.Background(), within)
		_, err := client.Dial(ctx, addr, name, "test")
		cancel()
		require.ErrorIs(t, err, client.ErrHandshake, "name %q", name)
	}

	c := dial(t, addr, strings.Repeat("é", MaxNameLength))
	assert.NotEmpty(t, c.PlayerID)
}

func TestServer_ConnectionCap(t *testing.T) {
	addr, srv := startServer(t, Config{MaxConnections: 1})
	first := dial(t, addr, "Ana")

	wc := rawConn(t, addr)
	_, err := wc.ReadFrame()
	require.Error(t, err, "over-cap connection should be closed without a reply")

	require.NoError(t, first.Close())
	require.Eventually(t, func() bool { return srv.Connections() == 0 }, within, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()
		c, err := client.Dial(ctx, addr, "Bo", "test")
		if err != nil {
			return false
		}
		_ = c.Close()
		return true
	}, within, 20*time.Millisecond)
}

func TestServer_BadFramesAreReported(t *testing.T) {
	addr, _ := startServer(t, Config{})
	c := dial(t, addr, "Ana")
	wc := rawConn(t, addr)

	hello, err := types.EncodeClient(types.Hello{Name: "Raw"})
	require.NoError(t, err)
	require.NoError(t, wc.WriteFrame(hello))
	_, err = wc.ReadFrame()
	require.NoError(t, err)

	for _, raw := range []string{`not json`, `{"type":"Teleport"}`, `{"type":"ScoreCategory","payload":{"category":"Sevens"}}`} {
		require.NoError(t, wc.WriteFrame([]byte(raw)))
		frame, err := wc.ReadFrame()
		require.NoError(t, err)
		m, err := types.DecodeServer(frame)
		require.NoError(t, err)
		e, ok := m.(types.ErrorMessage)
		require.True(t, ok, "%+v", m)
		assert.Equal(t, types.CodeInvalidAction, e.Code)
	}

	send(t, c, types.RollDice{})
	expectError(t, c, types.CodeInvalidAction)
}

func TestServer_OversizedFrameDropsConnection(t *testing.T) {
	addr, _ := startServer(t, Config{MaxFrame: 1024})
	wc := wire.NewStreamConn(mustDial(t, addr), 1<<20)
	t.Cleanup(func() { _ = wc.Close() })
	require.NoError(t, wc.SetReadDeadline(time.Now().Add(within)))

	hello, err := types.EncodeClient(types.Hello{Name: "Big"})
	require.NoError(t, err)
	require.NoError(t, wc.WriteFrame(hello))
	_, err = wc.ReadFrame()
	require.NoError(t, err)

	require.NoError(t, wc.WriteFrame(make([]byte, 4096)))
	_, err = wc.ReadFrame()
	assert.Error(t, err)
}

func mustDial(t *testing.T, addr string) net.Conn {
	t.Helper()
	nc, err := net.DialTimeout("tcp", addr, within)
	require.NoError(t, err)
	return nc
}
