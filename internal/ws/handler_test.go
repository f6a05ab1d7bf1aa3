package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DoyleJ11/yaht-backend/internal/hub"
	"github.com/DoyleJ11/yaht-backend/internal/session"
	"github.com/DoyleJ11/yaht-backend/internal/types"
)

func newTestServer(t *testing.T, cfg session.Config) (string, *session.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	h := hub.NewHub(ctx, hub.Options{}, zap.NewNop())
	srv := session.NewServer(cfg, h, zap.NewNop())
	ts := httptest.NewServer(Handler(srv, HandlerOptions{}, zap.NewNop()))
	t.Cleanup(func() {
		_ = srv.Close()
		ts.Close()
		cancel()
	})
	return "ws" + strings.TrimPrefix(ts.URL, "http"), srv
}

func wsDial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.CloseNow() })
	return c
}

func write(t *testing.T, c *websocket.Conn, m types.ClientMessage) {
	t.Helper()
	b, err := types.EncodeClient(m)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.Write(ctx, websocket.MessageText, b))
}

func read(t *testing.T, c *websocket.Conn) types.ServerMessage {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	typ, b, err := c.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, websocket.MessageBinary, typ)
	m, err := types.DecodeServer(b)
	require.NoError(t, err)
	return m
}

func TestHandler_HandshakeAndRoom(t *testing.T) {
	url, srv := newTestServer(t, session.Config{ServerVersion: "ws-test"})
	c := wsDial(t, url)

	write(t, c, types.Hello{Name: "Ana", Version: "1"})
	welcome, ok := read(t, c).(types.Welcome)
	require.True(t, ok)
	assert.Equal(t, "ws-test", welcome.ServerVersion)
	assert.NotEmpty(t, welcome.PlayerID)
	assert.Equal(t, 1, srv.Connections())

	write(t, c, types.CreateRoom{Name: "web", MaxPlayers: 2})
	joined, ok := read(t, c).(types.RoomJoined)
	require.True(t, ok)
	assert.Equal(t, "web", joined.Room.Name)
	assert.Equal(t, welcome.PlayerID, joined.Room.HostID)

	write(t, c, types.Ping{})
	_, ok = read(t, c).(types.Pong)
	assert.True(t, ok)
}

func TestHandler_RejectsNonHello(t *testing.T) {
	url, _ := newTestServer(t, session.Config{})
	c := wsDial(t, url)

	write(t, c, types.ListRooms{})
	_, ok := read(t, c).(types.HandshakeError)
	assert.True(t, ok)
}

func TestHandler_OversizedMessageClosesConnection(t *testing.T) {
	url, srv := newTestServer(t, session.Config{MaxFrame: 256})
	c := wsDial(t, url)

	write(t, c, types.Hello{Name: "Ana"})
	_, ok := read(t, c).(types.Welcome)
	require.True(t, ok)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.Write(ctx, websocket.MessageBinary, make([]byte, 1024)))
	_, _, err := c.Read(ctx)
	require.Error(t, err)
	require.Eventually(t, func() bool { return srv.Connections() == 0 }, 2*time.Second, 10*time.Millisecond)
}

// readUntil skips messages until one is a T, failing if none arrives in d.
func readUntil[T types.ServerMessage](t *testing.T, c *websocket.Conn, d time.Duration) T {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	for {
		_, b, err := c.Read(ctx)
		require.NoError(t, err, "waiting for %T", *new(T))
		m, err := types.DecodeServer(b)
		require.NoError(t, err)
		if got, ok := m.(T); ok {
			return got
		}
	}
}

func TestHandler_SlowReaderDoesNotStallRoom(t *testing.T) {
	url, srv := newTestServer(t, session.Config{QueueSize: 2})

	slow := wsDial(t, url)
	write(t, slow, types.Hello{Name: "Slow"})
	_, ok := read(t, slow).(types.Welcome)
	require.True(t, ok)
	write(t, slow, types.CreateRoom{Name: "web", MaxPlayers: 2})
	joined, ok := read(t, slow).(types.RoomJoined)
	require.True(t, ok)
	// slow never reads again

	fast := wsDial(t, url)
	fast.SetReadLimit(1 << 20)
	write(t, fast, types.Hello{Name: "Fast"})
	_, ok = read(t, fast).(types.Welcome)
	require.True(t, ok)
	write(t, fast, types.JoinRoom{RoomID: joined.Room.RoomID})
	readUntil[types.RoomJoined](t, fast, 2*time.Second)

	text := strings.Repeat("y", 60_000)
	for i := range 200 {
		write(t, fast, types.Chat{Text: text})
		got := readUntil[types.ChatMessage](t, fast, time.Second)
		require.Len(t, got.Text, len(text), "chat %d", i)
	}

	require.Eventually(t, func() bool { return srv.Connections() == 1 }, 20*time.Second, 50*time.Millisecond)
}
