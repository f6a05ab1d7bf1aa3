package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/DoyleJ11/yaht-backend/internal/hub"
	"github.com/DoyleJ11/yaht-backend/internal/room"
	"github.com/DoyleJ11/yaht-backend/internal/session"
	"github.com/DoyleJ11/yaht-backend/internal/types"
	"github.com/DoyleJ11/yaht-backend/internal/ws"
)

type discard struct{}

func (discard) Send(types.ServerMessage) bool { return true }

func setup(t *testing.T) (*hub.Hub, http.Handler) {
	t.Helper()
	room.PasswordCost = bcrypt.MinCost
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h := hub.NewHub(ctx, hub.Options{}, zap.NewNop())
	srv := session.NewServer(session.Config{}, h, zap.NewNop())
	return h, SetupRoutes(h, srv, ws.HandlerOptions{}, zap.NewNop())
}

func get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	h, handler := setup(t)
	_, err := h.Create(context.Background(), "one", 4, "", room.Member{ID: "p1", Name: "Ana", Outbox: discard{}})
	require.NoError(t, err)

	rec := get(t, handler, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)

	var body health
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, health{Status: "ok", Connections: 0, Rooms: 1}, body)
}

func TestHealthz_HubStopped(t *testing.T) {
	h, handler := setup(t)
	h.Shutdown()

	rec := get(t, handler, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRooms(t *testing.T) {
	h, handler := setup(t)
	r, err := h.Create(context.Background(), "locked", 3, "pw", room.Member{ID: "p1", Name: "Ana", Outbox: discard{}})
	require.NoError(t, err)

	rec := get(t, handler, "/rooms")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []types.RoomInfo
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, r.ID(), list[0].RoomID)
	assert.True(t, list[0].HasPassword)

	rec = get(t, handler, "/rooms/"+r.ID())
	require.Equal(t, http.StatusOK, rec.Code)
	var info types.RoomInfo
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&info))
	assert.Equal(t, "locked", info.Name)
	assert.Equal(t, 1, info.PlayerCount)
	assert.Equal(t, 3, info.MaxPlayers)
	assert.Equal(t, types.RoomWaiting, info.State)

	rec = get(t, handler, "/rooms/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
