package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/DoyleJ11/yaht-backend/internal/hub"
	"github.com/DoyleJ11/yaht-backend/internal/session"
	"github.com/DoyleJ11/yaht-backend/internal/ws"
)

// SetupRoutes serves the read-only lobby view and the WebSocket entry point.
func SetupRoutes(h *hub.Hub, srv *session.Server, wsOpts ws.HandlerOptions, log *zap.Logger) http.Handler {
	log = log.Named("http")
	r := chi.NewRouter()

	r.Get("/healthz", Healthz(h, srv, log))
	r.Get("/rooms", ListRooms(h))
	r.Get("/rooms/{roomID}", GetRoom(h))
	r.Get("/ws", ws.Handler(srv, wsOpts, log))
	return r
}
