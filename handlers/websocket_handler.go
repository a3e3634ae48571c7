package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/game-arena/services"
	"github.com/Dosada05/game-arena/ws"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Players connect from arbitrary origins; moves are validated
		// server-side regardless.
		return true
	},
}

type WebSocketHandler struct {
	hub         *ws.Hub
	coordinator *services.Coordinator
	logger      *slog.Logger
}

func NewWebSocketHandler(hub *ws.Hub, coordinator *services.Coordinator, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, coordinator: coordinator, logger: logger}
}

// ServeWs upgrades the connection and hands it to the coordinator.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", slog.Any("error", err))
		return
	}

	client := h.hub.NewClient(uuid.NewString(), conn)
	h.coordinator.Register(client.ID, client)
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
