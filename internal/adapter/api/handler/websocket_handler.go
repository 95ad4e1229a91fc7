package handler

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"pulsechat/internal/infrastructure/realtime"
	"pulsechat/internal/usecase"
	"pulsechat/pkg/logger"
	"pulsechat/pkg/response"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	hub      *realtime.Hub
	identity *usecase.IdentityUseCase
}

func NewWebSocketHandler(hub *realtime.Hub, identity *usecase.IdentityUseCase) *WebSocketHandler {
	return &WebSocketHandler{
		hub:      hub,
		identity: identity,
	}
}

func (h *WebSocketHandler) HandleConnection(c echo.Context) error {
	user, err := currentUser(c, h.identity)
	if err != nil {
		return response.Error(c, err)
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("websocket upgrade failed for %s: %v", user.ID, err)
		return err
	}

	client := &realtime.Client{
		UserID: user.ID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
	}

	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump(h.hub)

	return nil
}
