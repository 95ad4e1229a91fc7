package router

import (
	"github.com/labstack/echo/v4"

	"pulsechat/internal/adapter/api/handler"
	"pulsechat/internal/adapter/api/middleware"
)

func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler, authMiddleware *middleware.AuthMiddleware) {
	// Browsers cannot set headers on websocket upgrades, so the middleware
	// also accepts the token query parameter here.
	e.GET("/v1/ws", wsHandler.HandleConnection, authMiddleware.Authenticate)
}
