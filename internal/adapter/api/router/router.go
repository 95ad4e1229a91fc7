package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pulsechat/internal/adapter/api/handler"
	"pulsechat/internal/adapter/api/middleware"
)

// Handlers bundles everything Setup wires into the echo instance.
type Handlers struct {
	User      *handler.UserHandler
	Chat      *handler.ChatHandler
	Story     *handler.StoryHandler
	Upload    *handler.UploadHandler
	Webhook   *handler.WebhookHandler
	WebSocket *handler.WebSocketHandler
	DevToken  *handler.DevTokenHandler
}

func Setup(e *echo.Echo, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	SetupHealthRouter(e)
	SetupWebhookRouter(e, h.Webhook)
	SetupUserRouter(e, h.User, authMiddleware)
	SetupChatRouter(e, h.Chat, authMiddleware)
	SetupStoryRouter(e, h.Story, authMiddleware)
	SetupUploadRouter(e, h.Upload, authMiddleware)
	SetupWebSocketRouter(e, h.WebSocket, authMiddleware)

	if h.DevToken != nil {
		SetupDevRouter(e, h.DevToken)
	}

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}
