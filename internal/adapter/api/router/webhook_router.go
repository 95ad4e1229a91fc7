package router

import (
	"github.com/labstack/echo/v4"

	"pulsechat/internal/adapter/api/handler"
)

// SetupWebhookRouter registers identity-provider callbacks. These are
// authenticated by shared secret inside the handler, not by bearer token.
func SetupWebhookRouter(e *echo.Echo, webhookHandler *handler.WebhookHandler) {
	e.POST("/v1/webhooks/identity", webhookHandler.HandleIdentityEvent)
}
