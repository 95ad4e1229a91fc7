package router

import (
	"github.com/labstack/echo/v4"

	"pulsechat/internal/adapter/api/handler"
)

// SetupDevRouter registers the local token mint. Only called in development.
func SetupDevRouter(e *echo.Echo, devHandler *handler.DevTokenHandler) {
	e.POST("/v1/dev/token", devHandler.IssueToken)
}
