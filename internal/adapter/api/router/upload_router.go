package router

import (
	"github.com/labstack/echo/v4"

	"pulsechat/internal/adapter/api/handler"
	"pulsechat/internal/adapter/api/middleware"
)

func SetupUploadRouter(e *echo.Echo, uploadHandler *handler.UploadHandler, authMiddleware *middleware.AuthMiddleware) {
	uploads := e.Group("/v1/uploads")
	uploads.Use(authMiddleware.Authenticate)

	uploads.POST("", uploadHandler.CreateUpload)
}
