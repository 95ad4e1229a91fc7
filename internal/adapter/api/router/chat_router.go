package router

import (
	"github.com/labstack/echo/v4"

	"pulsechat/internal/adapter/api/handler"
	"pulsechat/internal/adapter/api/middleware"
)

func SetupChatRouter(e *echo.Echo, chatHandler *handler.ChatHandler, authMiddleware *middleware.AuthMiddleware) {
	chats := e.Group("/v1/chats")
	chats.Use(authMiddleware.Authenticate)

	chats.POST("", chatHandler.CreateChat)
	chats.GET("", chatHandler.ListChats)
	chats.GET("/:id", chatHandler.GetChatByID)

	chats.POST("/:id/messages", chatHandler.SendMessage)
	chats.GET("/:id/messages", chatHandler.ListMessages)
	chats.PUT("/:id/read", chatHandler.MarkRead)
}
