package router

import (
	"github.com/labstack/echo/v4"

	"pulsechat/internal/adapter/api/handler"
	"pulsechat/internal/adapter/api/middleware"
)

func SetupStoryRouter(e *echo.Echo, storyHandler *handler.StoryHandler, authMiddleware *middleware.AuthMiddleware) {
	stories := e.Group("/v1/stories")
	stories.Use(authMiddleware.Authenticate)

	stories.POST("", storyHandler.CreateStory)
	stories.GET("", storyHandler.ListStories)
	stories.PUT("/:id/viewed", storyHandler.MarkViewed)
}
