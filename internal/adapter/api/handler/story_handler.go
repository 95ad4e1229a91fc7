package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"pulsechat/internal/domain/entity"
	"pulsechat/internal/usecase"
	"pulsechat/pkg/response"
)

type StoryHandler struct {
	storyUseCase *usecase.StoryUseCase
	identity     *usecase.IdentityUseCase
}

func NewStoryHandler(storyUseCase *usecase.StoryUseCase, identity *usecase.IdentityUseCase) *StoryHandler {
	return &StoryHandler{
		storyUseCase: storyUseCase,
		identity:     identity,
	}
}

type createStoryRequest struct {
	Kind  string                 `json:"kind" validate:"required,oneof=image video"`
	Media entity.MediaAttachment `json:"media" validate:"required"`
}

func (h *StoryHandler) CreateStory(c echo.Context) error {
	user, err := currentUser(c, h.identity)
	if err != nil {
		return response.Error(c, err)
	}

	var req createStoryRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	story, err := h.storyUseCase.CreateStory(c.Request().Context(), user.ID, usecase.CreateStoryInput{
		Kind:  req.Kind,
		Media: req.Media,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, story)
}

func (h *StoryHandler) ListStories(c echo.Context) error {
	user, err := currentUser(c, h.identity)
	if err != nil {
		return response.Error(c, err)
	}

	var targets []string
	if raw := c.QueryParam("user_ids"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				targets = append(targets, id)
			}
		}
	}

	stories, err := h.storyUseCase.ListVisibleStories(c.Request().Context(), user, targets)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, stories)
}

func (h *StoryHandler) MarkViewed(c echo.Context) error {
	user, err := currentUser(c, h.identity)
	if err != nil {
		return response.Error(c, err)
	}

	if err := h.storyUseCase.MarkViewed(c.Request().Context(), user.ID, c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return c.NoContent(http.StatusOK)
}
