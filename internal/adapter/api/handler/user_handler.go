package handler

import (
	"github.com/labstack/echo/v4"

	"pulsechat/internal/usecase"
	"pulsechat/pkg/response"
)

type UserHandler struct {
	identity *usecase.IdentityUseCase
}

func NewUserHandler(identity *usecase.IdentityUseCase) *UserHandler {
	return &UserHandler{
		identity: identity,
	}
}

type updatePresenceRequest struct {
	IsOnline bool `json:"is_online"`
}

func (h *UserHandler) Me(c echo.Context) error {
	user, err := currentUser(c, h.identity)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

func (h *UserHandler) ListFriends(c echo.Context) error {
	user, err := currentUser(c, h.identity)
	if err != nil {
		return response.Error(c, err)
	}

	friends, err := h.identity.ListFriends(c.Request().Context(), user)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, friends)
}

func (h *UserHandler) UpdatePresence(c echo.Context) error {
	user, err := currentUser(c, h.identity)
	if err != nil {
		return response.Error(c, err)
	}

	var req updatePresenceRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := h.identity.UpdatePresence(c.Request().Context(), user.ID, req.IsOnline); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]bool{"is_online": req.IsOnline})
}
