package handler

import (
	"github.com/labstack/echo/v4"

	"pulsechat/internal/domain/entity"
	"pulsechat/internal/usecase"
	"pulsechat/pkg/errors"
)

// currentUser resolves the authenticated principal (set by the auth
// middleware) to the internal user record.
func currentUser(c echo.Context, identity *usecase.IdentityUseCase) (*entity.User, error) {
	uid, ok := c.Get("uid").(string)
	if !ok || uid == "" {
		return nil, errors.Unauthorized("Authentication required", nil)
	}

	return identity.ResolveExternal(c.Request().Context(), uid)
}
