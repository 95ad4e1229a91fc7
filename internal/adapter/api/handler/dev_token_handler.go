package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"pulsechat/internal/infrastructure/firebase"
	"pulsechat/internal/usecase"
	"pulsechat/pkg/errors"
	"pulsechat/pkg/response"
)

// DevTokenHandler mints local test tokens. Only wired when the environment
// is development.
type DevTokenHandler struct {
	issuer   *firebase.DevTokenIssuer
	identity *usecase.IdentityUseCase
}

func NewDevTokenHandler(issuer *firebase.DevTokenIssuer, identity *usecase.IdentityUseCase) *DevTokenHandler {
	return &DevTokenHandler{
		issuer:   issuer,
		identity: identity,
	}
}

type devTokenRequest struct {
	ExternalID  string `json:"external_id" validate:"required"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Username    string `json:"username"`
}

func (h *DevTokenHandler) IssueToken(c echo.Context) error {
	var req devTokenRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	// Upsert a profile so the token resolves to a real user immediately.
	user, err := h.identity.SyncUser(c.Request().Context(), usecase.SyncUserInput{
		ExternalID:  req.ExternalID,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Username:    req.Username,
	})
	if err != nil && !errors.Is(err, "CONFLICT") {
		return response.Error(c, err)
	}

	token, err := h.issuer.Issue(req.ExternalID, 24*time.Hour)
	if err != nil {
		return response.Error(c, errors.Internal("failed to issue token", err))
	}

	payload := map[string]interface{}{
		"token": token,
	}
	if user != nil {
		payload["user"] = user
	}

	return response.Created(c, payload)
}
