package handler

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"

	"pulsechat/internal/usecase"
	"pulsechat/pkg/logger"
	"pulsechat/pkg/response"
)

// WebhookHandler ingests identity-provider events (user.created,
// user.updated, user.deleted) that keep the user directory in sync.
type WebhookHandler struct {
	identity *usecase.IdentityUseCase
	secret   string
}

func NewWebhookHandler(identity *usecase.IdentityUseCase, secret string) *WebhookHandler {
	return &WebhookHandler{
		identity: identity,
		secret:   secret,
	}
}

type identityEvent struct {
	Type string            `json:"type" validate:"required"`
	Data identityEventData `json:"data"`
}

type identityEventData struct {
	ExternalID  string `json:"external_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Username    string `json:"username"`
	PhoneNumber string `json:"phone_number"`
	ImageRef    string `json:"image_ref"`
}

func (h *WebhookHandler) HandleIdentityEvent(c echo.Context) error {
	if h.secret != "" {
		provided := c.Request().Header.Get("X-Webhook-Secret")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(h.secret)) != 1 {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid webhook secret")
		}
	}

	var event identityEvent
	if err := c.Bind(&event); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&event); err != nil {
		return response.Error(c, err)
	}

	ctx := c.Request().Context()

	switch event.Type {
	case "user.created", "user.updated":
		user, err := h.identity.SyncUser(ctx, usecase.SyncUserInput{
			ExternalID:  event.Data.ExternalID,
			Email:       event.Data.Email,
			DisplayName: event.Data.DisplayName,
			Username:    event.Data.Username,
			PhoneNumber: event.Data.PhoneNumber,
			ImageRef:    event.Data.ImageRef,
		})
		if err != nil {
			return response.Error(c, err)
		}
		return response.Success(c, map[string]string{"user_id": user.ID})

	case "user.deleted":
		if err := h.identity.DeleteUser(ctx, event.Data.ExternalID); err != nil {
			return response.Error(c, err)
		}
		return c.NoContent(http.StatusOK)

	default:
		logger.Debug("Ignoring identity webhook event %s", event.Type)
		return c.NoContent(http.StatusOK)
	}
}
