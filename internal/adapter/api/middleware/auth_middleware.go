package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// TokenVerifier maps a bearer token to the external principal ID. The
// Firebase client satisfies this; a dev-token verifier can be chained in
// development.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (string, error)
}

type AuthMiddleware struct {
	verifiers []TokenVerifier
}

func NewAuthMiddleware(verifiers ...TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{
		verifiers: verifiers,
	}
}

// Authenticate extracts the bearer token (header, or the token query
// parameter for websocket upgrades) and stores the external principal ID
// under "uid".
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := m.extractToken(c)
		if token == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header is required")
		}

		uid, err := m.verify(c.Request().Context(), token)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
		}

		c.Set("uid", uid)
		return next(c)
	}
}

func (m *AuthMiddleware) extractToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}

	return c.QueryParam("token")
}

func (m *AuthMiddleware) verify(ctx context.Context, token string) (string, error) {
	var lastErr error
	for _, verifier := range m.verifiers {
		uid, err := verifier.VerifyToken(ctx, token)
		if err == nil {
			return uid, nil
		}
		lastErr = err
	}
	return "", lastErr
}
