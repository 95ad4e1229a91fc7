package firebase

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// DevTokenIssuer mints and verifies short-lived HS256 tokens so the API can
// be exercised locally without a real Firebase project. Development only.
type DevTokenIssuer struct {
	secret []byte
}

func NewDevTokenIssuer(secret string) *DevTokenIssuer {
	return &DevTokenIssuer{
		secret: []byte(secret),
	}
}

func (d *DevTokenIssuer) Issue(externalID string, ttl time.Duration) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   externalID,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		Issuer:    "pulsechat-dev",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(d.secret)
}

// VerifyToken satisfies the same contract as AuthClient so the auth
// middleware can chain both in development.
func (d *DevTokenIssuer) VerifyToken(_ context.Context, tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return d.secret, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", fmt.Errorf("invalid dev token")
	}

	return claims.Subject, nil
}
