package firebase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDevTokenRoundTrip(t *testing.T) {
	issuer := NewDevTokenIssuer("test-secret")

	token, err := issuer.Issue("ext-42", time.Hour)
	require.NoError(t, err)

	uid, err := issuer.VerifyToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "ext-42", uid)
}

func TestDevTokenRejectsWrongSecret(t *testing.T) {
	token, err := NewDevTokenIssuer("right").Issue("ext-42", time.Hour)
	require.NoError(t, err)

	_, err = NewDevTokenIssuer("wrong").VerifyToken(context.Background(), token)
	assert.Error(t, err)
}

func TestDevTokenRejectsExpired(t *testing.T) {
	issuer := NewDevTokenIssuer("test-secret")

	token, err := issuer.Issue("ext-42", -time.Minute)
	require.NoError(t, err)

	_, err = issuer.VerifyToken(context.Background(), token)
	assert.Error(t, err)
}
