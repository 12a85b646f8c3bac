package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libraryapi/internal/config"
	"libraryapi/internal/platform/crypto"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(config.Auth{
		Username:  "admin",
		Password:  "password",
		JWTSecret: "test-secret",
		TokenTTL:  15 * time.Minute,
	})
	require.NoError(t, err)
	return svc
}

func TestService_Login(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		token, err := svc.Login(ctx, "admin", "password")
		require.NoError(t, err)
		assert.Equal(t, "Bearer", token.TokenType)
		assert.Equal(t, 900, token.ExpiresIn)

		claims, err := crypto.ParseToken("test-secret", token.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "admin", claims.Subject)
		assert.NotEmpty(t, claims.ID)
	})

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "admin", "hunter2"},
		{"wrong username", "root", "password"},
		{"empty", "", ""},
		{"case differs", "Admin", "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tt.username, tt.password)
			assert.ErrorIs(t, err, ErrUnauthorized)
		})
	}
}

func TestService_TokensAreUnique(t *testing.T) {
	svc := newTestService(t)

	a, err := svc.Login(context.Background(), "admin", "password")
	require.NoError(t, err)
	b, err := svc.Login(context.Background(), "admin", "password")
	require.NoError(t, err)
	assert.NotEqual(t, a.AccessToken, b.AccessToken)
}

func TestNewService_RequiresSecret(t *testing.T) {
	_, err := NewService(config.Auth{Username: "admin", Password: "password", TokenTTL: time.Minute})
	assert.ErrorIs(t, err, crypto.ErrEmptySecret)
}
