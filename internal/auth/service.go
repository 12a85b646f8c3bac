package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"libraryapi/internal/config"
	"libraryapi/internal/platform/crypto"
)

var ErrUnauthorized = errors.New("unauthorized")

// Token is the login response body.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Service authenticates the single configured identity.
type Service struct {
	username     string
	passwordHash string
	secret       string
	ttl          time.Duration
}

// NewService hashes the configured password once so that plaintext is not
// kept around for comparisons.
func NewService(cfg config.Auth) (*Service, error) {
	if cfg.JWTSecret == "" {
		return nil, crypto.ErrEmptySecret
	}
	hash, err := crypto.HashPassword(cfg.Password)
	if err != nil {
		return nil, fmt.Errorf("hash configured password: %w", err)
	}
	return &Service{
		username:     cfg.Username,
		passwordHash: hash,
		secret:       cfg.JWTSecret,
		ttl:          cfg.TokenTTL,
	}, nil
}

func (s *Service) Login(ctx context.Context, username, password string) (Token, error) {
	if err := ctx.Err(); err != nil {
		return Token{}, err
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	// The hash is checked even for a wrong username to keep timing uniform.
	passOK := crypto.VerifyPassword(s.passwordHash, password)
	if !userOK || !passOK {
		return Token{}, ErrUnauthorized
	}

	accessToken, _, err := crypto.GenerateToken(s.secret, s.username, s.ttl)
	if err != nil {
		return Token{}, err
	}
	return Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.ttl.Seconds()),
	}, nil
}
