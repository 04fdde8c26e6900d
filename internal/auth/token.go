// Package auth supplies access tokens to the transport. Tokens are provided
// by the caller; this package never obtains or refreshes them.
package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// Static errors for err113 compliance.
var (
	ErrNoToken      = errors.New("no access token configured")
	ErrTokenExpired = errors.New("access token expired")
)

// TokenManager supplies the bearer token for a request.
type TokenManager interface {
	GetToken(ctx context.Context) (string, error)
}

// Token is an access token with an optional expiry.
type Token struct {
	AccessToken string
	ExpiresAt   time.Time
}

// Valid reports whether the token is set and not expired.
func (t *Token) Valid() bool {
	if t == nil || t.AccessToken == "" {
		return false
	}

	return t.ExpiresAt.IsZero() || time.Now().Before(t.ExpiresAt)
}

// StaticTokenManager hands out a fixed token.
type StaticTokenManager struct {
	mu    sync.RWMutex
	token Token
}

// NewStaticTokenManager returns a manager for token. A "Bearer " prefix is
// stripped.
func NewStaticTokenManager(token string) *StaticTokenManager {
	m := &StaticTokenManager{}
	m.SetToken(token, time.Time{})

	return m
}

// GetToken returns the token, or an error when it is empty or expired.
func (m *StaticTokenManager) GetToken(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.token.AccessToken == "" {
		return "", ErrNoToken
	}

	if !m.token.Valid() {
		return "", ErrTokenExpired
	}

	return m.token.AccessToken, nil
}

// SetToken replaces the token. A zero expiresAt never expires.
func (m *StaticTokenManager) SetToken(token string, expiresAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = Token{
		AccessToken: strings.TrimSpace(strings.TrimPrefix(token, "Bearer ")),
		ExpiresAt:   expiresAt,
	}
}
