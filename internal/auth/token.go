package auth

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoToken      = errors.New("no session token")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Claims are the session token claims the client cares about.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenKeeper holds the session's bearer token. The client never owns
// the signing key, so it only inspects the claims; signature
// verification is the backend's job. What the client can and does do is
// refuse to fire a mutating request with a token that is already
// expired.
type TokenKeeper struct {
	mu     sync.RWMutex
	raw    string
	claims *Claims
}

func NewTokenKeeper() *TokenKeeper {
	return &TokenKeeper{}
}

// Set stores a bearer token after an unverified claims parse.
func (k *TokenKeeper) Set(raw string) error {
	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return ErrInvalidToken
	}

	k.mu.Lock()
	k.raw = raw
	k.claims = claims
	k.mu.Unlock()
	return nil
}

// Bearer returns the raw token if one is held and not yet expired.
func (k *TokenKeeper) Bearer() (string, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	if k.raw == "" {
		return "", ErrNoToken
	}
	if k.claims.ExpiresAt != nil && time.Now().After(k.claims.ExpiresAt.Time) {
		return "", ErrExpiredToken
	}
	return k.raw, nil
}

// UserID returns the subject of the held token, if any.
func (k *TokenKeeper) UserID() (string, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	if k.claims == nil || k.claims.UserID == "" {
		return "", false
	}
	return k.claims.UserID, true
}

// Clear drops the held token, used on logout.
func (k *TokenKeeper) Clear() {
	k.mu.Lock()
	k.raw = ""
	k.claims = nil
	k.mu.Unlock()
}
