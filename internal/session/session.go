// Package session resolves the current authenticated user for the store
// facade and the migration routine. Authentication itself happens at the
// external identity provider; this package only inspects its tokens.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"versekeeper/internal/middleware"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoSession indicates no valid authenticated session exists.
var ErrNoSession = errors.New("session: not authenticated")

// TokenSession answers session checks from a bearer token held on the
// client. The token's claims are parsed once and cached; the check is a
// cheap expiry comparison afterwards.
type TokenSession struct {
	mu        sync.Mutex
	token     string
	userID    string
	expiresAt time.Time
}

// NewTokenSession returns a session with no token set (unauthenticated).
func NewTokenSession() *TokenSession {
	return &TokenSession{}
}

// SetToken installs a token obtained from the identity provider. The
// signature is the provider's concern; locally only the subject and
// expiry claims are read.
func (s *TokenSession) SetToken(token string) error {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return fmt.Errorf("parse token: %w", err)
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return fmt.Errorf("token has no subject: %w", err)
	}

	var expiresAt time.Time
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		expiresAt = exp.Time
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.userID = sub
	s.expiresAt = expiresAt
	return nil
}

// Clear drops the session (logout).
func (s *TokenSession) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.userID = ""
	s.expiresAt = time.Time{}
}

// UserID returns the authenticated user's id, or ErrNoSession when no
// valid (unexpired) token is held.
func (s *TokenSession) UserID(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userID == "" {
		return "", ErrNoSession
	}
	if !s.expiresAt.IsZero() && time.Now().After(s.expiresAt) {
		return "", fmt.Errorf("%w: token expired", ErrNoSession)
	}
	return s.userID, nil
}

// Token returns the raw bearer token for outgoing requests.
func (s *TokenSession) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// ContextSession resolves the user from the request context populated by
// the JWT auth middleware. Used on the server, where every request is
// already authenticated before it reaches the store.
type ContextSession struct{}

// UserID returns the user id stored in ctx, or ErrNoSession.
func (ContextSession) UserID(ctx context.Context) (string, error) {
	if id := middleware.GetUserIDFromContext(ctx); id != "" {
		return id, nil
	}
	return "", ErrNoSession
}
