// Package auth keeps the signed-in user's bearer token and signs users in
// and out.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/abhisek/adaptlearn/internal/store"
)

// Claims is what the client reads from a token. The signature is not
// verified; only the backend can do that.
type Claims struct {
	Subject   string
	ExpiresAt time.Time // zero when the token carries no exp
	Roles     []string
}

type tokenClaims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// ParseClaims decodes the claims of a JWT without verifying it.
func ParseClaims(token string) (Claims, error) {
	var tc tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &tc); err != nil {
		return Claims{}, fmt.Errorf("parse token: %w", err)
	}

	c := Claims{Subject: tc.Subject, Roles: tc.Roles}
	if tc.ExpiresAt != nil {
		c.ExpiresAt = tc.ExpiresAt.Time
	}
	return c, nil
}

// Expired reports whether the claims expired before now.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// TokenStore caches the persisted token. It implements api.TokenSource.
type TokenStore struct {
	repo store.TokenRepo
	now  func() time.Time

	mu  sync.RWMutex
	cur *store.StoredToken
}

// NewTokenStore loads the persisted token, if any.
func NewTokenStore(ctx context.Context, repo store.TokenRepo) (*TokenStore, error) {
	cur, err := repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &TokenStore{repo: repo, now: time.Now, cur: cur}, nil
}

// Token returns the bearer token, or "" when signed out or the token has
// expired. Opaque tokens that are not JWTs are passed through.
func (s *TokenStore) Token() string {
	s.mu.RLock()
	cur := s.cur
	s.mu.RUnlock()

	if cur == nil {
		return ""
	}
	if c, err := ParseClaims(cur.Token); err == nil && c.Expired(s.now()) {
		return ""
	}
	return cur.Token
}

// Username returns the stored username, falling back to the token subject.
func (s *TokenStore) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cur == nil {
		return ""
	}
	if s.cur.Username != "" {
		return s.cur.Username
	}
	if c, err := ParseClaims(s.cur.Token); err == nil {
		return c.Subject
	}
	return ""
}

// SignedIn reports whether a usable token is present.
func (s *TokenStore) SignedIn() bool {
	return s.Token() != ""
}

// Save persists a new token.
func (s *TokenStore) Save(ctx context.Context, token, username string) error {
	if token == "" {
		return errors.New("empty token")
	}
	tok := store.StoredToken{Token: token, Username: username, SavedAt: s.now()}
	if err := s.repo.Save(ctx, tok); err != nil {
		return err
	}

	s.mu.Lock()
	s.cur = &tok
	s.mu.Unlock()
	return nil
}

// Clear forgets the token in memory and on disk.
func (s *TokenStore) Clear() error {
	s.mu.Lock()
	s.cur = nil
	s.mu.Unlock()

	return s.repo.Clear(context.Background())
}
