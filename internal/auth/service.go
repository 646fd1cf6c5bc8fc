package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/adaptlearn/internal/api"
)

// ErrPasswordMismatch is returned when the confirmation does not match.
var ErrPasswordMismatch = errors.New("passwords do not match")

// ErrMissingCredentials is returned when a required field is blank.
var ErrMissingCredentials = errors.New("username and password are required")

// Backend is the subset of the API client used to authenticate.
type Backend interface {
	Login(ctx context.Context, creds api.Credentials) (*api.AuthToken, error)
	Register(ctx context.Context, reg api.Registration) (*api.User, error)
}

// Service signs users in and out.
type Service struct {
	backend Backend
	tokens  *TokenStore
	log     *zap.Logger
}

// NewService creates a Service.
func NewService(backend Backend, tokens *TokenStore, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{backend: backend, tokens: tokens, log: log}
}

// Tokens returns the token store.
func (s *Service) Tokens() *TokenStore { return s.tokens }

// Login exchanges credentials for a token and stores it.
func (s *Service) Login(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return ErrMissingCredentials
	}

	tok, err := s.backend.Login(ctx, api.Credentials{Username: username, Password: password})
	if err != nil {
		return err
	}

	name := tok.Username
	if name == "" {
		name = username
	}
	if err := s.tokens.Save(ctx, tok.Token, name); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	s.log.Info("signed in", zap.String("username", name))
	return nil
}

// Register creates an account and signs in with it.
func (s *Service) Register(ctx context.Context, reg api.Registration, confirm string) error {
	reg.Username = strings.TrimSpace(reg.Username)
	reg.Email = strings.TrimSpace(reg.Email)
	if reg.Username == "" || reg.Password == "" {
		return ErrMissingCredentials
	}
	if reg.Password != confirm {
		return ErrPasswordMismatch
	}

	if _, err := s.backend.Register(ctx, reg); err != nil {
		return err
	}
	s.log.Info("registered", zap.String("username", reg.Username))
	return s.Login(ctx, reg.Username, reg.Password)
}

// Logout forgets the stored token.
func (s *Service) Logout() error {
	if err := s.tokens.Clear(); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	s.log.Info("signed out")
	return nil
}

// LoginErrorMessage is the text shown for a failed sign-in.
func LoginErrorMessage(err error) string {
	var serr *api.ServerError
	switch {
	case errors.Is(err, ErrMissingCredentials):
		return "Enter your username and password"
	case errors.As(err, &serr) && (serr.Status == 401 || serr.Status == 403):
		return "Incorrect credentials"
	default:
		return err.Error()
	}
}

// RegisterErrorMessage is the text shown for a failed registration. The
// backend reports conflicts as a plain-text body.
func RegisterErrorMessage(err error) string {
	var serr *api.ServerError
	switch {
	case errors.Is(err, ErrPasswordMismatch):
		return "Passwords do not match"
	case errors.Is(err, ErrMissingCredentials):
		return "Username and password are required"
	case errors.As(err, &serr):
		if serr.Message != "" {
			return serr.Message
		}
		if body := strings.TrimSpace(serr.Body); body != "" {
			return body
		}
		return "Registration failed"
	default:
		return err.Error()
	}
}
