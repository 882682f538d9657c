package api

import (
	"context"
	"fmt"

	"github.com/erp/dashboard/internal/domain/identity"
	"github.com/erp/dashboard/internal/infrastructure/auth"
)

// AuthService logs in and out against /auth
type AuthService service

// Login posts credentials and starts the client session with the returned token
func (s *AuthService) Login(ctx context.Context, req identity.LoginRequest) (identity.AuthResponse, error) {
	if err := validate.Struct(req); err != nil {
		return identity.AuthResponse{}, fmt.Errorf("invalid login request: %w", err)
	}
	return s.authenticate(ctx, "/auth/login", req)
}

// Register creates an account and starts the session
func (s *AuthService) Register(ctx context.Context, req identity.RegisterRequest) (identity.AuthResponse, error) {
	if err := validate.Struct(req); err != nil {
		return identity.AuthResponse{}, fmt.Errorf("invalid registration: %w", err)
	}
	return s.authenticate(ctx, "/auth/register", req)
}

func (s *AuthService) authenticate(ctx context.Context, path string, body any) (identity.AuthResponse, error) {
	resp, err := s.client.PostJSON(ctx, path, body)
	if err != nil {
		return identity.AuthResponse{}, err
	}
	var out identity.AuthResponse
	if err := decodeBody(resp, &out); err != nil {
		return identity.AuthResponse{}, err
	}
	if err := validate.Struct(out); err != nil {
		return identity.AuthResponse{}, fmt.Errorf("%w: auth response: %v", ErrMalformedResponse, err)
	}
	if err := s.client.session.Begin(ctx, out); err != nil {
		return identity.AuthResponse{}, fmt.Errorf("starting session: %w", err)
	}
	return out, nil
}

// Me fetches GET /auth/me
func (s *AuthService) Me(ctx context.Context) (identity.User, error) {
	var user identity.User
	err := s.client.getJSON(ctx, "/auth/me", "", nil, &user)
	return user, err
}

// Logout clears the local session. The API keeps no server-side session.
func (s *AuthService) Logout(ctx context.Context) {
	s.client.session.Clear(ctx, auth.EventLogout)
}
