package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/erp/dashboard/internal/domain/identity"
	"github.com/erp/dashboard/internal/domain/shared"
	"github.com/erp/dashboard/internal/infrastructure/auth"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Domain errors returned by AuthService
var (
	ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	ErrUserExists         = shared.NewDomainError("USER_EXISTS", "Username or email is already registered")
	ErrInvalidRole        = shared.NewDomainError("INVALID_ROLE", "Role must be Admin, Manager or Employee")
)

// TokenIssuer signs session tokens
type TokenIssuer interface {
	Issue(user identity.User) (string, time.Time, error)
}

// AuthService handles login, registration and the current-user lookup
type AuthService struct {
	userRepo   identity.UserRepository
	tokens     TokenIssuer
	bcryptCost int
	logger     *zap.Logger
}

// AuthOption configures an AuthService
type AuthOption func(*AuthService)

// WithBcryptCost overrides the password hashing cost
func WithBcryptCost(cost int) AuthOption {
	return func(s *AuthService) {
		s.bcryptCost = cost
	}
}

// WithLogger sets the service logger
func WithLogger(logger *zap.Logger) AuthOption {
	return func(s *AuthService) {
		s.logger = logger
	}
}

// NewAuthService creates a new authentication service
func NewAuthService(userRepo identity.UserRepository, tokens TokenIssuer, opts ...AuthOption) *AuthService {
	s := &AuthService{
		userRepo:   userRepo,
		tokens:     tokens,
		bcryptCost: bcrypt.DefaultCost,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login verifies the password and returns a signed token
func (s *AuthService) Login(ctx context.Context, req identity.LoginRequest) (*identity.AuthResponse, error) {
	s.logger.Info("Login attempt", zap.String("username", req.Username))

	creds, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("User not found during login", zap.String("username", req.Username))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("Invalid password attempt", zap.String("username", req.Username))
		return nil, ErrInvalidCredentials
	}

	resp, err := s.respond(creds.User)
	if err != nil {
		return nil, err
	}
	s.logger.Info("User logged in successfully",
		zap.String("username", creds.User.Username),
		zap.String("user_id", creds.User.ID))
	return resp, nil
}

// Register creates an account and logs it in. An empty role registers an Employee.
func (s *AuthService) Register(ctx context.Context, req identity.RegisterRequest) (*identity.AuthResponse, error) {
	role := req.Role
	if role == "" {
		role = identity.RoleEmployee
	}
	if !validRole(role) {
		return nil, ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	creds := &identity.Credentials{
		User: identity.User{
			Username:  strings.TrimSpace(req.Username),
			Email:     strings.TrimSpace(req.Email),
			Role:      role,
			FirstName: req.FirstName,
			LastName:  req.LastName,
		},
		PasswordHash: string(hash),
	}
	if err := s.userRepo.Create(ctx, creds); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	s.logger.Info("User registered",
		zap.String("username", creds.User.Username),
		zap.String("role", role))
	return s.respond(creds.User)
}

// Me returns the account behind an authenticated request
func (s *AuthService) Me(ctx context.Context, username string) (*identity.User, error) {
	creds, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return &creds.User, nil
}

func (s *AuthService) respond(user identity.User) (*identity.AuthResponse, error) {
	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		s.logger.Error("Failed to issue token", zap.Error(err))
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &identity.AuthResponse{
		Token:     token,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		ExpiresAt: expiresAt,
	}, nil
}

func validRole(role string) bool {
	switch role {
	case identity.RoleAdmin, identity.RoleManager, identity.RoleEmployee:
		return true
	}
	return false
}

var _ TokenIssuer = (*auth.TokenService)(nil)
