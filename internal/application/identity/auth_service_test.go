package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/dashboard/internal/domain/identity"
	"github.com/erp/dashboard/internal/domain/shared"
	"github.com/erp/dashboard/internal/infrastructure/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*identity.Credentials, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Credentials), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, c *identity.Credentials) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func newTestService(repo *MockUserRepository) *AuthService {
	tokens := auth.NewTokenService("test-secret-key-with-32-characters", time.Hour, "test")
	return NewAuthService(repo, tokens, WithBcryptCost(bcrypt.MinCost))
}

func storedAdmin(t *testing.T, password string) *identity.Credentials {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &identity.Credentials{
		User:         identity.User{ID: "1", Username: "admin", Email: "admin@example.com", Role: identity.RoleAdmin},
		PasswordHash: string(hash),
	}
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByUsername", ctx, "admin").Return(storedAdmin(t, "admin123"), nil)

		resp, err := newTestService(repo).Login(ctx, identity.LoginRequest{Username: "admin", Password: "admin123"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "admin", resp.Username)
		assert.Equal(t, identity.RoleAdmin, resp.Role)
		assert.WithinDuration(t, time.Now().Add(time.Hour), resp.ExpiresAt, time.Minute)

		claims, err := auth.ParseUnverified(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, "1", claims.UserID)
		repo.AssertExpectations(t)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByUsername", ctx, "admin").Return(storedAdmin(t, "admin123"), nil)

		_, err := newTestService(repo).Login(ctx, identity.LoginRequest{Username: "admin", Password: "nope"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByUsername", ctx, "ghost").Return(nil, shared.ErrNotFound)

		_, err := newTestService(repo).Login(ctx, identity.LoginRequest{Username: "ghost", Password: "x"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("repository failure", func(t *testing.T) {
		repo := new(MockUserRepository)
		boom := errors.New("db down")
		repo.On("FindByUsername", ctx, "admin").Return(nil, boom)

		_, err := newTestService(repo).Login(ctx, identity.LoginRequest{Username: "admin", Password: "x"})
		assert.ErrorIs(t, err, boom)
	})
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()
	req := identity.RegisterRequest{
		Username:  " maria ",
		Email:     "maria@example.com",
		Password:  "secret1",
		FirstName: "Maria",
		LastName:  "Quispe",
	}

	t.Run("defaults to employee and hashes password", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("Create", ctx, mock.MatchedBy(func(c *identity.Credentials) bool {
			return c.User.Username == "maria" &&
				c.User.Role == identity.RoleEmployee &&
				bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte("secret1")) == nil
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*identity.Credentials).User.ID = "7"
		}).Return(nil)

		resp, err := newTestService(repo).Register(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "maria", resp.Username)
		assert.Equal(t, identity.RoleEmployee, resp.Role)

		claims, err := auth.ParseUnverified(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, "7", claims.UserID)
		repo.AssertExpectations(t)
	})

	t.Run("taken username", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("Create", ctx, mock.Anything).Return(shared.ErrAlreadyExists)

		_, err := newTestService(repo).Register(ctx, req)
		assert.ErrorIs(t, err, ErrUserExists)
	})

	t.Run("invalid role", func(t *testing.T) {
		repo := new(MockUserRepository)
		bad := req
		bad.Role = "Root"

		_, err := newTestService(repo).Register(ctx, bad)
		assert.ErrorIs(t, err, ErrInvalidRole)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestAuthService_Me(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	repo.On("FindByUsername", ctx, "admin").Return(storedAdmin(t, "x"), nil)
	repo.On("FindByUsername", ctx, "gone").Return(nil, shared.ErrNotFound)
	svc := newTestService(repo)

	user, err := svc.Me(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", user.Email)

	_, err = svc.Me(ctx, "gone")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
