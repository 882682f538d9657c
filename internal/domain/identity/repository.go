package identity

import "context"

// Credentials is a stored account with its password hash
type Credentials struct {
	User         User
	PasswordHash string
}

// UserRepository defines the interface for account persistence
type UserRepository interface {
	// FindByUsername returns the account, or shared.ErrNotFound
	FindByUsername(ctx context.Context, username string) (*Credentials, error)

	// Create stores a new account; a taken username or email returns shared.ErrAlreadyExists
	Create(ctx context.Context, c *Credentials) error
}
