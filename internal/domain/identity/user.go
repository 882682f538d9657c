package identity

import (
	"strings"
	"time"
)

// Roles known to the inventory API
const (
	RoleAdmin    = "Admin"
	RoleManager  = "Manager"
	RoleEmployee = "Employee"
)

// User is the authenticated account
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// DisplayName returns "First Last", falling back to the username
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Username string `json:"username" binding:"required" validate:"required"`
	Password string `json:"password" binding:"required" validate:"required"`
}

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=50" validate:"required,min=3,max=50"`
	Email     string `json:"email" binding:"required,email" validate:"required,email"`
	Password  string `json:"password" binding:"required,min=6" validate:"required,min=6"`
	FirstName string `json:"firstName" binding:"required" validate:"required"`
	LastName  string `json:"lastName" binding:"required" validate:"required"`
	Role      string `json:"role,omitempty"`
}

// AuthResponse is returned by login and register
type AuthResponse struct {
	Token     string    `json:"token" validate:"required"`
	Username  string    `json:"username" validate:"required"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// User extracts the account part of the response
func (r AuthResponse) User() User {
	return User{
		Username:  r.Username,
		Email:     r.Email,
		Role:      r.Role,
		FirstName: r.FirstName,
		LastName:  r.LastName,
	}
}
