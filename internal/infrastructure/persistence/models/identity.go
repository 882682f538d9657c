package models

import "github.com/erp/dashboard/internal/domain/identity"

// UserModel is a dashboard account
type UserModel struct {
	BaseModel
	Username     string `gorm:"type:varchar(50);not null;uniqueIndex"`
	Email        string `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash string `gorm:"type:varchar(100);not null"`
	Role         string `gorm:"type:varchar(20);not null"`
	FirstName    string `gorm:"type:varchar(100)"`
	LastName     string `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the model
func (m *UserModel) ToDomain() identity.Credentials {
	return identity.Credentials{
		User: identity.User{
			ID:        itoa(m.ID),
			Username:  m.Username,
			Email:     m.Email,
			Role:      m.Role,
			FirstName: m.FirstName,
			LastName:  m.LastName,
		},
		PasswordHash: m.PasswordHash,
	}
}

// FromDomain fills the model from stored credentials
func (m *UserModel) FromDomain(c identity.Credentials) {
	m.Username = c.User.Username
	m.Email = c.User.Email
	m.Role = c.User.Role
	m.FirstName = c.User.FirstName
	m.LastName = c.User.LastName
	m.PasswordHash = c.PasswordHash
}
