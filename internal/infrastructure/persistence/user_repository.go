package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/dashboard/internal/domain/identity"
	"github.com/erp/dashboard/internal/domain/shared"
	"github.com/erp/dashboard/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormUserRepository implements UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByUsername finds an account, ignoring case
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*identity.Credentials, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).
		Where("LOWER(username) = ?", strings.ToLower(strings.TrimSpace(username))).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	c := model.ToDomain()
	return &c, nil
}

// Create stores a new account and fills in its ID
func (r *GormUserRepository) Create(ctx context.Context, c *identity.Credentials) error {
	var taken int64
	if err := r.db.WithContext(ctx).Model(&models.UserModel{}).
		Where("LOWER(username) = ? OR LOWER(email) = ?",
			strings.ToLower(c.User.Username), strings.ToLower(c.User.Email)).
		Count(&taken).Error; err != nil {
		return err
	}
	if taken > 0 {
		return shared.ErrAlreadyExists
	}

	var model models.UserModel
	model.FromDomain(*c)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	*c = model.ToDomain()
	return nil
}

// Ensure GormUserRepository implements UserRepository
var _ identity.UserRepository = (*GormUserRepository)(nil)
