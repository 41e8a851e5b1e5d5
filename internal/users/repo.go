package users

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/db"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/db/models"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/errors"
)

// Repository encapsulates user account persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the user repository to a gorm DB.
func NewRepository(gdb *gorm.DB) *Repository {
	return &Repository{db: gdb}
}

// Create inserts a new account. Emails are stored lowercased.
func (r *Repository) Create(ctx context.Context, user *models.User) error {
	user.Email = NormalizeEmail(user.Email)
	err := r.db.WithContext(ctx).Create(user).Error
	if err != nil {
		if db.IsUniqueViolation(err, "users_email_key") {
			return errors.New(errors.CodeConflict, "email already registered")
		}
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

// GetByEmail fetches an account by its normalized email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "user not found")
		}
		return nil, fmt.Errorf("fetching user by email: %w", err)
	}
	return &user, nil
}

// GetByID fetches an account by id.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "user not found")
		}
		return nil, fmt.Errorf("fetching user: %w", err)
	}
	return &user, nil
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
