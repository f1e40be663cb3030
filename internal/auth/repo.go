package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/andreviana/cellshop-pos-backend/pkg/db/models"
)

// Repository persists operator accounts.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByEmail loads the account for a lowercased email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.StoreAccount, error) {
	var account models.StoreAccount
	err := r.db.WithContext(ctx).
		First(&account, "email = ?", email).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// Create inserts a new account row.
func (r *Repository) Create(ctx context.Context, account *models.StoreAccount) (*models.StoreAccount, error) {
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		return nil, err
	}
	return account, nil
}

// UpdateLastLogin stamps the account's last successful login.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.StoreAccount{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
}
