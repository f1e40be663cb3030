package reports

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/andreviana/cellshop-pos-backend/pkg/db/models"
)

// Repository loads the raw rows the report aggregations run over.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// SalesInWindow loads a store's sales created in [from, to) with payments.
func (r *Repository) SalesInWindow(ctx context.Context, store string, from, to time.Time) ([]models.Sale, error) {
	var rows []models.Sale
	err := r.db.WithContext(ctx).
		Preload("Payments").
		Where("store = ? AND created_at >= ? AND created_at < ?", store, from, to).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// ProductsNeedingReplenishment loads the store's products at or below their
// replenishment minimum.
func (r *Repository) ProductsNeedingReplenishment(ctx context.Context, store string) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("store = ? AND (stock = 0 OR stock < min_stock)", store).
		Order("stock ASC").
		Find(&rows).Error
	return rows, err
}
