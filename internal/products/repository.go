package product

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/andreviana/cellshop-pos-backend/pkg/db/models"
)

// Repository wires together catalog and stock-ledger persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new product row.
func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Update persists the full product row.
func (r *Repository) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Delete removes a product owned by the store.
func (r *Repository) Delete(ctx context.Context, store string, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND store = ?", id, store).
		Delete(&models.Product{}).Error
}

// FindByStoreAndID loads a product scoped to its owning store.
func (r *Repository) FindByStoreAndID(ctx context.Context, store string, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		First(&product, "id = ? AND store = ?", id, store).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListFilter narrows a store's product listing.
type ListFilter struct {
	Search            string
	Category          string
	ReplenishmentOnly bool
}

// List returns the store's products, newest first.
func (r *Repository) List(ctx context.Context, store string, filter ListFilter) ([]models.Product, error) {
	q := r.db.WithContext(ctx).Where("store = ?", store)
	if term := strings.ToLower(strings.TrimSpace(filter.Search)); term != "" {
		q = q.Where("name_lower LIKE ?", "%"+term+"%")
	}
	if category := strings.TrimSpace(filter.Category); category != "" {
		q = q.Where("category = ?", category)
	}
	if filter.ReplenishmentOnly {
		q = q.Where("stock = 0 OR stock < min_stock")
	}
	var rows []models.Product
	err := q.Order("created_at DESC").Find(&rows).Error
	return rows, err
}

// IncrementStock adds qty to the product's stock unconditionally.
func (r *Repository) IncrementStock(ctx context.Context, store string, id uuid.UUID, qty int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND store = ?", id, store).
		Update("stock", gorm.Expr("stock + ?", qty))
	return res.RowsAffected, res.Error
}

// DecrementStockGuarded subtracts qty only when enough stock exists. Zero rows
// affected means the product was missing or the stock was insufficient.
func (r *Repository) DecrementStockGuarded(ctx context.Context, store string, id uuid.UUID, qty int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND store = ? AND stock >= ?", id, store, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	return res.RowsAffected, res.Error
}

// SetStock overwrites the product's stock with an absolute value.
func (r *Repository) SetStock(ctx context.Context, store string, id uuid.UUID, qty int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND store = ?", id, store).
		Update("stock", qty)
	return res.RowsAffected, res.Error
}

// RecordMovement appends a stock audit row.
func (r *Repository) RecordMovement(ctx context.Context, movement *models.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

// ListMovements returns the newest audit rows for a product.
func (r *Repository) ListMovements(ctx context.Context, store string, productID uuid.UUID, limit int) ([]models.StockMovement, error) {
	var rows []models.StockMovement
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND store = ?", productID, store).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
