package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/andreviana/cellshop-pos-backend/pkg/db/models"
	"github.com/andreviana/cellshop-pos-backend/pkg/enums"
	"github.com/andreviana/cellshop-pos-backend/pkg/pagination"
)

// Repository wires together sale persistence and the stock side effects sales
// have on the catalog.
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

// Create inserts the sale with its items and split payments.
func (r *Repository) Create(ctx context.Context, sale *models.Sale) (*models.Sale, error) {
	if err := r.db.WithContext(ctx).Create(sale).Error; err != nil {
		return nil, err
	}
	return sale, nil
}

// FindByStoreAndID loads a sale with its items and payments.
func (r *Repository) FindByStoreAndID(ctx context.Context, store string, id uuid.UUID) (*models.Sale, error) {
	var sale models.Sale
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		First(&sale, "id = ? AND store = ?", id, store).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// ListFilter narrows a store's sale listing. Cursor resumes a previous page
// at the (created_at, id) position it encodes.
type ListFilter struct {
	From   *time.Time
	To     *time.Time
	Status *enums.SaleStatus
	Kind   *enums.PaymentKind
	Cursor *pagination.Cursor
	Limit  int
}

// List returns the store's sales, newest first.
func (r *Repository) List(ctx context.Context, store string, filter ListFilter) ([]models.Sale, error) {
	q := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		Where("store = ?", store)
	if filter.From != nil {
		q = q.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("created_at < ?", *filter.To)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.Kind != nil {
		q = q.Where("payment_kind = ?", *filter.Kind)
	}
	if filter.Cursor != nil {
		q = q.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			filter.Cursor.CreatedAt, filter.Cursor.CreatedAt, filter.Cursor.ID,
		)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}
	var rows []models.Sale
	err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error
	return rows, err
}

// MarkRefunded flips the sale to refunded unless a concurrent refund already
// won. Zero rows affected means the guard rejected the flip.
func (r *Repository) MarkRefunded(ctx context.Context, store string, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Where("id = ? AND store = ? AND status <> ?", id, store, enums.SaleStatusRefunded).
		Update("status", enums.SaleStatusRefunded)
	return res.RowsAffected, res.Error
}

// SettlePending completes a pending fiado sale recording the collected method.
// Zero rows affected means the sale was not pending anymore.
func (r *Repository) SettlePending(ctx context.Context, store string, id uuid.UUID, method enums.PaymentMethod) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Where("id = ? AND store = ? AND status = ?", id, store, enums.SaleStatusPending).
		Updates(map[string]any{
			"status":         enums.SaleStatusCompleted,
			"payment_method": method,
		})
	return res.RowsAffected, res.Error
}

// DecrementStockClamped atomically takes qty out of the product's stock,
// clamping at zero when the sale oversells. Zero rows affected means the
// product no longer exists.
func (r *Repository) DecrementStockClamped(ctx context.Context, store string, productID uuid.UUID, qty int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND store = ?", productID, store).
		Update("stock", gorm.Expr("CASE WHEN stock >= ? THEN stock - ? ELSE 0 END", qty, qty))
	return res.RowsAffected, res.Error
}

// IncrementStock puts qty back into the product's stock. Zero rows affected
// means the product no longer exists.
func (r *Repository) IncrementStock(ctx context.Context, store string, productID uuid.UUID, qty int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND store = ?", productID, store).
		Update("stock", gorm.Expr("stock + ?", qty))
	return res.RowsAffected, res.Error
}

// FindProduct loads a catalog product owned by the store.
func (r *Repository) FindProduct(ctx context.Context, store string, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		First(&product, "id = ? AND store = ?", id, store).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// RecordMovement appends a stock audit row.
func (r *Repository) RecordMovement(ctx context.Context, movement *models.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}
