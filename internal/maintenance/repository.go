package maintenance

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/andreviana/cellshop-pos-backend/pkg/db/models"
	"github.com/andreviana/cellshop-pos-backend/pkg/enums"
)

// Repository persists maintenance tickets.
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

// Create inserts a new ticket.
func (r *Repository) Create(ctx context.Context, ticket *models.MaintenanceTicket) (*models.MaintenanceTicket, error) {
	if err := r.db.WithContext(ctx).Create(ticket).Error; err != nil {
		return nil, err
	}
	return ticket, nil
}

// Update persists the full ticket row.
func (r *Repository) Update(ctx context.Context, ticket *models.MaintenanceTicket) (*models.MaintenanceTicket, error) {
	if err := r.db.WithContext(ctx).Save(ticket).Error; err != nil {
		return nil, err
	}
	return ticket, nil
}

// Delete removes a ticket owned by the store.
func (r *Repository) Delete(ctx context.Context, store string, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND store = ?", id, store).
		Delete(&models.MaintenanceTicket{}).Error
}

// FindByStoreAndID loads a ticket scoped to its owning store.
func (r *Repository) FindByStoreAndID(ctx context.Context, store string, id uuid.UUID) (*models.MaintenanceTicket, error) {
	var ticket models.MaintenanceTicket
	err := r.db.WithContext(ctx).
		First(&ticket, "id = ? AND store = ?", id, store).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// ListFilter narrows a store's ticket listing.
type ListFilter struct {
	Status *enums.MaintenanceStatus
	Search string
}

// List returns the store's tickets, newest first.
func (r *Repository) List(ctx context.Context, store string, filter ListFilter) ([]models.MaintenanceTicket, error) {
	q := r.db.WithContext(ctx).Where("store = ?", store)
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if term := strings.ToLower(strings.TrimSpace(filter.Search)); term != "" {
		q = q.Where("LOWER(customer) LIKE ? OR LOWER(device) LIKE ?", "%"+term+"%", "%"+term+"%")
	}
	var rows []models.MaintenanceTicket
	err := q.Order("created_at DESC").Find(&rows).Error
	return rows, err
}

// MarkPaid flips an unpaid ticket to paid. Zero rows affected means the ticket
// was already paid or missing.
func (r *Repository) MarkPaid(ctx context.Context, store string, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.MaintenanceTicket{}).
		Where("id = ? AND store = ? AND paid = ?", id, store, false).
		Update("paid", true)
	return res.RowsAffected, res.Error
}

// UnmarkPaid reverts a paid flip when the billing sale could not be created.
func (r *Repository) UnmarkPaid(ctx context.Context, store string, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.MaintenanceTicket{}).
		Where("id = ? AND store = ?", id, store).
		Update("paid", false)
	return res.RowsAffected, res.Error
}
