package maintenance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/andreviana/cellshop-pos-backend/pkg/db/models"
	"github.com/andreviana/cellshop-pos-backend/pkg/enums"
)

// TicketDTO is the read model returned by ticket operations.
type TicketDTO struct {
	ID           uuid.UUID               `json:"id"`
	Customer     string                  `json:"customer"`
	Phone        string                  `json:"phone,omitempty"`
	Device       string                  `json:"device"`
	Brand        string                  `json:"brand,omitempty"`
	Model        string                  `json:"model,omitempty"`
	Issue        string                  `json:"issue,omitempty"`
	Status       enums.MaintenanceStatus `json:"status"`
	Value        decimal.Decimal         `json:"value"`
	Paid         bool                    `json:"paid"`
	PartOrdered  bool                    `json:"partOrdered"`
	OrderDate    *time.Time              `json:"orderDate,omitempty"`
	DeliveryDate *time.Time              `json:"deliveryDate,omitempty"`
	Notes        string                  `json:"notes,omitempty"`
	CreatedAt    time.Time               `json:"createdAt"`
	UpdatedAt    time.Time               `json:"updatedAt"`
}

// NewTicketDTO maps a ticket row to its read model.
func NewTicketDTO(t *models.MaintenanceTicket) *TicketDTO {
	return &TicketDTO{
		ID:           t.ID,
		Customer:     t.Customer,
		Phone:        t.Phone,
		Device:       t.Device,
		Brand:        t.Brand,
		Model:        t.Model,
		Issue:        t.Issue,
		Status:       t.Status,
		Value:        t.Value,
		Paid:         t.Paid,
		PartOrdered:  t.PartOrdered,
		OrderDate:    t.OrderDate,
		DeliveryDate: t.DeliveryDate,
		Notes:        t.Notes,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}
