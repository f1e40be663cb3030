package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/andreviana/cellshop-pos-backend/pkg/db/models"
	"github.com/andreviana/cellshop-pos-backend/pkg/enums"
)

// SaleItemDTO is one snapshotted line of a sale.
type SaleItemDTO struct {
	ID        uuid.UUID       `json:"id"`
	ProductID *uuid.UUID      `json:"productId,omitempty"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Qty       int             `json:"qty"`
}

// SalePaymentDTO is one entry of a split payment.
type SalePaymentDTO struct {
	Method enums.PaymentMethod `json:"method"`
	Amount decimal.Decimal     `json:"amount"`
}

// SaleDTO is the read model returned by sale operations.
// SalePage is one cursor page of sales. NextCursor is empty on the last page.
type SalePage struct {
	Sales      []SaleDTO `json:"sales"`
	NextCursor string    `json:"nextCursor,omitempty"`
}

type SaleDTO struct {
	ID            uuid.UUID            `json:"id"`
	Subtotal      decimal.Decimal      `json:"subtotal"`
	Discount      decimal.Decimal      `json:"discount"`
	Total         decimal.Decimal      `json:"total"`
	PaymentKind   enums.PaymentKind    `json:"paymentKind"`
	PaymentMethod *enums.PaymentMethod `json:"paymentMethod,omitempty"`
	ClientName    string               `json:"clientName,omitempty"`
	ClientPhone   string               `json:"clientPhone,omitempty"`
	DueDate       *time.Time           `json:"dueDate,omitempty"`
	MaintenanceID *uuid.UUID           `json:"maintenanceId,omitempty"`
	Status        enums.SaleStatus     `json:"status"`
	Items         []SaleItemDTO        `json:"items"`
	Payments      []SalePaymentDTO     `json:"payments,omitempty"`
	CreatedAt     time.Time            `json:"createdAt"`
}

// NewSaleDTO maps a sale row and its associations to the read model.
func NewSaleDTO(sale *models.Sale) *SaleDTO {
	dto := &SaleDTO{
		ID:            sale.ID,
		Subtotal:      sale.Subtotal,
		Discount:      sale.Discount,
		Total:         sale.Total,
		PaymentKind:   sale.PaymentKind,
		PaymentMethod: sale.PaymentMethod,
		ClientName:    sale.ClientName,
		ClientPhone:   sale.ClientPhone,
		DueDate:       sale.DueDate,
		MaintenanceID: sale.MaintenanceID,
		Status:        sale.Status,
		Items:         make([]SaleItemDTO, len(sale.Items)),
		CreatedAt:     sale.CreatedAt,
	}
	for i, item := range sale.Items {
		dto.Items[i] = SaleItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Qty:       item.Qty,
		}
	}
	for _, payment := range sale.Payments {
		dto.Payments = append(dto.Payments, SalePaymentDTO{
			Method: payment.Method,
			Amount: payment.Amount,
		})
	}
	return dto
}
