package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/andreviana/cellshop-pos-backend/pkg/db/models"
	"github.com/andreviana/cellshop-pos-backend/pkg/enums"
)

// ProductDTO is the read model returned by catalog operations. Status is derived
// on every read and never stored.
type ProductDTO struct {
	ID        uuid.UUID         `json:"id"`
	Name      string            `json:"name"`
	Brand     string            `json:"brand,omitempty"`
	Model     string            `json:"model,omitempty"`
	Category  string            `json:"category,omitempty"`
	Price     decimal.Decimal   `json:"price"`
	CostPrice decimal.Decimal   `json:"costPrice"`
	Stock     int               `json:"stock"`
	MinStock  int               `json:"minStock"`
	Status    enums.StockStatus `json:"status"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// NewProductDTO maps a product row to its read model.
func NewProductDTO(p *models.Product) *ProductDTO {
	return &ProductDTO{
		ID:        p.ID,
		Name:      p.Name,
		Brand:     p.Brand,
		Model:     p.Model,
		Category:  p.Category,
		Price:     p.Price,
		CostPrice: p.CostPrice,
		Stock:     p.Stock,
		MinStock:  p.MinStock,
		Status:    StockStatusFor(p.Stock, p.MinStock),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// StockStatusFor classifies a stock level against its replenishment minimum.
// Critical means empty, or at or below a quarter of the minimum when a minimum
// is set. Low means below the minimum but not critical.
func StockStatusFor(stock, minStock int) enums.StockStatus {
	if stock <= 0 {
		return enums.StockStatusCritical
	}
	if minStock > 0 && 4*stock <= minStock {
		return enums.StockStatusCritical
	}
	if stock < minStock {
		return enums.StockStatusLow
	}
	return enums.StockStatusOK
}

// MovementDTO is one audit entry of a product's stock history.
type MovementDTO struct {
	ID        uuid.UUID                 `json:"id"`
	ProductID uuid.UUID                 `json:"productId"`
	Delta     int                       `json:"delta"`
	Reason    enums.StockMovementReason `json:"reason"`
	SaleID    *uuid.UUID                `json:"saleId,omitempty"`
	CreatedAt time.Time                 `json:"createdAt"`
}

// NewMovementDTO maps a stock movement row to its read model.
func NewMovementDTO(m *models.StockMovement) *MovementDTO {
	return &MovementDTO{
		ID:        m.ID,
		ProductID: m.ProductID,
		Delta:     m.Delta,
		Reason:    m.Reason,
		SaleID:    m.SaleID,
		CreatedAt: m.CreatedAt,
	}
}
