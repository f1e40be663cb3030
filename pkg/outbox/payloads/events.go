package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleLine is one line of a sale as carried on sale events.
type SaleLine struct {
	ProductID *uuid.UUID      `json:"productId,omitempty"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Qty       int             `json:"qty"`
}

// SaleCreated is emitted when a checkout commits.
type SaleCreated struct {
	SaleID      uuid.UUID       `json:"saleId"`
	Store       string          `json:"store"`
	Total       decimal.Decimal `json:"total"`
	PaymentKind string          `json:"paymentKind"`
	Lines       []SaleLine      `json:"lines"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// SaleRefunded is emitted when a sale is refunded and its stock restored.
type SaleRefunded struct {
	SaleID     uuid.UUID       `json:"saleId"`
	Store      string          `json:"store"`
	Total      decimal.Decimal `json:"total"`
	RefundedAt time.Time       `json:"refundedAt"`
}

// FiadoSettled is emitted when a store-credit sale is collected.
type FiadoSettled struct {
	SaleID    uuid.UUID       `json:"saleId"`
	Store     string          `json:"store"`
	Total     decimal.Decimal `json:"total"`
	Method    string          `json:"method"`
	SettledAt time.Time       `json:"settledAt"`
}
