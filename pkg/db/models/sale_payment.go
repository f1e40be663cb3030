package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/andreviana/cellshop-pos-backend/pkg/enums"
)

// SalePayment is one entry of a split payment. The amounts of a sale's payments
// must sum to the sale total before the sale is allowed to commit.
type SalePayment struct {
	ID     uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	SaleID uuid.UUID           `gorm:"column:sale_id;type:uuid;not null;index"`
	Method enums.PaymentMethod `gorm:"column:method;not null"`
	Amount decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null"`
}

func (p *SalePayment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
