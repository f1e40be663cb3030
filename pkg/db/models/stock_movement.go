package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/andreviana/cellshop-pos-backend/pkg/enums"
)

// StockMovement is an append-only audit row written in the same transaction as
// every stock mutation: sales, refunds, and manual edits.
type StockMovement struct {
	ID        uuid.UUID                 `gorm:"column:id;type:uuid;primaryKey"`
	ProductID uuid.UUID                 `gorm:"column:product_id;type:uuid;not null;index"`
	Store     string                    `gorm:"column:store;not null;index"`
	Delta     int                       `gorm:"column:delta;not null"`
	Reason    enums.StockMovementReason `gorm:"column:reason;not null"`
	SaleID    *uuid.UUID                `gorm:"column:sale_id;type:uuid"`
	CreatedAt time.Time                 `gorm:"column:created_at;autoCreateTime"`
}

func (m *StockMovement) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
