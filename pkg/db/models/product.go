package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a catalog entry owned by a single store. Stock is an integer count
// and is never allowed to go negative.
type Product struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Store     string          `gorm:"column:store;not null;index"`
	Name      string          `gorm:"column:name;not null"`
	NameLower string          `gorm:"column:name_lower;not null;index"`
	Brand     string          `gorm:"column:brand;not null;default:''"`
	Model     string          `gorm:"column:model;not null;default:''"`
	Category  string          `gorm:"column:category;not null;default:''"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	CostPrice decimal.Decimal `gorm:"column:cost_price;type:numeric(12,2);not null;default:0"`
	Stock     int             `gorm:"column:stock;not null;default:0"`
	MinStock  int             `gorm:"column:min_stock;not null;default:0"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
