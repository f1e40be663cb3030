package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/andreviana/cellshop-pos-backend/pkg/enums"
)

// MaintenanceTicket tracks a device repair from intake to delivery. Its lifecycle
// is independent of sales; billing a completed repair creates a Sale that points
// back here via maintenance_id.
type MaintenanceTicket struct {
	ID           uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	Store        string                  `gorm:"column:store;not null;index"`
	Customer     string                  `gorm:"column:customer;not null"`
	Phone        string                  `gorm:"column:phone;not null;default:''"`
	Device       string                  `gorm:"column:device;not null;default:''"`
	Brand        string                  `gorm:"column:brand;not null;default:''"`
	Model        string                  `gorm:"column:model;not null;default:''"`
	Issue        string                  `gorm:"column:issue;not null;default:''"`
	Status       enums.MaintenanceStatus `gorm:"column:status;not null;index"`
	Value        decimal.Decimal         `gorm:"column:value;type:numeric(12,2);not null;default:0"`
	Paid         bool                    `gorm:"column:paid;not null;default:false"`
	PartOrdered  bool                    `gorm:"column:part_ordered;not null;default:false"`
	OrderDate    *time.Time              `gorm:"column:order_date"`
	DeliveryDate *time.Time              `gorm:"column:delivery_date"`
	Notes        string                  `gorm:"column:notes;not null;default:''"`
	CreatedAt    time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

func (m *MaintenanceTicket) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
