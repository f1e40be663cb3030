package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/andreviana/cellshop-pos-backend/pkg/enums"
)

// Sale is the immutable record of a checkout. Only Status and PaymentMethod ever
// change after creation: refunds flip Status, and fiado settlement records the
// method collected. Line items snapshot product name/price at sale time.
type Sale struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	Store         string               `gorm:"column:store;not null;index"`
	Subtotal      decimal.Decimal      `gorm:"column:subtotal;type:numeric(12,2);not null"`
	Discount      decimal.Decimal      `gorm:"column:discount;type:numeric(12,2);not null;default:0"`
	Total         decimal.Decimal      `gorm:"column:total;type:numeric(12,2);not null"`
	PaymentKind   enums.PaymentKind    `gorm:"column:payment_kind;not null"`
	PaymentMethod *enums.PaymentMethod `gorm:"column:payment_method"`
	ClientName    string               `gorm:"column:client_name;not null;default:''"`
	ClientPhone   string               `gorm:"column:client_phone;not null;default:''"`
	DueDate       *time.Time           `gorm:"column:due_date"`
	MaintenanceID *uuid.UUID           `gorm:"column:maintenance_id;type:uuid"`
	Status        enums.SaleStatus     `gorm:"column:status;not null;index"`
	Items         []SaleItem           `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	Payments      []SalePayment        `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// IsFiado reports whether the sale was taken on store credit.
func (s *Sale) IsFiado() bool {
	return s.PaymentKind == enums.PaymentKindFiado
}
