package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BusinessSetting is the live business configuration. The most recently
// updated row wins.
type BusinessSetting struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	BusinessName string          `gorm:"column:business_name;not null"`
	VATRate      decimal.Decimal `gorm:"column:vat_rate;type:numeric(5,2);not null"`
	ExchangeRate decimal.Decimal `gorm:"column:exchange_rate;type:numeric(12,2);not null"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns a primary key when the caller did not.
func (s *BusinessSetting) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}
