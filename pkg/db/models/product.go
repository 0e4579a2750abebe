package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a menu item. Products with NeedsStockTracking own a Stock row.
type Product struct {
	ID                 uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name               string          `gorm:"column:name;not null"`
	Price              decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	IsActive           bool            `gorm:"column:is_active;not null"`
	NeedsStockTracking bool            `gorm:"column:needs_stock_tracking;not null"`
	Stock              *Stock          `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns a primary key when the caller did not.
func (p *Product) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
