package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Stock holds the on-hand count for a stock-tracked product.
type Stock struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex"`
	Quantity  int       `gorm:"column:quantity;not null"`
	MinStock  int       `gorm:"column:min_stock;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns a primary key when the caller did not.
func (s *Stock) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}
