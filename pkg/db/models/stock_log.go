package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/enums"
)

// StockLog is an append-only audit row for a stock mutation.
type StockLog struct {
	ID        uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	StockID   uuid.UUID          `gorm:"column:stock_id;type:uuid;not null;index"`
	UserID    uuid.UUID          `gorm:"column:user_id;type:uuid;not null"`
	Type      enums.StockLogType `gorm:"column:type;type:text;not null"`
	Quantity  int                `gorm:"column:quantity;not null"`
	Note      string             `gorm:"column:note;not null"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
}

// BeforeCreate assigns a primary key when the caller did not.
func (l *StockLog) BeforeCreate(*gorm.DB) error {
	ensureID(&l.ID)
	return nil
}
