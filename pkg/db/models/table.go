package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/enums"
)

// Table is a dining table orders are seated at.
type Table struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	Number    int               `gorm:"column:number;not null;uniqueIndex"`
	Status    enums.TableStatus `gorm:"column:status;type:text;not null"`
	Capacity  int               `gorm:"column:capacity;not null"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns a primary key when the caller did not.
func (t *Table) BeforeCreate(*gorm.DB) error {
	ensureID(&t.ID)
	return nil
}
