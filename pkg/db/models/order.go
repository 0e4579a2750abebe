package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/enums"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/types"
)

// Order is a table order and its settlement record.
type Order struct {
	ID               uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber      string                  `gorm:"column:order_number;not null;uniqueIndex"`
	TableID          uuid.UUID               `gorm:"column:table_id;type:uuid;not null;index"`
	UserID           uuid.UUID               `gorm:"column:user_id;type:uuid;not null"`
	Status           enums.OrderStatus       `gorm:"column:status;type:text;not null;index"`
	Subtotal         decimal.Decimal         `gorm:"column:subtotal;type:numeric(12,2);not null"`
	Tax              decimal.Decimal         `gorm:"column:tax;type:numeric(12,2);not null"`
	Discount         decimal.Decimal         `gorm:"column:discount;type:numeric(12,2);not null"`
	Total            decimal.Decimal         `gorm:"column:total;type:numeric(12,2);not null"`
	Currency         enums.Currency          `gorm:"column:currency;type:text;not null"`
	PaymentMethod    *enums.PaymentMethod    `gorm:"column:payment_method;type:text"`
	PaidUSD          decimal.Decimal         `gorm:"column:paid_usd;type:numeric(12,2);not null"`
	PaidRiel         decimal.Decimal         `gorm:"column:paid_riel;type:numeric(14,2);not null"`
	SplitBill        bool                    `gorm:"column:split_bill;not null"`
	SplitBreakdown   types.SplitBreakdown    `gorm:"column:split_breakdown;type:jsonb;serializer:json"`
	MixedPayments    bool                    `gorm:"column:mixed_payments;not null"`
	MixedBreakdown   types.MixedBreakdown    `gorm:"column:mixed_breakdown;type:jsonb;serializer:json"`
	BusinessSnapshot *types.BusinessSnapshot `gorm:"column:business_snapshot;type:jsonb;serializer:json"`
	CustomerNote     *string                 `gorm:"column:customer_note"`
	PaidAt           *time.Time              `gorm:"column:paid_at"`
	CancelledAt      *time.Time              `gorm:"column:cancelled_at"`
	Items            []OrderItem             `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Table            *Table                  `gorm:"foreignKey:TableID"`
	CreatedAt        time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns a primary key when the caller did not.
func (o *Order) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}
