package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/db/models"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/enums"
)

// Notifier broadcasts committed changes to listeners. Implementations must not
// block the caller and never report failures back.
type Notifier interface {
	NotifyTableChanged(ctx context.Context, table models.Table)
	NotifyOrderChanged(ctx context.Context, event OrderEvent)
}

// OrderEvent describes an order change after its transaction committed.
type OrderEvent struct {
	Type            enums.OrderEventType `json:"type"`
	OrderID         uuid.UUID            `json:"order_id"`
	OrderNumber     string               `json:"order_number"`
	TableID         uuid.UUID            `json:"table_id"`
	PreviousTableID *uuid.UUID           `json:"previous_table_id,omitempty"`
	Status          enums.OrderStatus    `json:"status"`
	Total           decimal.Decimal      `json:"total"`
	UserID          uuid.UUID            `json:"user_id"`
	OccurredAt      time.Time            `json:"occurred_at"`
}

// NewOrderEvent builds an event from the order's committed state.
func NewOrderEvent(eventType enums.OrderEventType, order *models.Order, userID uuid.UUID) OrderEvent {
	return OrderEvent{
		Type:        eventType,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		TableID:     order.TableID,
		Status:      order.Status,
		Total:       order.Total,
		UserID:      userID,
		OccurredAt:  time.Now().UTC(),
	}
}

// Nop discards every notification.
type Nop struct{}

func (Nop) NotifyTableChanged(context.Context, models.Table) {}

func (Nop) NotifyOrderChanged(context.Context, OrderEvent) {}
