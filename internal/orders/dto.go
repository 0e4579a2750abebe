package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/VWin4Ever/restaurant-pos-system-sub000/internal/payments"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/db/models"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/enums"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/types"
)

// ItemInput is one requested order line.
type ItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// CreateOrderInput opens a new order on a table.
type CreateOrderInput struct {
	TableID      uuid.UUID
	UserID       uuid.UUID
	Items        []ItemInput
	CustomerNote *string
	Discount     decimal.Decimal
}

// UpdateOrderInput replaces the lines, note and discount of a pending order.
type UpdateOrderInput struct {
	OrderID      uuid.UUID
	UserID       uuid.UUID
	Items        []ItemInput
	CustomerNote *string
	Discount     decimal.Decimal
}

type CancelOrderInput struct {
	OrderID uuid.UUID
	UserID  uuid.UUID
}

type PayOrderInput struct {
	OrderID uuid.UUID
	UserID  uuid.UUID
	Payment payments.Request
}

type ReassignTableInput struct {
	OrderID    uuid.UUID
	NewTableID uuid.UUID
	UserID     uuid.UUID
}

// OrderDTO is the API representation of an order.
type OrderDTO struct {
	ID               uuid.UUID               `json:"id"`
	OrderNumber      string                  `json:"order_number"`
	TableID          uuid.UUID               `json:"table_id"`
	TableNumber      *int                    `json:"table_number,omitempty"`
	UserID           uuid.UUID               `json:"user_id"`
	Status           enums.OrderStatus       `json:"status"`
	Subtotal         decimal.Decimal         `json:"subtotal"`
	Tax              decimal.Decimal         `json:"tax"`
	Discount         decimal.Decimal         `json:"discount"`
	Total            decimal.Decimal         `json:"total"`
	Currency         enums.Currency          `json:"currency"`
	PaymentMethod    *enums.PaymentMethod    `json:"payment_method,omitempty"`
	PaidUSD          decimal.Decimal         `json:"paid_usd"`
	PaidRiel         decimal.Decimal         `json:"paid_riel"`
	SplitBill        bool                    `json:"split_bill"`
	SplitBreakdown   types.SplitBreakdown    `json:"split_breakdown,omitempty"`
	MixedPayments    bool                    `json:"mixed_payments"`
	MixedBreakdown   types.MixedBreakdown    `json:"mixed_breakdown,omitempty"`
	BusinessSnapshot *types.BusinessSnapshot `json:"business_snapshot,omitempty"`
	CustomerNote     *string                 `json:"customer_note,omitempty"`
	Items            []OrderItemDTO          `json:"items"`
	PaidAt           *time.Time              `json:"paid_at,omitempty"`
	CancelledAt      *time.Time              `json:"cancelled_at,omitempty"`
	CreatedAt        time.Time               `json:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at"`
}

type OrderItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// NewOrderDTO maps a loaded order into its API shape.
func NewOrderDTO(order *models.Order) OrderDTO {
	dto := OrderDTO{
		ID:               order.ID,
		OrderNumber:      order.OrderNumber,
		TableID:          order.TableID,
		UserID:           order.UserID,
		Status:           order.Status,
		Subtotal:         order.Subtotal,
		Tax:              order.Tax,
		Discount:         order.Discount,
		Total:            order.Total,
		Currency:         order.Currency,
		PaymentMethod:    order.PaymentMethod,
		PaidUSD:          order.PaidUSD,
		PaidRiel:         order.PaidRiel,
		SplitBill:        order.SplitBill,
		SplitBreakdown:   order.SplitBreakdown,
		MixedPayments:    order.MixedPayments,
		MixedBreakdown:   order.MixedBreakdown,
		BusinessSnapshot: order.BusinessSnapshot,
		CustomerNote:     order.CustomerNote,
		Items:            make([]OrderItemDTO, 0, len(order.Items)),
		PaidAt:           order.PaidAt,
		CancelledAt:      order.CancelledAt,
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
	}
	if order.Table != nil {
		number := order.Table.Number
		dto.TableNumber = &number
	}
	for _, item := range order.Items {
		line := OrderItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Subtotal:  item.Subtotal,
		}
		if item.Product != nil {
			line.ProductName = item.Product.Name
		}
		dto.Items = append(dto.Items, line)
	}
	return dto
}
