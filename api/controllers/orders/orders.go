package orders

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/VWin4Ever/restaurant-pos-system-sub000/api/middleware"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/api/responses"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/api/validators"
	internalorders "github.com/VWin4Ever/restaurant-pos-system-sub000/internal/orders"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/internal/payments"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/enums"
	pkgerrors "github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/errors"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/logger"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/types"
)

const maxNoteLength = 500

type itemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type createOrderRequest struct {
	TableID      string           `json:"table_id" validate:"required,uuid"`
	Items        []itemRequest    `json:"items" validate:"required,min=1,dive"`
	CustomerNote *string          `json:"customer_note"`
	Discount     *decimal.Decimal `json:"discount"`
}

type updateOrderRequest struct {
	Items        []itemRequest    `json:"items" validate:"required,min=1,dive"`
	CustomerNote *string          `json:"customer_note"`
	Discount     *decimal.Decimal `json:"discount"`
}

type payOrderRequest struct {
	Currency       string               `json:"currency"`
	PaymentMethod  string               `json:"payment_method"`
	PaymentMethods []string             `json:"payment_methods"`
	RielAmount     *decimal.Decimal     `json:"riel_amount"`
	SplitBill      bool                 `json:"split_bill"`
	SplitBreakdown types.SplitBreakdown `json:"split_breakdown"`
	MixedPayments  bool                 `json:"mixed_payments"`
	MixedBreakdown types.MixedBreakdown `json:"mixed_breakdown"`
}

type reassignTableRequest struct {
	TableID string `json:"table_id" validate:"required,uuid"`
}

// Create opens an order on a table.
func Create(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := actor(w, r, logg)
		if !ok {
			return
		}
		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		tableID, err := validators.ParseUUID(req.TableID, "table id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := toItems(req.Items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.CreateOrder(r.Context(), internalorders.CreateOrderInput{
			TableID:      tableID,
			UserID:       userID,
			Items:        items,
			CustomerNote: sanitizeNote(req.CustomerNote),
			Discount:     orZero(req.Discount),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, internalorders.NewOrderDTO(order))
	}
}

// Detail returns the fully loaded order.
func Detail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.PathUUID(r, "orderId", "order id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalorders.NewOrderDTO(order))
	}
}

// Update replaces the items, note and discount of a pending order.
func Update(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := actor(w, r, logg)
		if !ok {
			return
		}
		orderID, err := validators.PathUUID(r, "orderId", "order id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req updateOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := toItems(req.Items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.UpdateOrder(r.Context(), internalorders.UpdateOrderInput{
			OrderID:      orderID,
			UserID:       userID,
			Items:        items,
			CustomerNote: sanitizeNote(req.CustomerNote),
			Discount:     orZero(req.Discount),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalorders.NewOrderDTO(order))
	}
}

// Cancel voids a pending order, returning its stock and freeing its table.
func Cancel(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := actor(w, r, logg)
		if !ok {
			return
		}
		orderID, err := validators.PathUUID(r, "orderId", "order id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.CancelOrder(r.Context(), internalorders.CancelOrderInput{OrderID: orderID, UserID: userID})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalorders.NewOrderDTO(order))
	}
}

// Pay settles a pending order.
func Pay(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := actor(w, r, logg)
		if !ok {
			return
		}
		orderID, err := validators.PathUUID(r, "orderId", "order id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req payOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payment, err := req.toPayment()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.PayOrder(r.Context(), internalorders.PayOrderInput{OrderID: orderID, UserID: userID, Payment: payment})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalorders.NewOrderDTO(order))
	}
}

// ReassignTable moves a pending order to another table.
func ReassignTable(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := actor(w, r, logg)
		if !ok {
			return
		}
		orderID, err := validators.PathUUID(r, "orderId", "order id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req reassignTableRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		tableID, err := validators.ParseUUID(req.TableID, "table id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.ReassignTable(r.Context(), internalorders.ReassignTableInput{
			OrderID:    orderID,
			NewTableID: tableID,
			UserID:     userID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalorders.NewOrderDTO(order))
	}
}

func actor(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (uuid.UUID, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, middleware.ActorHeader+" header required"))
		return uuid.Nil, false
	}
	return userID, true
}

func toItems(reqs []itemRequest) ([]internalorders.ItemInput, error) {
	items := make([]internalorders.ItemInput, 0, len(reqs))
	for _, req := range reqs {
		productID, err := uuid.Parse(req.ProductID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
		}
		items = append(items, internalorders.ItemInput{ProductID: productID, Quantity: req.Quantity})
	}
	return items, nil
}

func (p payOrderRequest) toPayment() (payments.Request, error) {
	currency, err := enums.ParseCurrency(p.Currency)
	if err != nil {
		return payments.Request{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid currency")
	}

	raw := make([]string, 0, len(p.PaymentMethods)+1)
	if strings.TrimSpace(p.PaymentMethod) != "" {
		raw = append(raw, p.PaymentMethod)
	}
	raw = append(raw, p.PaymentMethods...)
	methods := make([]enums.PaymentMethod, 0, len(raw))
	for _, value := range raw {
		method, err := enums.ParsePaymentMethod(value)
		if err != nil {
			return payments.Request{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown payment method").
				WithDetails(map[string]string{"payment_method": value})
		}
		methods = append(methods, method)
	}

	return payments.Request{
		Currency:       currency,
		PaymentMethods: methods,
		RielAmount:     orZero(p.RielAmount),
		SplitBill:      p.SplitBill,
		SplitBreakdown: p.SplitBreakdown,
		MixedPayments:  p.MixedPayments,
		MixedBreakdown: p.MixedBreakdown,
	}, nil
}

func sanitizeNote(note *string) *string {
	if note == nil {
		return nil
	}
	cleaned := validators.SanitizeString(*note, maxNoteLength)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}

func orZero(value *decimal.Decimal) decimal.Decimal {
	if value == nil {
		return decimal.Zero
	}
	return *value
}
