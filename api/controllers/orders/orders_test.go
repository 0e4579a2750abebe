package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/VWin4Ever/restaurant-pos-system-sub000/api/middleware"
	internalorders "github.com/VWin4Ever/restaurant-pos-system-sub000/internal/orders"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/db/models"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/enums"
	pkgerrors "github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/errors"
)

type stubOrdersService struct {
	create   func(ctx context.Context, input internalorders.CreateOrderInput) (*models.Order, error)
	update   func(ctx context.Context, input internalorders.UpdateOrderInput) (*models.Order, error)
	cancel   func(ctx context.Context, input internalorders.CancelOrderInput) (*models.Order, error)
	pay      func(ctx context.Context, input internalorders.PayOrderInput) (*models.Order, error)
	reassign func(ctx context.Context, input internalorders.ReassignTableInput) (*models.Order, error)
	get      func(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

func (s *stubOrdersService) CreateOrder(ctx context.Context, input internalorders.CreateOrderInput) (*models.Order, error) {
	if s.create != nil {
		return s.create(ctx, input)
	}
	panic("unexpected CreateOrder")
}

func (s *stubOrdersService) UpdateOrder(ctx context.Context, input internalorders.UpdateOrderInput) (*models.Order, error) {
	if s.update != nil {
		return s.update(ctx, input)
	}
	panic("unexpected UpdateOrder")
}

func (s *stubOrdersService) CancelOrder(ctx context.Context, input internalorders.CancelOrderInput) (*models.Order, error) {
	if s.cancel != nil {
		return s.cancel(ctx, input)
	}
	panic("unexpected CancelOrder")
}

func (s *stubOrdersService) PayOrder(ctx context.Context, input internalorders.PayOrderInput) (*models.Order, error) {
	if s.pay != nil {
		return s.pay(ctx, input)
	}
	panic("unexpected PayOrder")
}

func (s *stubOrdersService) ReassignTable(ctx context.Context, input internalorders.ReassignTableInput) (*models.Order, error) {
	if s.reassign != nil {
		return s.reassign(ctx, input)
	}
	panic("unexpected ReassignTable")
}

func (s *stubOrdersService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if s.get != nil {
		return s.get(ctx, id)
	}
	panic("unexpected GetOrder")
}

type orderEnvelope struct {
	Data struct {
		ID            uuid.UUID            `json:"id"`
		OrderNumber   string               `json:"order_number"`
		Status        enums.OrderStatus    `json:"status"`
		TableNumber   *int                 `json:"table_number"`
		PaymentMethod *enums.PaymentMethod `json:"payment_method"`
	} `json:"data"`
}

type errorEnvelope struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func newRequest(method, target, body string, userID uuid.UUID, params map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if userID != uuid.Nil {
		req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	}
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for key, value := range params {
			rctx.URLParams.Add(key, value)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}
	return req
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var envelope errorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return envelope
}

func TestCreateForwardsInput(t *testing.T) {
	userID := uuid.New()
	tableID := uuid.New()
	productID := uuid.New()
	orderID := uuid.New()

	svc := &stubOrdersService{
		create: func(ctx context.Context, input internalorders.CreateOrderInput) (*models.Order, error) {
			if input.UserID != userID || input.TableID != tableID {
				t.Fatalf("unexpected actor or table: %+v", input)
			}
			if len(input.Items) != 1 || input.Items[0].ProductID != productID || input.Items[0].Quantity != 2 {
				t.Fatalf("unexpected items: %+v", input.Items)
			}
			if !input.Discount.Equal(decimal.RequireFromString("1.50")) {
				t.Fatalf("unexpected discount %s", input.Discount)
			}
			if input.CustomerNote == nil || *input.CustomerNote != "no ice" {
				t.Fatalf("note not sanitized: %v", input.CustomerNote)
			}
			return &models.Order{
				ID:          orderID,
				OrderNumber: "ORD-20261019-ABC123",
				Status:      enums.OrderStatusPending,
				Table:       &models.Table{ID: tableID, Number: 7},
			}, nil
		},
	}

	body := `{"table_id":"` + tableID.String() + `","items":[{"product_id":"` + productID.String() + `","quantity":2}],"customer_note":"  no ice  ","discount":"1.50"}`
	resp := httptest.NewRecorder()
	Create(svc, nil).ServeHTTP(resp, newRequest(http.MethodPost, "/api/v1/orders", body, userID, nil))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope orderEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != orderID || envelope.Data.OrderNumber != "ORD-20261019-ABC123" {
		t.Fatalf("unexpected order in response: %+v", envelope.Data)
	}
	if envelope.Data.TableNumber == nil || *envelope.Data.TableNumber != 7 {
		t.Fatalf("expected table number 7")
	}
}

func TestCreateRequiresActor(t *testing.T) {
	body := `{"table_id":"` + uuid.NewString() + `","items":[{"product_id":"` + uuid.NewString() + `","quantity":1}]}`
	resp := httptest.NewRecorder()
	Create(&stubOrdersService{}, nil).ServeHTTP(resp, newRequest(http.MethodPost, "/api/v1/orders", body, uuid.Nil, nil))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if got := decodeError(t, resp).Error.Code; got != string(pkgerrors.CodeValidation) {
		t.Fatalf("unexpected code %s", got)
	}
}

func TestCreateRejectsMalformedBody(t *testing.T) {
	cases := map[string]string{
		"empty items":     `{"table_id":"` + uuid.NewString() + `","items":[]}`,
		"bad product id":  `{"table_id":"` + uuid.NewString() + `","items":[{"product_id":"nope","quantity":1}]}`,
		"zero quantity":   `{"table_id":"` + uuid.NewString() + `","items":[{"product_id":"` + uuid.NewString() + `","quantity":0}]}`,
		"unknown field":   `{"table_id":"` + uuid.NewString() + `","items":[{"product_id":"` + uuid.NewString() + `","quantity":1}],"tip":"2"}`,
		"missing table":   `{"items":[{"product_id":"` + uuid.NewString() + `","quantity":1}]}`,
		"not json at all": `table 4 please`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			resp := httptest.NewRecorder()
			Create(&stubOrdersService{}, nil).ServeHTTP(resp, newRequest(http.MethodPost, "/api/v1/orders", body, uuid.New(), nil))
			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 got %d: %s", resp.Code, resp.Body.String())
			}
		})
	}
}

func TestDetailMapsNotFound(t *testing.T) {
	orderID := uuid.New()
	svc := &stubOrdersService{
		get: func(ctx context.Context, id uuid.UUID) (*models.Order, error) {
			if id != orderID {
				t.Fatalf("unexpected order id %s", id)
			}
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		},
	}

	resp := httptest.NewRecorder()
	req := newRequest(http.MethodGet, "/api/v1/orders/"+orderID.String(), "", uuid.Nil, map[string]string{"orderId": orderID.String()})
	Detail(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
	if got := decodeError(t, resp).Error.Message; got != "order not found" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestDetailRejectsBadID(t *testing.T) {
	resp := httptest.NewRecorder()
	req := newRequest(http.MethodGet, "/api/v1/orders/abc", "", uuid.Nil, map[string]string{"orderId": "abc"})
	Detail(&stubOrdersService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestUpdateSurfacesConflict(t *testing.T) {
	orderID := uuid.New()
	svc := &stubOrdersService{
		update: func(ctx context.Context, input internalorders.UpdateOrderInput) (*models.Order, error) {
			if input.OrderID != orderID {
				t.Fatalf("unexpected order id %s", input.OrderID)
			}
			if !input.Discount.IsZero() {
				t.Fatalf("expected zero discount, got %s", input.Discount)
			}
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "order is PAID")
		},
	}

	body := `{"items":[{"product_id":"` + uuid.NewString() + `","quantity":1}]}`
	resp := httptest.NewRecorder()
	req := newRequest(http.MethodPut, "/api/v1/orders/"+orderID.String(), body, uuid.New(), map[string]string{"orderId": orderID.String()})
	Update(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
}

func TestCancelPassesActor(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()
	svc := &stubOrdersService{
		cancel: func(ctx context.Context, input internalorders.CancelOrderInput) (*models.Order, error) {
			if input.OrderID != orderID || input.UserID != userID {
				t.Fatalf("unexpected input %+v", input)
			}
			return &models.Order{ID: orderID, Status: enums.OrderStatusCancelled}, nil
		},
	}

	resp := httptest.NewRecorder()
	req := newRequest(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/cancel", "", userID, map[string]string{"orderId": orderID.String()})
	Cancel(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope orderEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Status != enums.OrderStatusCancelled {
		t.Fatalf("unexpected status %s", envelope.Data.Status)
	}
}

func TestPayParsesTender(t *testing.T) {
	orderID := uuid.New()
	svc := &stubOrdersService{
		pay: func(ctx context.Context, input internalorders.PayOrderInput) (*models.Order, error) {
			payment := input.Payment
			if payment.Currency != enums.CurrencyRiel {
				t.Fatalf("unexpected currency %s", payment.Currency)
			}
			if len(payment.PaymentMethods) != 2 || payment.PaymentMethods[0] != enums.PaymentMethodCash || payment.PaymentMethods[1] != enums.PaymentMethodQR {
				t.Fatalf("unexpected methods %v", payment.PaymentMethods)
			}
			if !payment.RielAmount.Equal(decimal.NewFromInt(41000)) {
				t.Fatalf("unexpected riel amount %s", payment.RielAmount)
			}
			if !payment.MixedPayments || len(payment.MixedBreakdown) != 2 {
				t.Fatalf("mixed breakdown not forwarded")
			}
			method := enums.PaymentMethodCash
			return &models.Order{ID: orderID, Status: enums.OrderStatusCompleted, PaymentMethod: &method}, nil
		},
	}

	body := `{"currency":"riel","payment_methods":["cash","QR"],"riel_amount":41000,"mixed_payments":true,"mixed_breakdown":[{"method":"CASH","amount":"5.00"},{"method":"QR","amount":"5.00"}]}`
	resp := httptest.NewRecorder()
	req := newRequest(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/pay", body, uuid.New(), map[string]string{"orderId": orderID.String()})
	Pay(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope orderEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Status != enums.OrderStatusCompleted || envelope.Data.PaymentMethod == nil || *envelope.Data.PaymentMethod != enums.PaymentMethodCash {
		t.Fatalf("unexpected paid order %+v", envelope.Data)
	}
}

func TestPayRejectsUnknownMethod(t *testing.T) {
	orderID := uuid.New()
	body := `{"payment_method":"CHEQUE"}`
	resp := httptest.NewRecorder()
	req := newRequest(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/pay", body, uuid.New(), map[string]string{"orderId": orderID.String()})
	Pay(&stubOrdersService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	envelope := decodeError(t, resp)
	if envelope.Error.Message != "unknown payment method" {
		t.Fatalf("unexpected message %q", envelope.Error.Message)
	}
	if envelope.Error.Details["payment_method"] != "CHEQUE" {
		t.Fatalf("expected offending method in details, got %v", envelope.Error.Details)
	}
}

func TestPayRejectsUnknownCurrency(t *testing.T) {
	orderID := uuid.New()
	resp := httptest.NewRecorder()
	req := newRequest(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/pay", `{"currency":"EUR","payment_method":"CASH"}`, uuid.New(), map[string]string{"orderId": orderID.String()})
	Pay(&stubOrdersService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestReassignTableForwardsNewTable(t *testing.T) {
	orderID := uuid.New()
	tableID := uuid.New()
	svc := &stubOrdersService{
		reassign: func(ctx context.Context, input internalorders.ReassignTableInput) (*models.Order, error) {
			if input.OrderID != orderID || input.NewTableID != tableID {
				t.Fatalf("unexpected input %+v", input)
			}
			return &models.Order{ID: orderID, TableID: tableID, Status: enums.OrderStatusPending}, nil
		},
	}

	resp := httptest.NewRecorder()
	req := newRequest(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/table", `{"table_id":"`+tableID.String()+`"}`, uuid.New(), map[string]string{"orderId": orderID.String()})
	ReassignTable(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}
