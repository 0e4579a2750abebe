package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/VWin4Ever/restaurant-pos-system-sub000/internal/notifications"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/internal/payments"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/internal/products"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/db"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/db/models"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/enums"
	pkgerrors "github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/errors"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/logger"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/metrics"
)

const (
	opCreate   = "create"
	opUpdate   = "update"
	opCancel   = "cancel"
	opPay      = "pay"
	opReassign = "reassign_table"
)

// Service drives the order lifecycle. Every mutating call runs in one
// transaction and notifies listeners only after it commits.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	UpdateOrder(ctx context.Context, input UpdateOrderInput) (*models.Order, error)
	CancelOrder(ctx context.Context, input CancelOrderInput) (*models.Order, error)
	PayOrder(ctx context.Context, input PayOrderInput) (*models.Order, error)
	ReassignTable(ctx context.Context, input ReassignTableInput) (*models.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

// ServiceParams groups the collaborators of the order service.
type ServiceParams struct {
	Repo        Repository
	Tx          txRunner
	Catalog     products.Catalog
	Ledger      StockLedger
	Tracker     TableTracker
	Snapshotter Snapshotter
	Notifier    notifications.Notifier
	Metrics     *metrics.OrderMetrics
	Logger      *logger.Logger
}

type service struct {
	repo      Repository
	tx        txRunner
	catalog   products.Catalog
	ledger    StockLedger
	tracker   TableTracker
	snapshots Snapshotter
	notifier  notifications.Notifier
	metrics   *metrics.OrderMetrics
	logg      *logger.Logger
	now       func() time.Time
}

// NewService builds the order service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("product catalog required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("stock ledger required")
	}
	if params.Tracker == nil {
		return nil, fmt.Errorf("table tracker required")
	}
	if params.Snapshotter == nil {
		return nil, fmt.Errorf("snapshotter required")
	}
	notifier := params.Notifier
	if notifier == nil {
		notifier = notifications.Nop{}
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:      params.Repo,
		tx:        params.Tx,
		catalog:   params.Catalog,
		ledger:    params.Ledger,
		tracker:   params.Tracker,
		snapshots: params.Snapshotter,
		notifier:  notifier,
		metrics:   params.Metrics,
		logg:      logg,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

// lowStock records a reservation that left a product at or below its minimum.
type lowStock struct {
	ProductID uuid.UUID
	Quantity  int
	MinStock  int
}

func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (order *models.Order, err error) {
	defer s.track(opCreate, time.Now(), &err)

	if input.TableID == uuid.Nil {
		return nil, pkgerrors.Validation("table id required")
	}
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.Validation("user id required")
	}
	if err := validateItems(input.Items); err != nil {
		return nil, err
	}
	if err := validateDiscount(input.Discount); err != nil {
		return nil, err
	}

	snapshot, err := s.snapshots.Freeze(ctx)
	if err != nil {
		return nil, err
	}

	var (
		table *models.Table
		lows  []lowStock
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		locked, err := s.tracker.Lock(ctx, tx, input.TableID)
		if err != nil {
			return err
		}
		table = locked[input.TableID]
		if err := s.tracker.EnsureAssignable(ctx, tx, table, uuid.Nil); err != nil {
			return err
		}

		catalog, err := s.catalog.FindProducts(ctx, tx, productIDs(input.Items))
		if err != nil {
			return err
		}
		if err := ensureOrderable(input.Items, catalog); err != nil {
			return err
		}

		requested := trackedQuantities(input.Items, inputLine, catalog)
		stocks, err := s.ledger.LockForProducts(ctx, tx, keys(requested))
		if err != nil {
			return err
		}
		if err := checkAvailability(requested, nil, stocks, catalog); err != nil {
			return err
		}

		created := &models.Order{
			ID:               uuid.New(),
			OrderNumber:      newOrderNumber(s.now()),
			TableID:          table.ID,
			UserID:           input.UserID,
			Status:           enums.OrderStatusPending,
			Currency:         enums.CurrencyUSD,
			BusinessSnapshot: &snapshot,
			CustomerNote:     input.CustomerNote,
		}
		items, subtotal := buildItems(created.ID, input.Items, catalog)
		sums, err := computeTotals(subtotal, input.Discount, snapshot)
		if err != nil {
			return err
		}
		created.Subtotal, created.Tax, created.Discount, created.Total = sums.Subtotal, sums.Tax, sums.Discount, sums.Total

		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, created); err != nil {
			if db.IsUniqueViolation(err, "order_number") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order number collision")
			}
			return pkgerrors.Internal(err, "create order")
		}
		if err := repo.CreateItems(ctx, items); err != nil {
			return pkgerrors.Internal(err, "create order items")
		}

		note := "order " + created.OrderNumber
		for _, item := range items {
			if !catalog[item.ProductID].NeedsStockTracking {
				continue
			}
			res, err := s.ledger.Reserve(ctx, tx, item.ProductID, item.Quantity, input.UserID, note)
			if err != nil {
				return err
			}
			if res.Low {
				lows = append(lows, lowStock{ProductID: item.ProductID, Quantity: res.Stock.Quantity, MinStock: res.Stock.MinStock})
			}
		}

		if err := s.tracker.Occupy(ctx, tx, table); err != nil {
			return err
		}

		order, err = s.loadDetail(ctx, repo, created.ID)
		return err
	})
	if err != nil {
		return nil, pkgerrors.EnsureTyped(err, "create order")
	}

	ctx = s.orderContext(ctx, order, input.UserID)
	s.logg.Info(ctx, "order.created")
	s.reportLowStock(ctx, lows)
	s.notifier.NotifyOrderChanged(ctx, notifications.NewOrderEvent(enums.OrderEventCreated, order, input.UserID))
	s.notifier.NotifyTableChanged(ctx, *table)
	return order, nil
}

func (s *service) UpdateOrder(ctx context.Context, input UpdateOrderInput) (order *models.Order, err error) {
	defer s.track(opUpdate, time.Now(), &err)

	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.Validation("order id required")
	}
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.Validation("user id required")
	}
	if err := validateItems(input.Items); err != nil {
		return nil, err
	}
	if err := validateDiscount(input.Discount); err != nil {
		return nil, err
	}

	var (
		lows       []lowStock
		backfilled bool
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := s.lockOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if !current.Status.CanUpdate() {
			return statusConflict("only pending orders can be updated", current)
		}
		oldItems, err := repo.FindItems(ctx, current.ID)
		if err != nil {
			return pkgerrors.Internal(err, "load order items")
		}

		snapshot, created, err := s.snapshots.Resolve(ctx, current.BusinessSnapshot)
		if err != nil {
			return err
		}
		backfilled = created

		ids := productIDs(input.Items)
		for _, item := range oldItems {
			ids = append(ids, item.ProductID)
		}
		catalog, err := s.catalog.FindProducts(ctx, tx, ids)
		if err != nil {
			return err
		}
		if err := ensureOrderable(input.Items, catalog); err != nil {
			return err
		}

		held := trackedQuantities(oldItems, storedLine, catalog)
		requested := trackedQuantities(input.Items, inputLine, catalog)
		involved := make(map[uuid.UUID]int, len(held)+len(requested))
		for id := range held {
			involved[id] = 0
		}
		for id := range requested {
			involved[id] = 0
		}
		stocks, err := s.ledger.LockForProducts(ctx, tx, keys(involved))
		if err != nil {
			return err
		}
		if err := checkAvailability(requested, held, stocks, catalog); err != nil {
			return err
		}

		note := fmt.Sprintf("order %s updated", current.OrderNumber)
		for _, item := range oldItems {
			if _, ok := stocks[item.ProductID]; !ok || !catalog[item.ProductID].NeedsStockTracking {
				continue
			}
			if _, err := s.ledger.Release(ctx, tx, item.ProductID, item.Quantity, input.UserID, note); err != nil {
				return err
			}
		}
		if err := repo.DeleteItems(ctx, current.ID); err != nil {
			return pkgerrors.Internal(err, "delete order items")
		}

		items, subtotal := buildItems(current.ID, input.Items, catalog)
		sums, err := computeTotals(subtotal, input.Discount, snapshot)
		if err != nil {
			return err
		}
		if err := repo.CreateItems(ctx, items); err != nil {
			return pkgerrors.Internal(err, "create order items")
		}
		for _, item := range items {
			if !catalog[item.ProductID].NeedsStockTracking {
				continue
			}
			res, err := s.ledger.Reserve(ctx, tx, item.ProductID, item.Quantity, input.UserID, note)
			if err != nil {
				return err
			}
			if res.Low {
				lows = append(lows, lowStock{ProductID: item.ProductID, Quantity: res.Stock.Quantity, MinStock: res.Stock.MinStock})
			}
		}

		current.Subtotal, current.Tax, current.Discount, current.Total = sums.Subtotal, sums.Tax, sums.Discount, sums.Total
		current.CustomerNote = input.CustomerNote
		columns := []string{"subtotal", "tax", "discount", "total", "customer_note"}
		if created {
			current.BusinessSnapshot = &snapshot
			columns = append(columns, "business_snapshot")
		}
		if err := repo.Save(ctx, current, columns...); err != nil {
			return pkgerrors.Internal(err, "update order")
		}

		order, err = s.loadDetail(ctx, repo, current.ID)
		return err
	})
	if err != nil {
		return nil, pkgerrors.EnsureTyped(err, "update order")
	}

	ctx = s.orderContext(ctx, order, input.UserID)
	if backfilled {
		s.logg.Warn(ctx, "order.snapshot_backfilled")
	}
	s.logg.Info(ctx, "order.updated")
	s.reportLowStock(ctx, lows)
	s.notifier.NotifyOrderChanged(ctx, notifications.NewOrderEvent(enums.OrderEventUpdated, order, input.UserID))
	return order, nil
}

func (s *service) CancelOrder(ctx context.Context, input CancelOrderInput) (order *models.Order, err error) {
	defer s.track(opCancel, time.Now(), &err)

	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.Validation("order id required")
	}
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.Validation("user id required")
	}

	var table *models.Table
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := s.lockOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if !current.Status.CanCancel() {
			return statusConflict("only pending orders can be cancelled", current)
		}
		locked, err := s.tracker.Lock(ctx, tx, current.TableID)
		if err != nil {
			return err
		}
		table = locked[current.TableID]

		items, err := repo.FindItems(ctx, current.ID)
		if err != nil {
			return pkgerrors.Internal(err, "load order items")
		}
		catalog, err := s.catalog.FindProducts(ctx, tx, productIDsOf(items))
		if err != nil {
			return err
		}
		held := trackedQuantities(items, storedLine, catalog)
		stocks, err := s.ledger.LockForProducts(ctx, tx, keys(held))
		if err != nil {
			return err
		}

		cancelledAt := s.now()
		current.Status = enums.OrderStatusCancelled
		current.CancelledAt = &cancelledAt
		if err := repo.Save(ctx, current, "status", "cancelled_at"); err != nil {
			return pkgerrors.Internal(err, "cancel order")
		}

		note := fmt.Sprintf("order %s cancelled", current.OrderNumber)
		for _, item := range items {
			if _, ok := stocks[item.ProductID]; !ok || !catalog[item.ProductID].NeedsStockTracking {
				continue
			}
			if _, err := s.ledger.Release(ctx, tx, item.ProductID, item.Quantity, input.UserID, note); err != nil {
				return err
			}
		}

		if err := s.tracker.Vacate(ctx, tx, table, current.ID); err != nil {
			return err
		}

		order, err = s.loadDetail(ctx, repo, current.ID)
		return err
	})
	if err != nil {
		return nil, pkgerrors.EnsureTyped(err, "cancel order")
	}

	ctx = s.orderContext(ctx, order, input.UserID)
	s.logg.Info(ctx, "order.cancelled")
	s.notifier.NotifyOrderChanged(ctx, notifications.NewOrderEvent(enums.OrderEventCancelled, order, input.UserID))
	s.notifier.NotifyTableChanged(ctx, *table)
	return order, nil
}

func (s *service) PayOrder(ctx context.Context, input PayOrderInput) (order *models.Order, err error) {
	defer s.track(opPay, time.Now(), &err)

	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.Validation("order id required")
	}
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.Validation("user id required")
	}
	if input.Payment.Currency == "" {
		input.Payment.Currency = enums.CurrencyUSD
	}
	if err := payments.Validate(input.Payment); err != nil {
		return nil, err
	}

	var (
		table *models.Table
		flags payments.Flags
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := s.lockOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if !current.Status.CanPay() {
			return statusConflict("only pending orders can be paid", current)
		}
		locked, err := s.tracker.Lock(ctx, tx, current.TableID)
		if err != nil {
			return err
		}
		table = locked[current.TableID]

		settlement, err := payments.Settle(input.Payment, current.Total)
		if err != nil {
			return err
		}
		flags = settlement.Flags

		paidAt := s.now()
		method := settlement.PaymentMethod
		current.Status = enums.OrderStatusCompleted
		current.Currency = settlement.Currency
		current.PaymentMethod = &method
		current.PaidUSD = settlement.PaidUSD
		current.PaidRiel = settlement.PaidRiel
		current.SplitBill = settlement.SplitBill
		current.SplitBreakdown = settlement.SplitBreakdown
		current.MixedPayments = settlement.MixedPayments
		current.MixedBreakdown = settlement.MixedBreakdown
		current.PaidAt = &paidAt
		err = repo.Save(ctx, current,
			"status", "currency", "payment_method", "paid_usd", "paid_riel",
			"split_bill", "split_breakdown", "mixed_payments", "mixed_breakdown", "paid_at",
		)
		if err != nil {
			return pkgerrors.Internal(err, "pay order")
		}

		if err := s.tracker.Vacate(ctx, tx, table, current.ID); err != nil {
			return err
		}

		order, err = s.loadDetail(ctx, repo, current.ID)
		return err
	})
	if err != nil {
		return nil, pkgerrors.EnsureTyped(err, "pay order")
	}

	ctx = s.orderContext(ctx, order, input.UserID)
	ctx = s.logg.WithFields(ctx, map[string]any{
		"currency":             string(order.Currency),
		"nested_payments":      flags.NestedPayments,
		"mixed_currency":       flags.MixedCurrency,
		"split_mixed_currency": flags.SplitMixedCurrency,
	})
	s.logg.Info(ctx, "order.paid")
	s.notifier.NotifyOrderChanged(ctx, notifications.NewOrderEvent(enums.OrderEventPaid, order, input.UserID))
	s.notifier.NotifyTableChanged(ctx, *table)
	return order, nil
}

func (s *service) ReassignTable(ctx context.Context, input ReassignTableInput) (order *models.Order, err error) {
	defer s.track(opReassign, time.Now(), &err)

	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.Validation("order id required")
	}
	if input.NewTableID == uuid.Nil {
		return nil, pkgerrors.Validation("new table id required")
	}
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.Validation("user id required")
	}

	var (
		oldTable, newTable *models.Table
		previousTableID    uuid.UUID
		moved              bool
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := s.lockOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if !current.Status.CanReassign() {
			return statusConflict("only pending orders can change table", current)
		}
		previousTableID = current.TableID
		if current.TableID != input.NewTableID {
			locked, err := s.tracker.Lock(ctx, tx, current.TableID, input.NewTableID)
			if err != nil {
				return err
			}
			oldTable, newTable = locked[current.TableID], locked[input.NewTableID]
			if err := s.tracker.EnsureAssignable(ctx, tx, newTable, current.ID); err != nil {
				return err
			}

			current.TableID = newTable.ID
			if err := repo.Save(ctx, current, "table_id"); err != nil {
				return pkgerrors.Internal(err, "reassign order table")
			}
			if err := s.tracker.Vacate(ctx, tx, oldTable, current.ID); err != nil {
				return err
			}
			if err := s.tracker.Occupy(ctx, tx, newTable); err != nil {
				return err
			}
			moved = true
		}

		order, err = s.loadDetail(ctx, repo, current.ID)
		return err
	})
	if err != nil {
		return nil, pkgerrors.EnsureTyped(err, "reassign order table")
	}
	if !moved {
		return order, nil
	}

	ctx = s.orderContext(ctx, order, input.UserID)
	ctx = s.logg.WithField(ctx, "previous_table_id", previousTableID.String())
	s.logg.Info(ctx, "order.table_changed")
	event := notifications.NewOrderEvent(enums.OrderEventTableChanged, order, input.UserID)
	event.PreviousTableID = &previousTableID
	s.notifier.NotifyOrderChanged(ctx, event)
	s.notifier.NotifyTableChanged(ctx, *oldTable)
	s.notifier.NotifyTableChanged(ctx, *newTable)
	return order, nil
}

func (s *service) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.Validation("order id required")
	}
	return s.loadDetail(ctx, s.repo, id)
}

func (s *service) lockOrder(ctx context.Context, repo Repository, id uuid.UUID) (*models.Order, error) {
	order, err := repo.FindForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("order")
		}
		return nil, pkgerrors.Internal(err, "load order")
	}
	return order, nil
}

func (s *service) loadDetail(ctx context.Context, repo Repository, id uuid.UUID) (*models.Order, error) {
	order, err := repo.FindDetail(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("order")
		}
		return nil, pkgerrors.Internal(err, "load order")
	}
	return order, nil
}

func (s *service) orderContext(ctx context.Context, order *models.Order, userID uuid.UUID) context.Context {
	ctx = s.logg.WithOrderID(ctx, order.ID.String())
	ctx = s.logg.WithUserID(ctx, userID.String())
	return s.logg.WithFields(ctx, map[string]any{
		"order_number": order.OrderNumber,
		"table_id":     order.TableID.String(),
		"status":       string(order.Status),
		"total":        order.Total.StringFixed(2),
	})
}

func (s *service) reportLowStock(ctx context.Context, lows []lowStock) {
	for _, low := range lows {
		s.metrics.IncStockLow()
		lowCtx := s.logg.WithFields(ctx, map[string]any{
			"product_id": low.ProductID.String(),
			"quantity":   low.Quantity,
			"min_stock":  low.MinStock,
		})
		s.logg.Warn(lowCtx, "stock.low")
	}
}

func (s *service) track(op string, start time.Time, errp *error) {
	s.metrics.ObserveDuration(op, time.Since(start))
	if *errp != nil {
		code := pkgerrors.CodeInternal
		if typed := pkgerrors.As(*errp); typed != nil {
			code = typed.Code()
		}
		s.metrics.IncFailure(op, string(code))
		return
	}
	s.metrics.IncSuccess(op)
}

func statusConflict(message string, order *models.Order) error {
	return pkgerrors.Conflict(message).WithDetails(map[string]string{
		"order_id": order.ID.String(),
		"status":   string(order.Status),
	})
}

func productIDsOf(items []models.OrderItem) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		out = append(out, item.ProductID)
	}
	return out
}
