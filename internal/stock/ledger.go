package stock

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/db/models"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/enums"
	pkgerrors "github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/errors"
)

// Ledger is the only writer of stocks.quantity. Every mutation appends exactly
// one stock_logs row in the same transaction. Sufficiency is the caller's
// concern; the ledger floors at zero instead of failing.
type Ledger struct {
	repo Repository
}

// ReserveResult reports the stock row after a reservation.
type ReserveResult struct {
	Stock models.Stock
	// Low is set when the remaining quantity is at or below MinStock.
	Low bool
}

// NewLedger builds a ledger over the provided repository.
func NewLedger(repo Repository) *Ledger {
	return &Ledger{repo: repo}
}

// Reserve decrements the product's stock by qty, flooring at zero, and logs a
// REMOVE of magnitude qty.
func (l *Ledger) Reserve(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int, userID uuid.UUID, note string) (ReserveResult, error) {
	if qty <= 0 {
		return ReserveResult{}, pkgerrors.Validation("reserve quantity must be positive")
	}
	repo := l.repo.WithTx(tx)
	stock, err := loadStock(repo.FindByProductID(ctx, productID, true))
	if err != nil {
		return ReserveResult{}, err
	}

	remaining := stock.Quantity - qty
	if remaining < 0 {
		remaining = 0
	}
	if err := l.write(ctx, repo, stock, remaining, enums.StockLogTypeRemove, qty, userID, note); err != nil {
		return ReserveResult{}, err
	}
	return ReserveResult{Stock: *stock, Low: stock.Quantity <= stock.MinStock}, nil
}

// Release returns qty units to the product's stock and logs an ADD.
func (l *Ledger) Release(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int, userID uuid.UUID, note string) (*models.Stock, error) {
	if qty <= 0 {
		return nil, pkgerrors.Validation("release quantity must be positive")
	}
	repo := l.repo.WithTx(tx)
	stock, err := loadStock(repo.FindByProductID(ctx, productID, true))
	if err != nil {
		return nil, err
	}
	if err := l.write(ctx, repo, stock, stock.Quantity+qty, enums.StockLogTypeAdd, qty, userID, note); err != nil {
		return nil, err
	}
	return stock, nil
}

// SetAbsolute overwrites the stock quantity and logs the difference as ADD or
// REMOVE. An unchanged quantity is logged as a zero ADJUST.
func (l *Ledger) SetAbsolute(ctx context.Context, tx *gorm.DB, stockID uuid.UUID, qty int, userID uuid.UUID, note string) (*models.Stock, error) {
	if qty < 0 {
		return nil, pkgerrors.Validation("stock quantity cannot be negative")
	}
	repo := l.repo.WithTx(tx)
	stock, err := loadStock(repo.FindByID(ctx, stockID, true))
	if err != nil {
		return nil, err
	}

	delta := qty - stock.Quantity
	logType := enums.StockLogTypeAdjust
	switch {
	case delta > 0:
		logType = enums.StockLogTypeAdd
	case delta < 0:
		logType = enums.StockLogTypeRemove
		delta = -delta
	}
	if err := l.write(ctx, repo, stock, qty, logType, delta, userID, note); err != nil {
		return nil, err
	}
	return stock, nil
}

// LockForProducts locks the stock rows of the given products in product id
// order and returns them keyed by product id. Products without a stock row are
// absent from the map.
func (l *Ledger) LockForProducts(ctx context.Context, tx *gorm.DB, productIDs []uuid.UUID) (map[uuid.UUID]models.Stock, error) {
	ids := uniqueSorted(productIDs)
	stocks, err := l.repo.WithTx(tx).FindByProductIDs(ctx, ids, true)
	if err != nil {
		return nil, pkgerrors.Internal(err, "lock stock rows")
	}
	out := make(map[uuid.UUID]models.Stock, len(stocks))
	for _, stock := range stocks {
		out[stock.ProductID] = stock
	}
	return out, nil
}

// Available returns the on-hand quantity for a product, or NotFound when the
// product has no stock row.
func (l *Ledger) Available(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (int, error) {
	stock, err := loadStock(l.repo.WithTx(tx).FindByProductID(ctx, productID, false))
	if err != nil {
		return 0, err
	}
	return stock.Quantity, nil
}

func (l *Ledger) write(ctx context.Context, repo Repository, stock *models.Stock, quantity int, logType enums.StockLogType, magnitude int, userID uuid.UUID, note string) error {
	if err := repo.UpdateQuantity(ctx, stock.ID, quantity); err != nil {
		return pkgerrors.Internal(err, "update stock quantity")
	}
	entry := &models.StockLog{
		StockID:  stock.ID,
		UserID:   userID,
		Type:     logType,
		Quantity: magnitude,
		Note:     note,
	}
	if err := repo.AppendLog(ctx, entry); err != nil {
		return pkgerrors.Internal(err, "append stock log")
	}
	stock.Quantity = quantity
	return nil
}

func loadStock(stock *models.Stock, err error) (*models.Stock, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("stock")
		}
		return nil, pkgerrors.Internal(err, "load stock")
	}
	return stock, nil
}

func uniqueSorted(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
