package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/VWin4Ever/restaurant-pos-system-sub000/internal/stock"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/db/models"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/types"
)

// Repository defines persistence operations for orders and their items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error)
	FindDetail(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Create(ctx context.Context, order *models.Order) error
	CreateItems(ctx context.Context, items []models.OrderItem) error
	DeleteItems(ctx context.Context, orderID uuid.UUID) error
	Save(ctx context.Context, order *models.Order, columns ...string) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// StockLedger reserves and releases inventory inside the order transaction.
type StockLedger interface {
	LockForProducts(ctx context.Context, tx *gorm.DB, productIDs []uuid.UUID) (map[uuid.UUID]models.Stock, error)
	Reserve(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int, userID uuid.UUID, note string) (stock.ReserveResult, error)
	Release(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int, userID uuid.UUID, note string) (*models.Stock, error)
}

// TableTracker guards and applies table status transitions.
type TableTracker interface {
	Lock(ctx context.Context, tx *gorm.DB, ids ...uuid.UUID) (map[uuid.UUID]*models.Table, error)
	EnsureAssignable(ctx context.Context, tx *gorm.DB, table *models.Table, exceptOrderID uuid.UUID) error
	Occupy(ctx context.Context, tx *gorm.DB, table *models.Table) error
	Vacate(ctx context.Context, tx *gorm.DB, table *models.Table, leavingOrderID uuid.UUID) error
}

// Snapshotter freezes and resolves business rule snapshots.
type Snapshotter interface {
	Freeze(ctx context.Context) (types.BusinessSnapshot, error)
	Resolve(ctx context.Context, existing *types.BusinessSnapshot) (types.BusinessSnapshot, bool, error)
}
