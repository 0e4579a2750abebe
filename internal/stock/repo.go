package stock

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/db"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/db/models"
)

// Repository persists stock rows and their audit trail.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID, lock bool) (*models.Stock, error)
	FindByProductID(ctx context.Context, productID uuid.UUID, lock bool) (*models.Stock, error)
	FindByProductIDs(ctx context.Context, productIDs []uuid.UUID, lock bool) ([]models.Stock, error)
	UpdateQuantity(ctx context.Context, stockID uuid.UUID, quantity int) error
	AppendLog(ctx context.Context, entry *models.StockLog) error
	ListLogs(ctx context.Context, stockID uuid.UUID, limit int) ([]models.StockLog, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a stock repository bound to the provided DB.
func NewRepository(conn *gorm.DB) Repository {
	return &repository{db: conn}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) query(ctx context.Context, lock bool) *gorm.DB {
	q := r.db.WithContext(ctx)
	if lock {
		q = db.ForUpdate(q)
	}
	return q
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID, lock bool) (*models.Stock, error) {
	var stock models.Stock
	if err := r.query(ctx, lock).Where("id = ?", id).First(&stock).Error; err != nil {
		return nil, err
	}
	return &stock, nil
}

func (r *repository) FindByProductID(ctx context.Context, productID uuid.UUID, lock bool) (*models.Stock, error) {
	var stock models.Stock
	if err := r.query(ctx, lock).Where("product_id = ?", productID).First(&stock).Error; err != nil {
		return nil, err
	}
	return &stock, nil
}

func (r *repository) FindByProductIDs(ctx context.Context, productIDs []uuid.UUID, lock bool) ([]models.Stock, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	var stocks []models.Stock
	err := r.query(ctx, lock).
		Where("product_id IN ?", productIDs).
		Order("product_id ASC").
		Find(&stocks).Error
	if err != nil {
		return nil, err
	}
	return stocks, nil
}

func (r *repository) UpdateQuantity(ctx context.Context, stockID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.Stock{}).
		Where("id = ?", stockID).
		Update("quantity", quantity).Error
}

func (r *repository) AppendLog(ctx context.Context, entry *models.StockLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListLogs(ctx context.Context, stockID uuid.UUID, limit int) ([]models.StockLog, error) {
	var logs []models.StockLog
	q := r.db.WithContext(ctx).
		Where("stock_id = ?", stockID).
		Order("created_at DESC").
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
