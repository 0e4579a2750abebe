package tables

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/db"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/db/models"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/enums"
)

// Repository persists table rows and answers occupancy queries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID, lock bool) (*models.Table, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID, lock bool) ([]models.Table, error)
	List(ctx context.Context, status *enums.TableStatus) ([]models.Table, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.TableStatus) error
	CountPendingOrders(ctx context.Context, tableID, exceptOrderID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a tables repository bound to the provided DB.
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

func (r *repository) FindByID(ctx context.Context, id uuid.UUID, lock bool) (*models.Table, error) {
	var table models.Table
	if err := r.query(ctx, lock).Where("id = ?", id).First(&table).Error; err != nil {
		return nil, err
	}
	return &table, nil
}

func (r *repository) FindByIDs(ctx context.Context, ids []uuid.UUID, lock bool) ([]models.Table, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var tables []models.Table
	err := r.query(ctx, lock).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&tables).Error
	if err != nil {
		return nil, err
	}
	return tables, nil
}

func (r *repository) List(ctx context.Context, status *enums.TableStatus) ([]models.Table, error) {
	var tables []models.Table
	q := r.db.WithContext(ctx).Order("number ASC")
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	if err := q.Find(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.TableStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Table{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *repository) CountPendingOrders(ctx context.Context, tableID, exceptOrderID uuid.UUID) (int64, error) {
	var count int64
	q := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("table_id = ? AND status = ?", tableID, enums.OrderStatusPending)
	if exceptOrderID != uuid.Nil {
		q = q.Where("id <> ?", exceptOrderID)
	}
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
