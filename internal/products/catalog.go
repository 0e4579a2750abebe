package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/db/models"
	pkgerrors "github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/errors"
)

// Catalog gives the order engine read access to menu products.
type Catalog interface {
	FindProducts(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

// Repository reads products from the database. It never writes them.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a product repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx scopes the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindProducts loads the requested products keyed by id. Unknown ids are
// absent from the result; the caller decides whether that is an error.
func (r *Repository) FindProducts(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	out := make(map[uuid.UUID]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Product
	if err := r.WithTx(tx).db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, pkgerrors.Internal(err, "load products")
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}
