package stock

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/db/models"
	pkgerrors "github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/errors"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/logger"
)

const (
	defaultLogLimit = 50
	maxLogLimit     = 500
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// AdjustInput carries a manual stock count correction.
type AdjustInput struct {
	StockID  uuid.UUID
	Quantity int
	UserID   uuid.UUID
	Note     string
}

// Service exposes stock operations that stand outside the order lifecycle.
type Service interface {
	Adjust(ctx context.Context, input AdjustInput) (*models.Stock, error)
	ListLogs(ctx context.Context, stockID uuid.UUID, limit int) ([]models.StockLog, error)
}

type service struct {
	repo   Repository
	ledger *Ledger
	tx     txRunner
	logg   *logger.Logger
}

// NewService builds the stock service.
func NewService(repo Repository, ledger *Ledger, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("stock repository required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("stock ledger required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, ledger: ledger, tx: tx, logg: logg}, nil
}

func (s *service) Adjust(ctx context.Context, input AdjustInput) (*models.Stock, error) {
	if input.StockID == uuid.Nil {
		return nil, pkgerrors.Validation("stock id required")
	}
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.Validation("user id required")
	}
	if input.Quantity < 0 {
		return nil, pkgerrors.Validation("quantity cannot be negative")
	}

	note := strings.TrimSpace(input.Note)
	if note == "" {
		note = "manual adjustment"
	}

	var adjusted *models.Stock
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		stock, err := s.ledger.SetAbsolute(ctx, tx, input.StockID, input.Quantity, input.UserID, note)
		if err != nil {
			return err
		}
		adjusted = stock
		return nil
	})
	if err != nil {
		return nil, pkgerrors.EnsureTyped(err, "adjust stock")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"stock_id":   adjusted.ID.String(),
		"product_id": adjusted.ProductID.String(),
		"quantity":   adjusted.Quantity,
		"user_id":    input.UserID.String(),
	})
	s.logg.Info(ctx, "stock.adjusted")
	return adjusted, nil
}

func (s *service) ListLogs(ctx context.Context, stockID uuid.UUID, limit int) ([]models.StockLog, error) {
	if stockID == uuid.Nil {
		return nil, pkgerrors.Validation("stock id required")
	}
	switch {
	case limit <= 0:
		limit = defaultLogLimit
	case limit > maxLogLimit:
		limit = maxLogLimit
	}

	if _, err := loadStock(s.repo.FindByID(ctx, stockID, false)); err != nil {
		return nil, err
	}
	logs, err := s.repo.ListLogs(ctx, stockID, limit)
	if err != nil {
		return nil, pkgerrors.Internal(err, "list stock logs")
	}
	return logs, nil
}
