package tables

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/VWin4Ever/restaurant-pos-system-sub000/internal/notifications"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/db/models"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/enums"
	pkgerrors "github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/errors"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// SetStatusInput carries a manual table status change.
type SetStatusInput struct {
	TableID uuid.UUID
	Status  enums.TableStatus
	UserID  uuid.UUID
}

// Service exposes table management outside the order lifecycle.
type Service interface {
	List(ctx context.Context, status *enums.TableStatus) ([]models.Table, error)
	SetStatus(ctx context.Context, input SetStatusInput) (*models.Table, error)
}

type service struct {
	repo     Repository
	tracker  *Tracker
	tx       txRunner
	notifier notifications.Notifier
	logg     *logger.Logger
}

// NewService builds the table service.
func NewService(repo Repository, tracker *Tracker, tx txRunner, notifier notifications.Notifier, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("tables repository required")
	}
	if tracker == nil {
		return nil, fmt.Errorf("table tracker required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if notifier == nil {
		notifier = notifications.Nop{}
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, tracker: tracker, tx: tx, notifier: notifier, logg: logg}, nil
}

func (s *service) List(ctx context.Context, status *enums.TableStatus) ([]models.Table, error) {
	if status != nil && !status.IsValid() {
		return nil, pkgerrors.Validation("invalid table status")
	}
	tables, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, pkgerrors.Internal(err, "list tables")
	}
	return tables, nil
}

func (s *service) SetStatus(ctx context.Context, input SetStatusInput) (*models.Table, error) {
	if input.TableID == uuid.Nil {
		return nil, pkgerrors.Validation("table id required")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.Validation("invalid table status")
	}

	var (
		table   *models.Table
		changed bool
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		locked, err := loadTable(s.repo.WithTx(tx).FindByID(ctx, input.TableID, true))
		if err != nil {
			return err
		}
		previous := locked.Status
		if err := s.tracker.SetStatus(ctx, tx, locked, input.Status); err != nil {
			return err
		}
		table = locked
		changed = previous != locked.Status
		return nil
	})
	if err != nil {
		return nil, pkgerrors.EnsureTyped(err, "set table status")
	}

	if changed {
		ctx = s.logg.WithTableID(ctx, table.ID.String())
		ctx = s.logg.WithFields(ctx, map[string]any{
			"status":  string(table.Status),
			"user_id": input.UserID.String(),
		})
		s.logg.Info(ctx, "table.status_changed")
		s.notifier.NotifyTableChanged(ctx, *table)
	}
	return table, nil
}
