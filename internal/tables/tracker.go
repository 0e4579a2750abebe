package tables

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

// Tracker owns table status transitions:
//
//	AVAILABLE/RESERVED -> OCCUPIED   (Occupy)
//	OCCUPIED           -> AVAILABLE  (Vacate)
//
// A table never becomes AVAILABLE while a PENDING order references it.
type Tracker struct {
	repo Repository
}

// NewTracker builds a tracker over the provided repository.
func NewTracker(repo Repository) *Tracker {
	return &Tracker{repo: repo}
}

// Lock loads and row-locks the given tables in id order. Unknown ids yield
// NotFound.
func (t *Tracker) Lock(ctx context.Context, tx *gorm.DB, ids ...uuid.UUID) (map[uuid.UUID]*models.Table, error) {
	ids = uniqueSorted(ids)
	rows, err := t.repo.WithTx(tx).FindByIDs(ctx, ids, true)
	if err != nil {
		return nil, pkgerrors.Internal(err, "lock tables")
	}
	out := make(map[uuid.UUID]*models.Table, len(rows))
	for i := range rows {
		out[rows[i].ID] = &rows[i]
	}
	for _, id := range ids {
		if _, ok := out[id]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "table not found").
				WithDetails(map[string]any{"table_id": id.String()})
		}
	}
	return out, nil
}

// EnsureAssignable verifies that a new or moving order may be seated at table.
// exceptOrderID excludes the moving order itself from the occupancy check.
func (t *Tracker) EnsureAssignable(ctx context.Context, tx *gorm.DB, table *models.Table, exceptOrderID uuid.UUID) error {
	details := map[string]any{
		"table_id": table.ID.String(),
		"number":   table.Number,
		"status":   table.Status,
	}
	if table.Status == enums.TableStatusMaintenance {
		return pkgerrors.Conflict("table is under maintenance").WithDetails(details)
	}
	if !table.Status.AcceptsOrder() {
		return pkgerrors.Conflict("table is not available").WithDetails(details)
	}
	pending, err := t.repo.WithTx(tx).CountPendingOrders(ctx, table.ID, exceptOrderID)
	if err != nil {
		return pkgerrors.Internal(err, "count pending orders")
	}
	if pending > 0 {
		return pkgerrors.Conflict("table already has an active order").WithDetails(details)
	}
	return nil
}

// Occupy moves an AVAILABLE or RESERVED table to OCCUPIED.
func (t *Tracker) Occupy(ctx context.Context, tx *gorm.DB, table *models.Table) error {
	if !table.Status.AcceptsOrder() {
		return pkgerrors.Conflict("table is not available").WithDetails(map[string]any{
			"table_id": table.ID.String(),
			"status":   table.Status,
		})
	}
	return t.setStatus(ctx, tx, table, enums.TableStatusOccupied)
}

// Vacate returns a table to AVAILABLE once the order identified by
// leavingOrderID no longer holds it. Any other PENDING order on the table
// blocks the transition.
func (t *Tracker) Vacate(ctx context.Context, tx *gorm.DB, table *models.Table, leavingOrderID uuid.UUID) error {
	if err := t.ensureNoPending(ctx, tx, table, leavingOrderID); err != nil {
		return err
	}
	return t.setStatus(ctx, tx, table, enums.TableStatusAvailable)
}

// SetStatus applies a manual status change. Tables become OCCUPIED only
// through orders, and a table holding a PENDING order cannot be moved off
// OCCUPIED.
func (t *Tracker) SetStatus(ctx context.Context, tx *gorm.DB, table *models.Table, status enums.TableStatus) error {
	if !status.IsValid() {
		return pkgerrors.Validation("invalid table status")
	}
	if table.Status == status {
		return nil
	}
	if status == enums.TableStatusOccupied {
		return pkgerrors.Validation("tables become occupied through orders")
	}
	if err := t.ensureNoPending(ctx, tx, table, uuid.Nil); err != nil {
		return err
	}
	return t.setStatus(ctx, tx, table, status)
}

func (t *Tracker) ensureNoPending(ctx context.Context, tx *gorm.DB, table *models.Table, exceptOrderID uuid.UUID) error {
	pending, err := t.repo.WithTx(tx).CountPendingOrders(ctx, table.ID, exceptOrderID)
	if err != nil {
		return pkgerrors.Internal(err, "count pending orders")
	}
	if pending > 0 {
		return pkgerrors.Conflict("table still has an active order").WithDetails(map[string]any{
			"table_id": table.ID.String(),
			"pending":  pending,
		})
	}
	return nil
}

func (t *Tracker) setStatus(ctx context.Context, tx *gorm.DB, table *models.Table, status enums.TableStatus) error {
	if err := t.repo.WithTx(tx).UpdateStatus(ctx, table.ID, status); err != nil {
		return pkgerrors.Internal(err, "update table status")
	}
	table.Status = status
	return nil
}

func loadTable(table *models.Table, err error) (*models.Table, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("table")
		}
		return nil, pkgerrors.Internal(err, "load table")
	}
	return table, nil
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
