package settings

import (
	"context"
	"fmt"
	"time"

	pkgerrors "github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/errors"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/types"
)

// Snapshotter freezes the live tax configuration onto orders.
type Snapshotter struct {
	provider Provider
	now      func() time.Time
}

// NewSnapshotter builds a snapshotter reading from provider.
func NewSnapshotter(provider Provider) (*Snapshotter, error) {
	if provider == nil {
		return nil, fmt.Errorf("settings provider required")
	}
	return &Snapshotter{provider: provider, now: time.Now}, nil
}

// Freeze captures the current settings.
func (s *Snapshotter) Freeze(ctx context.Context) (types.BusinessSnapshot, error) {
	current, err := s.provider.GetBusinessSettings(ctx)
	if err != nil {
		return types.BusinessSnapshot{}, pkgerrors.EnsureTyped(err, "read business settings")
	}
	if current.VATRate.IsNegative() {
		return types.BusinessSnapshot{}, pkgerrors.New(pkgerrors.CodeInternal, "configured vat rate is negative")
	}
	return types.BusinessSnapshot{
		VATRate:      current.VATRate,
		ExchangeRate: current.ExchangeRate,
		BusinessName: current.BusinessName,
		CapturedAt:   s.now().UTC(),
	}, nil
}

// Resolve returns the order's existing snapshot, or freezes a new one for
// orders created before snapshots existed. The second return value reports
// whether the snapshot is new and must be persisted by the caller.
func (s *Snapshotter) Resolve(ctx context.Context, existing *types.BusinessSnapshot) (types.BusinessSnapshot, bool, error) {
	if existing != nil {
		return *existing, false, nil
	}
	snapshot, err := s.Freeze(ctx)
	if err != nil {
		return types.BusinessSnapshot{}, false, err
	}
	return snapshot, true, nil
}
