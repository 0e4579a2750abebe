package orders

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/db/models"
	pkgerrors "github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/errors"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/types"
)

func TestComputeTotals(t *testing.T) {
	snapshot := types.BusinessSnapshot{VATRate: decimal.NewFromInt(10)}

	got, err := computeTotals(decimal.NewFromInt(20), decimal.Zero, snapshot)
	require.NoError(t, err)
	assert.True(t, got.Tax.Equal(decimal.NewFromInt(2)))
	assert.True(t, got.Total.Equal(decimal.NewFromInt(22)))

	got, err = computeTotals(decimal.RequireFromString("10.05"), decimal.RequireFromString("0.333"), snapshot)
	require.NoError(t, err)
	assert.Equal(t, "1.01", got.Tax.StringFixed(2))
	assert.Equal(t, "0.33", got.Discount.StringFixed(2))
	assert.True(t, got.Total.Equal(got.Subtotal.Add(got.Tax).Sub(got.Discount)))

	_, err = computeTotals(decimal.NewFromInt(1), decimal.NewFromInt(5), snapshot)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestCheckAvailabilityCountsHeldStock(t *testing.T) {
	productID := uuid.New()
	catalog := map[uuid.UUID]models.Product{productID: {ID: productID, Name: "Noodles", NeedsStockTracking: true}}
	stocks := map[uuid.UUID]models.Stock{productID: {ProductID: productID, Quantity: 1}}
	requested := map[uuid.UUID]int{productID: 5}

	err := checkAvailability(requested, nil, stocks, catalog)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	assert.NoError(t, checkAvailability(requested, map[uuid.UUID]int{productID: 4}, stocks, catalog))

	// a tracked product without a stock row has nothing to give
	err = checkAvailability(requested, nil, map[uuid.UUID]models.Stock{}, catalog)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}

func TestTrackedQuantitiesSkipsUntracked(t *testing.T) {
	tracked, untracked := uuid.New(), uuid.New()
	catalog := map[uuid.UUID]models.Product{
		tracked:   {ID: tracked, NeedsStockTracking: true},
		untracked: {ID: untracked},
	}
	items := []ItemInput{{ProductID: tracked, Quantity: 2}, {ProductID: untracked, Quantity: 9}, {ProductID: tracked, Quantity: 3}}

	got := trackedQuantities(items, inputLine, catalog)
	assert.Equal(t, map[uuid.UUID]int{tracked: 5}, got)
}

func TestNewOrderNumber(t *testing.T) {
	when := time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC)
	number := newOrderNumber(when)
	assert.Regexp(t, `^ORD-20260314-[0-9A-F]{6}$`, number)
	assert.NotEqual(t, number, newOrderNumber(when))
}
