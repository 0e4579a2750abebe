package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/db/dbtest"
)

func TestFindProducts(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)

	burger, _ := dbtest.SeedProduct(t, conn, dbtest.ProductOpts{Name: "Burger", Price: "7.50", Stock: dbtest.Qty(10)})
	tea, _ := dbtest.SeedProduct(t, conn, dbtest.ProductOpts{Name: "Tea", Price: "1.25", Inactive: true})

	var catalog Catalog = repo
	found, err := catalog.FindProducts(context.Background(), nil, []uuid.UUID{burger.ID, tea.ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, found, 2)

	assert.True(t, found[burger.ID].Price.Equal(decimal.RequireFromString("7.5")))
	assert.True(t, found[burger.ID].NeedsStockTracking)
	assert.True(t, found[burger.ID].IsActive)
	assert.False(t, found[tea.ID].IsActive)
	assert.False(t, found[tea.ID].NeedsStockTracking)

	empty, err := repo.FindProducts(context.Background(), conn, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
