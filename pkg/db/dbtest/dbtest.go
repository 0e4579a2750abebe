// Package dbtest opens migrated in-memory SQLite databases and seeds the POS
// fixtures package tests share.
package dbtest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/db/models"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/enums"
)

// Open returns a fresh, fully migrated database private to the test.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	// a single connection keeps shared-cache table locks out of the way
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, conn.AutoMigrate(models.All()...))
	return conn
}

// ProductOpts describes a seeded product.
type ProductOpts struct {
	Name     string
	Price    string
	Inactive bool
	// Stock seeds a stock row when non-nil; nil means the product is not
	// stock-tracked.
	Stock    *int
	MinStock int
}

// Qty is a convenience for ProductOpts.Stock.
func Qty(v int) *int {
	return &v
}

// SeedProduct creates a product and, for stock-tracked products, its stock row.
func SeedProduct(t *testing.T, db *gorm.DB, opts ProductOpts) (*models.Product, *models.Stock) {
	t.Helper()

	name := opts.Name
	if name == "" {
		name = "Item " + uuid.NewString()[:8]
	}
	price := opts.Price
	if price == "" {
		price = "5"
	}
	product := &models.Product{
		Name:               name,
		Price:              decimal.RequireFromString(price),
		IsActive:           !opts.Inactive,
		NeedsStockTracking: opts.Stock != nil,
	}
	require.NoError(t, db.Create(product).Error)

	if opts.Stock == nil {
		return product, nil
	}
	stock := &models.Stock{ProductID: product.ID, Quantity: *opts.Stock, MinStock: opts.MinStock}
	require.NoError(t, db.Create(stock).Error)
	return product, stock
}

// SeedTable creates a table with the given number and status.
func SeedTable(t *testing.T, db *gorm.DB, number int, status enums.TableStatus) *models.Table {
	t.Helper()

	table := &models.Table{Number: number, Status: status, Capacity: 4}
	require.NoError(t, db.Create(table).Error)
	return table
}

// SeedSettings writes the live business settings row.
func SeedSettings(t *testing.T, db *gorm.DB, vatRate string) *models.BusinessSetting {
	t.Helper()

	setting := &models.BusinessSetting{
		BusinessName: "Test Bistro",
		VATRate:      decimal.RequireFromString(vatRate),
		ExchangeRate: decimal.NewFromInt(4100),
	}
	require.NoError(t, db.Create(setting).Error)
	return setting
}

// ReloadStock reads the current stock row for a product.
func ReloadStock(t *testing.T, db *gorm.DB, productID uuid.UUID) models.Stock {
	t.Helper()

	var stock models.Stock
	require.NoError(t, db.First(&stock, "product_id = ?", productID).Error)
	return stock
}

// ReloadTable reads the current table row.
func ReloadTable(t *testing.T, db *gorm.DB, tableID uuid.UUID) models.Table {
	t.Helper()

	var table models.Table
	require.NoError(t, db.First(&table, "id = ?", tableID).Error)
	return table
}
