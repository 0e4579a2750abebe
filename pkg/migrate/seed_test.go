package migrate_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/db/dbtest"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/db/models"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/enums"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/migrate"
)

func seedOptions(tables int) migrate.SeedOptions {
	return migrate.SeedOptions{
		Tables:       tables,
		Capacity:     4,
		BusinessName: "Corner Bistro",
		VATRate:      decimal.NewFromInt(10),
		ExchangeRate: decimal.NewFromInt(4100),
	}
}

func TestSeedIsRepeatable(t *testing.T) {
	conn := dbtest.Open(t)
	ctx := context.Background()

	first, err := migrate.Seed(ctx, conn, seedOptions(5))
	require.NoError(t, err)
	assert.EqualValues(t, 5, first.TablesCreated)
	assert.True(t, first.SettingsCreated)

	second, err := migrate.Seed(ctx, conn, seedOptions(7))
	require.NoError(t, err)
	assert.EqualValues(t, 2, second.TablesCreated)
	assert.False(t, second.SettingsCreated)

	var tables []models.Table
	require.NoError(t, conn.Order("number ASC").Find(&tables).Error)
	require.Len(t, tables, 7)
	for i, table := range tables {
		assert.Equal(t, i+1, table.Number)
		assert.Equal(t, enums.TableStatusAvailable, table.Status)
	}

	var settings int64
	require.NoError(t, conn.Model(&models.BusinessSetting{}).Count(&settings).Error)
	assert.EqualValues(t, 1, settings)
}

func TestSeedKeepsExistingTableState(t *testing.T) {
	conn := dbtest.Open(t)
	occupied := dbtest.SeedTable(t, conn, 2, enums.TableStatusOccupied)
	dbtest.SeedSettings(t, conn, "7.5")

	result, err := migrate.Seed(context.Background(), conn, seedOptions(3))
	require.NoError(t, err)
	assert.EqualValues(t, 2, result.TablesCreated)
	assert.False(t, result.SettingsCreated)

	reloaded := dbtest.ReloadTable(t, conn, occupied.ID)
	assert.Equal(t, enums.TableStatusOccupied, reloaded.Status)
}

func TestSeedRejectsBadOptions(t *testing.T) {
	conn := dbtest.Open(t)

	_, err := migrate.Seed(context.Background(), conn, migrate.SeedOptions{Tables: -1})
	require.Error(t, err)

	opts := seedOptions(1)
	opts.VATRate = decimal.NewFromInt(-1)
	_, err = migrate.Seed(context.Background(), conn, opts)
	require.Error(t, err)
}
