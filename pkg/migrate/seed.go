package migrate

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/db/models"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/enums"
)

// SeedOptions controls the bootstrap data written by Seed.
type SeedOptions struct {
	Tables       int
	Capacity     int
	BusinessName string
	VATRate      decimal.Decimal
	ExchangeRate decimal.Decimal
}

// SeedResult reports how many rows Seed inserted.
type SeedResult struct {
	TablesCreated   int64
	SettingsCreated bool
}

// Seed creates dining tables numbered 1..Tables and a business settings row
// when none exists. Existing tables and settings are left untouched, so the
// command can be re-run safely.
func Seed(ctx context.Context, conn *gorm.DB, opts SeedOptions) (SeedResult, error) {
	var result SeedResult
	if conn == nil {
		return result, fmt.Errorf("db is required")
	}
	if opts.Tables < 0 {
		return result, fmt.Errorf("tables must not be negative")
	}
	if opts.VATRate.IsNegative() {
		return result, fmt.Errorf("vat rate must not be negative")
	}

	err := conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if opts.Tables > 0 {
			rows := make([]models.Table, 0, opts.Tables)
			for n := 1; n <= opts.Tables; n++ {
				rows = append(rows, models.Table{Number: n, Status: enums.TableStatusAvailable, Capacity: opts.Capacity})
			}
			res := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "number"}},
				DoNothing: true,
			}).Create(&rows)
			if res.Error != nil {
				return fmt.Errorf("seed tables: %w", res.Error)
			}
			result.TablesCreated = res.RowsAffected
		}

		var settings int64
		if err := tx.Model(&models.BusinessSetting{}).Count(&settings).Error; err != nil {
			return fmt.Errorf("count business settings: %w", err)
		}
		if settings > 0 {
			return nil
		}
		setting := &models.BusinessSetting{
			BusinessName: opts.BusinessName,
			VATRate:      opts.VATRate,
			ExchangeRate: opts.ExchangeRate,
		}
		if err := tx.Create(setting).Error; err != nil {
			return fmt.Errorf("seed business settings: %w", err)
		}
		result.SettingsCreated = true
		return nil
	})
	return result, err
}
