package settings

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/config"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/db/models"
	pkgerrors "github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/errors"
)

// BusinessSettings is the live configuration the order engine prices with.
type BusinessSettings struct {
	BusinessName string          `json:"business_name"`
	VATRate      decimal.Decimal `json:"vat_rate"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Provider reads the current business settings.
type Provider interface {
	GetBusinessSettings(ctx context.Context) (BusinessSettings, error)
}

// DBProvider reads the most recently updated business_settings row. When the
// table is empty it serves the configured fallback rates.
type DBProvider struct {
	db       *gorm.DB
	fallback BusinessSettings
}

// NewDBProvider builds a database-backed provider.
func NewDBProvider(conn *gorm.DB, cfg config.SettingsConfig) *DBProvider {
	return &DBProvider{
		db: conn,
		fallback: BusinessSettings{
			VATRate:      cfg.VATRate(),
			ExchangeRate: decimal.Zero,
		},
	}
}

func (p *DBProvider) GetBusinessSettings(ctx context.Context) (BusinessSettings, error) {
	var row models.BusinessSetting
	err := p.db.WithContext(ctx).Order("updated_at DESC").First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return p.fallback, nil
		}
		return BusinessSettings{}, pkgerrors.Internal(err, "load business settings")
	}
	return BusinessSettings{
		BusinessName: row.BusinessName,
		VATRate:      row.VATRate,
		ExchangeRate: row.ExchangeRate,
		UpdatedAt:    row.UpdatedAt,
	}, nil
}
