package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// BusinessSnapshot is the tax configuration frozen onto an order when it was
// created. Recalculations of that order always use these values.
type BusinessSnapshot struct {
	VATRate      decimal.Decimal `json:"vat_rate"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
	BusinessName string          `json:"business_name,omitempty"`
	CapturedAt   time.Time       `json:"captured_at"`
}

// Tax returns subtotal × VATRate / 100. The result is not rounded.
func (s BusinessSnapshot) Tax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(s.VATRate).Div(decimal.NewFromInt(100))
}
