package types

import (
	"github.com/shopspring/decimal"

	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/enums"
)

// MethodAmount is one method/amount pair inside a mixed payment.
type MethodAmount struct {
	Method   enums.PaymentMethod `json:"method"`
	Amount   decimal.Decimal     `json:"amount"`
	Currency enums.Currency      `json:"currency,omitempty"`
}

// MixedBreakdown lists the method/amount pairs of a mixed payment.
type MixedBreakdown []MethodAmount

// SplitEntry is one share of a split bill. A share may itself be paid with
// several methods, in which case MixedPayments is populated.
type SplitEntry struct {
	Label         string              `json:"label,omitempty"`
	Amount        decimal.Decimal     `json:"amount"`
	Currency      enums.Currency      `json:"currency,omitempty"`
	Method        enums.PaymentMethod `json:"method,omitempty"`
	MixedPayments MixedBreakdown      `json:"mixed_payments,omitempty"`
}

// SplitBreakdown lists the shares of a split bill.
type SplitBreakdown []SplitEntry

// Total sums the share amounts.
func (s SplitBreakdown) Total() decimal.Decimal {
	total := decimal.Zero
	for _, entry := range s {
		total = total.Add(entry.Amount)
	}
	return total
}
