package payments

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/enums"
	pkgerrors "github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/errors"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/types"
)

// Request is the tender submitted to settle an order.
type Request struct {
	Currency       enums.Currency
	PaymentMethods []enums.PaymentMethod
	// RielAmount is recorded as-is when Currency is RIEL.
	RielAmount     decimal.Decimal
	SplitBill      bool
	SplitBreakdown types.SplitBreakdown
	MixedPayments  bool
	MixedBreakdown types.MixedBreakdown
}

// Flags are derived for downstream reporting and never change settlement math.
type Flags struct {
	NestedPayments     bool `json:"nested_payments"`
	MixedCurrency      bool `json:"mixed_currency"`
	SplitMixedCurrency bool `json:"split_mixed_currency"`
}

// Settlement is the normalized tender written onto a completed order.
type Settlement struct {
	Currency       enums.Currency
	PaymentMethod  enums.PaymentMethod
	PaidUSD        decimal.Decimal
	PaidRiel       decimal.Decimal
	SplitBill      bool
	SplitBreakdown types.SplitBreakdown
	MixedPayments  bool
	MixedBreakdown types.MixedBreakdown
	Flags          Flags
}

// Issue is one rejected field in a payment request.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s: %s", i.Field, i.Message)
}

// Validate checks split and mixed entries and reports every problem at once.
// Mixed entries are only checked when MixedPayments is set; the single
// PaymentMethods list is accepted as given.
func Validate(req Request) error {
	var errs error

	if !req.Currency.IsValid() {
		errs = multierr.Append(errs, Issue{Field: "currency", Message: "must be USD or RIEL"})
	}
	if req.Currency == enums.CurrencyRiel && req.RielAmount.IsNegative() {
		errs = multierr.Append(errs, Issue{Field: "riel_amount", Message: "cannot be negative"})
	}

	if req.SplitBill {
		if len(req.SplitBreakdown) == 0 {
			errs = multierr.Append(errs, Issue{Field: "split_breakdown", Message: "split bill requires at least one share"})
		}
		for i, entry := range req.SplitBreakdown {
			field := fmt.Sprintf("split_breakdown[%d]", i)
			if !entry.Amount.IsPositive() {
				errs = multierr.Append(errs, Issue{Field: field + ".amount", Message: "must be greater than zero"})
			}
			errs = multierr.Append(errs, validateMixed(field+".mixed_payments", entry.MixedPayments))
		}
		if len(req.SplitBreakdown) > 0 && !req.SplitBreakdown.Total().IsPositive() {
			errs = multierr.Append(errs, Issue{Field: "split_breakdown", Message: "total must be greater than zero"})
		}
	}

	if req.MixedPayments {
		if len(req.MixedBreakdown) == 0 {
			errs = multierr.Append(errs, Issue{Field: "mixed_breakdown", Message: "mixed payment requires at least one entry"})
		}
		errs = multierr.Append(errs, validateMixed("mixed_breakdown", req.MixedBreakdown))
	}

	if errs == nil {
		return nil
	}
	issues := make([]Issue, 0)
	for _, err := range multierr.Errors(errs) {
		if issue, ok := err.(Issue); ok {
			issues = append(issues, issue)
		}
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, errs, "invalid payment").WithDetails(issues)
}

func validateMixed(field string, entries types.MixedBreakdown) error {
	var errs error
	for i, entry := range entries {
		prefix := fmt.Sprintf("%s[%d]", field, i)
		if !entry.Amount.IsPositive() {
			errs = multierr.Append(errs, Issue{Field: prefix + ".amount", Message: "must be greater than zero"})
		}
		if !entry.Method.IsValid() {
			errs = multierr.Append(errs, Issue{Field: prefix + ".method", Message: "must be one of CASH, CARD, QR"})
		}
	}
	return errs
}

// ResolvePrimaryMethod returns the first method, or CASH when none was given.
func ResolvePrimaryMethod(methods []enums.PaymentMethod) enums.PaymentMethod {
	if len(methods) == 0 {
		return enums.PaymentMethodCash
	}
	return methods[0]
}

// ComputeTender splits the paid figures by currency. USD pays the order total;
// RIEL records the supplied riel amount exactly, with no conversion.
func ComputeTender(currency enums.Currency, total, rielAmount decimal.Decimal) (paidUSD, paidRiel decimal.Decimal) {
	if currency == enums.CurrencyRiel {
		return decimal.Zero, rielAmount
	}
	return total, decimal.Zero
}

// DeriveFlags computes the reporting flags for a request.
func DeriveFlags(req Request) Flags {
	var flags Flags
	for _, entry := range req.SplitBreakdown {
		if len(entry.MixedPayments) > 0 {
			flags.NestedPayments = true
			break
		}
	}
	if req.MixedPayments {
		flags.MixedCurrency = countCurrencies(req.Currency, mixedCurrencies(req.MixedBreakdown)) > 1
	}
	if req.SplitBill {
		currencies := make([]enums.Currency, 0, len(req.SplitBreakdown))
		for _, entry := range req.SplitBreakdown {
			currencies = append(currencies, entry.Currency)
		}
		flags.SplitMixedCurrency = countCurrencies(req.Currency, currencies) > 1
	}
	return flags
}

// Settle validates the request and normalizes it against the order total.
func Settle(req Request, total decimal.Decimal) (Settlement, error) {
	if err := Validate(req); err != nil {
		return Settlement{}, err
	}

	methods := req.PaymentMethods
	if req.MixedPayments && len(req.MixedBreakdown) > 0 {
		methods = make([]enums.PaymentMethod, 0, len(req.MixedBreakdown))
		for _, entry := range req.MixedBreakdown {
			methods = append(methods, entry.Method)
		}
	}
	paidUSD, paidRiel := ComputeTender(req.Currency, total, req.RielAmount)

	out := Settlement{
		Currency:      req.Currency,
		PaymentMethod: ResolvePrimaryMethod(methods),
		PaidUSD:       paidUSD,
		PaidRiel:      paidRiel,
		SplitBill:     req.SplitBill,
		MixedPayments: req.MixedPayments,
		Flags:         DeriveFlags(req),
	}
	if req.SplitBill {
		out.SplitBreakdown = req.SplitBreakdown
	}
	if req.MixedPayments {
		out.MixedBreakdown = req.MixedBreakdown
	}
	return out, nil
}

func mixedCurrencies(entries types.MixedBreakdown) []enums.Currency {
	out := make([]enums.Currency, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entry.Currency)
	}
	return out
}

// countCurrencies counts distinct currencies, treating blanks as the order's
// settlement currency.
func countCurrencies(base enums.Currency, currencies []enums.Currency) int {
	seen := map[enums.Currency]struct{}{}
	for _, c := range currencies {
		if c == "" {
			c = base
		}
		seen[c] = struct{}{}
	}
	return len(seen)
}
