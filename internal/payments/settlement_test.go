package payments

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/enums"
	pkgerrors "github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/errors"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/types"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func issuesOf(t *testing.T, err error) []Issue {
	t.Helper()
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
	issues, ok := typed.Details().([]Issue)
	require.True(t, ok, "details should list issues")
	return issues
}

func TestValidateAcceptsSimpleUSD(t *testing.T) {
	require.NoError(t, Validate(Request{Currency: enums.CurrencyUSD, PaymentMethods: []enums.PaymentMethod{enums.PaymentMethodCard}}))
}

func TestValidateCollectsEveryIssue(t *testing.T) {
	req := Request{
		Currency:  enums.CurrencyUSD,
		SplitBill: true,
		SplitBreakdown: types.SplitBreakdown{
			{Amount: dec("0")},
			{Amount: dec("-5")},
		},
		MixedPayments: true,
		MixedBreakdown: types.MixedBreakdown{
			{Method: enums.PaymentMethod("CRYPTO"), Amount: dec("10")},
			{Method: enums.PaymentMethodCash, Amount: dec("0")},
		},
	}

	issues := issuesOf(t, Validate(req))
	fields := make([]string, 0, len(issues))
	for _, issue := range issues {
		fields = append(fields, issue.Field)
	}
	assert.ElementsMatch(t, []string{
		"split_breakdown[0].amount",
		"split_breakdown[1].amount",
		"split_breakdown",
		"mixed_breakdown[0].method",
		"mixed_breakdown[1].amount",
	}, fields)
}

func TestValidateSkipsMixedEntriesWhenFlagOff(t *testing.T) {
	req := Request{
		Currency:       enums.CurrencyUSD,
		PaymentMethods: []enums.PaymentMethod{enums.PaymentMethod("VOUCHER")},
		MixedBreakdown: types.MixedBreakdown{{Method: enums.PaymentMethod("CRYPTO"), Amount: dec("-1")}},
	}
	require.NoError(t, Validate(req))
}

func TestValidateNestedMixedInsideSplit(t *testing.T) {
	req := Request{
		Currency:  enums.CurrencyUSD,
		SplitBill: true,
		SplitBreakdown: types.SplitBreakdown{
			{Amount: dec("5"), MixedPayments: types.MixedBreakdown{{Method: "GOLD", Amount: dec("5")}}},
		},
	}
	issues := issuesOf(t, Validate(req))
	require.Len(t, issues, 1)
	assert.Equal(t, "split_breakdown[0].mixed_payments[0].method", issues[0].Field)
}

func TestValidateEmptyBreakdowns(t *testing.T) {
	issues := issuesOf(t, Validate(Request{Currency: enums.CurrencyUSD, SplitBill: true, MixedPayments: true}))
	assert.Len(t, issues, 2)

	issues = issuesOf(t, Validate(Request{Currency: enums.Currency("EUR")}))
	assert.Equal(t, "currency", issues[0].Field)

	issues = issuesOf(t, Validate(Request{Currency: enums.CurrencyRiel, RielAmount: dec("-100")}))
	assert.Equal(t, "riel_amount", issues[0].Field)
}

func TestResolvePrimaryMethod(t *testing.T) {
	assert.Equal(t, enums.PaymentMethodCash, ResolvePrimaryMethod(nil))
	assert.Equal(t, enums.PaymentMethodQR, ResolvePrimaryMethod([]enums.PaymentMethod{enums.PaymentMethodQR, enums.PaymentMethodCard}))
}

func TestComputeTender(t *testing.T) {
	usd, riel := ComputeTender(enums.CurrencyUSD, dec("22.00"), dec("90000"))
	assert.True(t, usd.Equal(dec("22")))
	assert.True(t, riel.IsZero())

	usd, riel = ComputeTender(enums.CurrencyRiel, dec("10"), dec("90000"))
	assert.True(t, usd.IsZero())
	assert.True(t, riel.Equal(dec("90000")), "riel amount is recorded exactly, without conversion")
}

func TestDeriveFlags(t *testing.T) {
	req := Request{
		Currency:  enums.CurrencyUSD,
		SplitBill: true,
		SplitBreakdown: types.SplitBreakdown{
			{Amount: dec("5")},
			{Amount: dec("20000"), Currency: enums.CurrencyRiel, MixedPayments: types.MixedBreakdown{
				{Method: enums.PaymentMethodCash, Amount: dec("10000")},
			}},
		},
		MixedPayments: true,
		MixedBreakdown: types.MixedBreakdown{
			{Method: enums.PaymentMethodCash, Amount: dec("5"), Currency: enums.CurrencyUSD},
			{Method: enums.PaymentMethodCard, Amount: dec("5")},
		},
	}
	flags := DeriveFlags(req)
	assert.True(t, flags.NestedPayments)
	assert.True(t, flags.SplitMixedCurrency)
	assert.False(t, flags.MixedCurrency, "blank currency defaults to the order currency")

	assert.Equal(t, Flags{}, DeriveFlags(Request{Currency: enums.CurrencyUSD}))
}

func TestSettleRiel(t *testing.T) {
	settlement, err := Settle(Request{Currency: enums.CurrencyRiel, RielAmount: dec("90000")}, dec("10"))
	require.NoError(t, err)
	assert.Equal(t, enums.CurrencyRiel, settlement.Currency)
	assert.Equal(t, enums.PaymentMethodCash, settlement.PaymentMethod)
	assert.True(t, settlement.PaidRiel.Equal(dec("90000")))
	assert.True(t, settlement.PaidUSD.IsZero())
}

func TestSettleMixedUsesFirstMixedMethod(t *testing.T) {
	settlement, err := Settle(Request{
		Currency:       enums.CurrencyUSD,
		PaymentMethods: []enums.PaymentMethod{enums.PaymentMethodCash},
		MixedPayments:  true,
		MixedBreakdown: types.MixedBreakdown{
			{Method: enums.PaymentMethodCard, Amount: dec("6")},
			{Method: enums.PaymentMethodCash, Amount: dec("5")},
		},
	}, dec("11"))
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentMethodCard, settlement.PaymentMethod)
	assert.True(t, settlement.PaidUSD.Equal(dec("11")))
	assert.Len(t, settlement.MixedBreakdown, 2)
	assert.Nil(t, settlement.SplitBreakdown)
}

func TestSettleRejectsInvalid(t *testing.T) {
	_, err := Settle(Request{Currency: enums.CurrencyUSD, MixedPayments: true}, dec("5"))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
