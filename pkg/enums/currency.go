package enums

import (
	"slices"
	"strings"
)

// Currency is the denomination an order is settled in. Totals are always
// computed in USD; RIEL settlements record the tendered riel amount alongside.
type Currency string

const (
	CurrencyUSD  Currency = "USD"
	CurrencyRiel Currency = "RIEL"
)

var currencies = []Currency{CurrencyUSD, CurrencyRiel}

func (c Currency) String() string { return string(c) }

func (c Currency) IsValid() bool { return slices.Contains(currencies, c) }

// ParseCurrency converts raw input into a Currency. An empty value means USD.
func ParseCurrency(value string) (Currency, error) {
	if strings.TrimSpace(value) == "" {
		return CurrencyUSD, nil
	}
	return parse("currency", value, currencies)
}
