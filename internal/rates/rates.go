// Package rates converts provider-native prices to USD. The conversion
// rate is injectable so tests and future rate feeds can supply
// deterministic values instead of the embedded constant.
package rates

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Converter converts an amount in the given currency to USD
type Converter interface {
	ToUSD(amount decimal.Decimal, currency string) (decimal.Decimal, error)
}

// Fixed is a Converter backed by a static currency -> USD-per-unit
// rate table. Rates are expressed as units of the foreign currency per
// one USD (e.g. INR 86.5 = $1).
type Fixed struct {
	perUSD map[string]decimal.Decimal
}

// DefaultINRPerUSD is the conversion rate applied to NSE/BSE-listed
// quotes, which providers return in INR.
var DefaultINRPerUSD = decimal.NewFromFloat(86.5)

// NewFixed creates a Converter with the default rate table
func NewFixed() *Fixed {
	return &Fixed{
		perUSD: map[string]decimal.Decimal{
			"USD": decimal.NewFromInt(1),
			"INR": DefaultINRPerUSD,
		},
	}
}

// WithRate returns a copy of the table with the given rate overridden
func (f *Fixed) WithRate(currency string, perUSD decimal.Decimal) *Fixed {
	next := &Fixed{perUSD: make(map[string]decimal.Decimal, len(f.perUSD)+1)}
	for k, v := range f.perUSD {
		next.perUSD[k] = v
	}
	next.perUSD[currency] = perUSD
	return next
}

// ToUSD converts amount from the given currency to USD
func (f *Fixed) ToUSD(amount decimal.Decimal, currency string) (decimal.Decimal, error) {
	rate, ok := f.perUSD[currency]
	if !ok {
		return decimal.Zero, fmt.Errorf("no conversion rate for currency %q", currency)
	}
	return amount.Div(rate), nil
}
