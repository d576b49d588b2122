// Package types - Money and currency handling
package types

import "github.com/shopspring/decimal"

// Currency represents an ISO 4217 currency code
type Currency string

const (
	CurrencyPLN Currency = "PLN"
	CurrencyEUR Currency = "EUR"
	CurrencyUSD Currency = "USD"
	CurrencyGBP Currency = "GBP"
	CurrencyCZK Currency = "CZK"
)

// String returns the string representation
func (c Currency) String() string {
	return string(c)
}

// minorUnits maps currencies with a non-standard minor-unit exponent.
// Everything else uses the ISO 4217 default of 2.
var minorUnits = map[Currency]int32{
	"BHD": 3, "IQD": 3, "JOD": 3, "KWD": 3, "LYD": 3, "OMR": 3, "TND": 3,
	"JPY": 0, "KRW": 0, "VND": 0, "CLP": 0, "ISK": 0,
}

// MinorUnits returns the currency's minor-unit exponent
func (c Currency) MinorUnits() int32 {
	if exp, ok := minorUnits[c]; ok {
		return exp
	}
	return 2
}

// RoundMinor rounds an amount to the currency's minor unit, half up.
// Rounding happens only at final output, never mid-calculation.
func (c Currency) RoundMinor(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(c.MinorUnits())
}

// Percent applies rate percent to amount without rounding
func Percent(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Div(decimal.NewFromInt(100))
}

// ClampMin raises amount to min when min is set and amount is below it
func ClampMin(amount decimal.Decimal, min *decimal.Decimal) decimal.Decimal {
	if min != nil && amount.LessThan(*min) {
		return *min
	}
	return amount
}

// ClampMax lowers amount to max when max is set and amount is above it
func ClampMax(amount decimal.Decimal, max *decimal.Decimal) decimal.Decimal {
	if max != nil && amount.GreaterThan(*max) {
		return *max
	}
	return amount
}
