package calculator

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used for display when no valid currency code is configured.
const DefaultCurrency = "USD"

// tolerance is the absolute difference below which two totals are treated as
// equal. It matches one minor unit of a two-decimal currency.
var tolerance = decimal.New(1, -2)

// Tolerance returns the fixed epsilon used by WithinTolerance.
func Tolerance() decimal.Decimal { return tolerance }

var hundred = decimal.NewFromInt(100)

// WithinTolerance reports whether |a - b| < Tolerance().
// Every accept/reject decision on split totals goes through here.
func WithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(tolerance)
}

// minorDigits returns the number of fractional digits of the currency,
// falling back to 2 for unknown codes.
func minorDigits(currency string) int32 {
	if c := money.GetCurrency(currency); c != nil {
		return int32(c.Fraction)
	}
	return 2
}

// RoundMinor rounds d to the currency's minor unit. Only call this where an
// amount leaves the engine for display; calculations keep full precision.
func RoundMinor(d decimal.Decimal, currency string) decimal.Decimal {
	return d.Round(minorDigits(currency))
}

// FormatAmount renders d in currency for display, e.g. "$20.00".
func FormatAmount(d decimal.Decimal, currency string) string {
	if money.GetCurrency(currency) == nil {
		currency = DefaultCurrency
	}
	minor := RoundMinor(d, currency).Shift(minorDigits(currency)).IntPart()
	return money.New(minor, currency).Display()
}
