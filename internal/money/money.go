// Package money formats amounts for the shop's single locale (it-IT, EUR).
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	Currency = "EUR"
	Locale   = "it-IT"

	symbol            = "€"
	decimalSeparator  = ","
	groupSeparator    = "."
	nonBreakingSpace  = "\u00a0"
	displayPrecision  = 2
	groupingThreshold = 3
)

// Format renders an amount the way it-IT formats EUR currency, e.g. "1.234,50 €" with a non-breaking space before the symbol.
// Rounding happens here and nowhere else.
func Format(amount decimal.Decimal) string {
	rounded := amount.Round(displayPrecision)
	digits := rounded.Abs().StringFixed(displayPrecision)
	intPart, fracPart, _ := strings.Cut(digits, ".")

	var b strings.Builder
	if rounded.IsNegative() {
		b.WriteString("-")
	}
	b.WriteString(group(intPart))
	b.WriteString(decimalSeparator)
	b.WriteString(fracPart)
	b.WriteString(nonBreakingSpace)
	b.WriteString(symbol)
	return b.String()
}

func group(intPart string) string {
	if len(intPart) <= groupingThreshold {
		return intPart
	}
	head := len(intPart) % groupingThreshold
	parts := make([]string, 0, len(intPart)/groupingThreshold+1)
	if head > 0 {
		parts = append(parts, intPart[:head])
	}
	for i := head; i < len(intPart); i += groupingThreshold {
		parts = append(parts, intPart[i:i+groupingThreshold])
	}
	return strings.Join(parts, groupSeparator)
}
