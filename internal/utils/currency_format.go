package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatPesos formats an amount the way Colombian receipts show it: whole
// pesos with dot thousands separators.
// Example: 1234567 returns "$ 1.234.567"
// Example: -5000 returns "-$ 5.000"
func FormatPesos(amount decimal.Decimal) string {
	digits := amount.Abs().Round(0).StringFixed(0)

	var b strings.Builder
	if amount.Round(0).IsNegative() {
		b.WriteString("-")
	}
	b.WriteString("$ ")
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteString(".")
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// FormatWithPrecision formats an amount with the given precision
// Example: 3.84615 with precision 2 returns "3.85"
func FormatWithPrecision(amount decimal.Decimal, precision int) string {
	return amount.StringFixed(int32(precision))
}
