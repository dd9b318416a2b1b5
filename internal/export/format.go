package export

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatAmount formats v with German separators and two decimals:
// 1234.5 => "1.234,50".
func FormatAmount(v float64) string {
	return formatDE(v, 2, false)
}

// FormatQuantity formats v with German separators, up to three decimals and
// no trailing zeros: 1000 => "1.000", 2.5 => "2,5".
func FormatQuantity(v float64) string {
	return formatDE(v, 3, true)
}

// FormatPercent formats a percentage with one decimal: 12.345 => "12,3 %".
func FormatPercent(v float64) string {
	return formatDE(v, 1, false) + " %"
}

func formatDE(v float64, decimals int32, trim bool) string {
	d := decimal.NewFromFloat(v).Round(decimals)
	if d.IsZero() {
		d = decimal.Zero
	}

	s := d.Abs().StringFixed(decimals)
	intPart, fracPart, _ := strings.Cut(s, ".")
	if trim {
		fracPart = strings.TrimRight(fracPart, "0")
	}

	var b strings.Builder
	if d.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteString(groupThousands(intPart))
	if fracPart != "" {
		b.WriteByte(',')
		b.WriteString(fracPart)
	}
	return b.String()
}

// groupThousands inserts a dot every three digits from the right.
func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head := len(digits) % 3
	var b strings.Builder
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
