package analytics

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/andresuchdata/bestandsanalyse/internal/domain"
)

// Amounts holds the quantity and the three monetary fields of a row.
type Amounts struct {
	Quantity float64
	Local    float64
	Cost     float64
	Sale     float64
}

// ParseNumber reads a German formatted amount ("1.234,56"). Dots are dropped
// as thousands separators, the first comma becomes the decimal point and the
// longest numeric prefix wins. Anything unreadable is 0.
func ParseNumber(c domain.Cell) float64 {
	switch c.Kind {
	case domain.CellNumber:
		return c.Number
	case domain.CellText:
		s := strings.ReplaceAll(c.Text, ".", "")
		s = strings.Replace(s, ",", ".", 1)
		return parseFloatPrefix(s)
	default:
		return 0
	}
}

// parseFloatPrefix parses the leading decimal literal of s and ignores the rest.
func parseFloatPrefix(s string) float64 {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}

	digits := 0
	for end < len(s) && isDigit(s[end]) {
		end++
		digits++
	}
	if end < len(s) && s[end] == '.' {
		end++
		for end < len(s) && isDigit(s[end]) {
			end++
			digits++
		}
	}
	if digits == 0 {
		return 0
	}

	if end < len(s) && (s[end] == 'e' || s[end] == 'E') {
		exp := end + 1
		if exp < len(s) && (s[exp] == '+' || s[exp] == '-') {
			exp++
		}
		if exp < len(s) && isDigit(s[exp]) {
			for exp < len(s) && isDigit(s[exp]) {
				exp++
			}
			end = exp
		}
	}

	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// RawAmounts parses the numeric fields of a row without touching their signs.
func RawAmounts(row domain.MovementRow) Amounts {
	return Amounts{
		Quantity: ParseNumber(row.Quantity),
		Local:    ParseNumber(row.LocalAmount),
		Cost:     ParseNumber(row.CostAmount),
		Sale:     ParseNumber(row.SaleValue),
	}
}

// Normalize forces the monetary fields onto the sign of the quantity:
// write-offs reduce, gains increase. At quantity 0 the amounts pass through.
func Normalize(row domain.MovementRow) Amounts {
	a := RawAmounts(row)
	switch {
	case a.Quantity < 0:
		a.Local = -math.Abs(a.Local)
		a.Cost = -math.Abs(a.Cost)
		a.Sale = -math.Abs(a.Sale)
	case a.Quantity > 0:
		a.Local = math.Abs(a.Local)
		a.Cost = math.Abs(a.Cost)
		a.Sale = math.Abs(a.Sale)
	}
	return a
}

// netProfit applies the net-direction rule: a net write-off is valued at its
// cost, a net gain at sale value minus cost, no net movement at zero.
func netProfit(quantity, cost, sale float64) float64 {
	switch {
	case quantity < 0:
		return cost
	case quantity > 0:
		return sale - cost
	default:
		return 0
	}
}
