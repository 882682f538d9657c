// Package view renders list controller state, jobs and stats as terminal text.
package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// CurrencySymbol prefixes every money amount (Peruvian sol)
const CurrencySymbol = "S/"

// DateTimeLayout is used for timestamps in tables and job details
const DateTimeLayout = "2006-01-02 15:04"

var printer = message.NewPrinter(language.English)

// FormatCurrency renders a PEN amount with two decimals and thousands separators, e.g. "S/ 1,234.50"
func FormatCurrency(d decimal.Decimal) string {
	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	return sign + CurrencySymbol + " " + printer.Sprint(number.Decimal(d.InexactFloat64(), number.Scale(2)))
}

// FormatNumber renders a quantity with thousands separators and at most two decimals
func FormatNumber(d decimal.Decimal) string {
	return printer.Sprint(number.Decimal(d.Round(2).InexactFloat64(), number.MaxFractionDigits(2)))
}

// FormatInt renders an integer with thousands separators
func FormatInt(n int) string {
	return printer.Sprint(number.Decimal(n))
}

// FormatPercent renders a 0..100 value with at most one decimal, e.g. "42.5%"
func FormatPercent(pct float64) string {
	return printer.Sprint(number.Decimal(pct, number.MaxFractionDigits(1))) + "%"
}

// FormatValue is the default cell renderer
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case decimal.Decimal:
		return FormatNumber(x)
	case *decimal.Decimal:
		if x == nil {
			return ""
		}
		return FormatNumber(*x)
	case int:
		return FormatInt(x)
	case bool:
		if x {
			return "yes"
		}
		return "no"
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Local().Format(DateTimeLayout)
	case *time.Time:
		if x == nil || x.IsZero() {
			return ""
		}
		return x.Local().Format(DateTimeLayout)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// Money renders a decimal cell value as currency
func Money[T any](v any, _ T) string {
	if d, ok := v.(decimal.Decimal); ok {
		return FormatCurrency(d)
	}
	return FormatValue(v)
}

// Truncate shortens s to n runes, ending with "…" when cut
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return strings.TrimSpace(string(r[:n-1])) + "…"
}
