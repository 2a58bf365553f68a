// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// FormatMoney formats a dollar amount with separators and cents.
// e.g., 1234.5 -> "$1,234.50", -12 -> "-$12.00"
func FormatMoney(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "$0.00"
	}
	cents := int64(math.Round(math.Abs(v) * 100))
	s := "$" + FormatNumber(cents/100) + fmt.Sprintf(".%02d", cents%100)
	if v < 0 && cents > 0 {
		return "-" + s
	}
	return s
}

// FormatMoneyShort formats a dollar amount compactly for cards and charts.
// e.g., 1234 -> "$1.2K", 56.78 -> "$56.78", 2_500_000 -> "$2.5M"
func FormatMoneyShort(v float64) string {
	abs := math.Abs(v)
	sign := ""
	if v < 0 {
		sign = "-"
	}
	switch {
	case abs >= 1_000_000:
		return fmt.Sprintf("%s$%.1fM", sign, abs/1_000_000)
	case abs >= 10_000:
		return fmt.Sprintf("%s$%.0fK", sign, abs/1_000)
	case abs >= 1_000:
		return fmt.Sprintf("%s$%.1fK", sign, abs/1_000)
	case abs >= 100:
		return fmt.Sprintf("%s$%.0f", sign, abs)
	default:
		return fmt.Sprintf("%s$%.2f", sign, abs)
	}
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-100 percentage. Non-finite input renders as 0.0%.
func FormatPercent(pct float64) string {
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		pct = 0
	}
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatRatio formats a 0-1 ratio as a percentage.
func FormatRatio(r float64) string {
	return FormatPercent(r * 100)
}

// FormatDelta formats the change between two amounts with an explicit sign.
func FormatDelta(current, previous float64) string {
	delta := current - previous
	if delta >= 0 {
		return "+" + FormatMoney(delta)
	}
	return FormatMoney(delta)
}

// FormatDate renders a calendar date as "Jan 02". Zero dates render as "—".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Format("Jan 02")
}

// FormatMonth renders a year and month as "March 2025". Zero values
// render as "current month".
func FormatMonth(year, month int) string {
	if year == 0 || month < 1 || month > 12 {
		return "current month"
	}
	return fmt.Sprintf("%s %d", time.Month(month), year)
}
