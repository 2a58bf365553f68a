// Package analytics derives display-ready figures from backend payloads.
// Every function is pure; percentages are always finite.
package analytics

import (
	"math"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Sum adds amounts exactly and returns the float result.
func Sum(amounts ...float64) float64 {
	total := decimal.Zero
	for _, a := range amounts {
		if !finite(a) {
			continue
		}
		total = total.Add(decimal.NewFromFloat(a))
	}
	return total.InexactFloat64()
}

// Percent returns part/total*100, or 0 when total is zero or the result
// would not be finite.
func Percent(part, total float64) float64 {
	if total == 0 || !finite(part) || !finite(total) {
		return 0
	}
	p := decimal.NewFromFloat(part).Div(decimal.NewFromFloat(total)).Mul(hundred)
	f := p.InexactFloat64()
	if !finite(f) {
		return 0
	}
	return f
}

// Ratio returns a/b, or 0 when b is zero.
func Ratio(a, b float64) float64 {
	if b == 0 || !finite(a) || !finite(b) {
		return 0
	}
	r := a / b
	if !finite(r) {
		return 0
	}
	return r
}

// Round2 rounds to cents.
func Round2(v float64) float64 {
	if !finite(v) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

type accumulator struct {
	total decimal.Decimal
}

func (a *accumulator) add(v float64) {
	if finite(v) {
		a.total = a.total.Add(decimal.NewFromFloat(v))
	}
}

func (a *accumulator) value() float64 {
	return a.total.InexactFloat64()
}
