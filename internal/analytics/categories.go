package analytics

import (
	"math"
	"sort"

	"github.com/theirongolddev/finburn/internal/model"
)

// ExcludedCategories are fixed costs and income, left out of discretionary
// spending views.
var ExcludedCategories = map[string]bool{
	"Rent":          true,
	"Income":        true,
	"Utilities":     true,
	"Insurance":     true,
	"Phone Bill":    true,
	"Internet":      true,
	"Mortgage":      true,
	"Water Bill":    true,
	"Electric Bill": true,
	"Gas Bill":      true,
}

// BillCategories are the categories treated as recurring bills.
var BillCategories = map[string]bool{
	"Rent":          true,
	"Utilities":     true,
	"Insurance":     true,
	"Phone Bill":    true,
	"Internet":      true,
	"Mortgage":      true,
	"Water Bill":    true,
	"Electric Bill": true,
	"Gas Bill":      true,
}

// IsExcluded reports whether category is left out of spending views.
func IsExcluded(category string) bool { return ExcludedCategories[category] }

// IsBill reports whether category is a bill.
func IsBill(category string) bool { return BillCategories[category] }

// CategoryShare is one row of a category breakdown.
type CategoryShare struct {
	Category   string  `json:"category" yaml:"category"`
	Amount     float64 `json:"amount" yaml:"amount"`
	Percentage float64 `json:"percentage" yaml:"percentage"`
}

// CategoryBreakdown turns signed per-category totals into shares of
// absolute spend. Excluded categories are dropped, rows are sorted by
// amount descending then name.
func CategoryBreakdown(totals map[string]float64) []CategoryShare {
	rows := make([]CategoryShare, 0, len(totals))
	for cat, amt := range totals {
		if IsExcluded(cat) || !finite(amt) {
			continue
		}
		rows = append(rows, CategoryShare{Category: cat, Amount: math.Abs(amt)})
	}
	return shares(rows)
}

// FromTopCategories builds a breakdown from the backend's top-category rows,
// recomputing percentages over the rows that remain after exclusion.
func FromTopCategories(cats []model.CategorySpend) []CategoryShare {
	merged := make(map[string]float64, len(cats))
	for _, c := range cats {
		merged[c.Category] += c.TotalSpent
	}
	return CategoryBreakdown(merged)
}

// FromBillSpend builds a merchant breakdown from the bills summary.
// Bill rows are never filtered.
func FromBillSpend(bills []model.BillSpend) []CategoryShare {
	merged := make(map[string]float64, len(bills))
	for _, b := range bills {
		if finite(b.TotalSpent) {
			merged[b.Merchant] += math.Abs(b.TotalSpent)
		}
	}
	rows := make([]CategoryShare, 0, len(merged))
	for m, amt := range merged {
		rows = append(rows, CategoryShare{Category: m, Amount: amt})
	}
	return shares(rows)
}

func shares(rows []CategoryShare) []CategoryShare {
	var acc accumulator
	for _, r := range rows {
		acc.add(r.Amount)
	}
	total := acc.value()
	for i := range rows {
		rows[i].Percentage = Percent(rows[i].Amount, total)
	}
	sortShares(rows)
	return rows
}

func sortShares(rows []CategoryShare) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Amount != rows[j].Amount {
			return rows[i].Amount > rows[j].Amount
		}
		return rows[i].Category < rows[j].Category
	})
}

// TotalOf sums the amounts of a breakdown.
func TotalOf(rows []CategoryShare) float64 {
	var acc accumulator
	for _, r := range rows {
		acc.add(r.Amount)
	}
	return acc.value()
}

// Top returns at most n rows.
func Top(rows []CategoryShare, n int) []CategoryShare {
	if n <= 0 || n >= len(rows) {
		return rows
	}
	return rows[:n]
}
