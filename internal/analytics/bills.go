package analytics

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/theirongolddev/finburn/internal/model"
)

// BillStatus is the payment state of a bill.
type BillStatus string

const (
	BillPaid     BillStatus = "paid"
	BillUpcoming BillStatus = "upcoming"
	BillOverdue  BillStatus = "overdue"
)

// Bill is a bill-category transaction prepared for display.
type Bill struct {
	Category string     `json:"category" yaml:"category"`
	Merchant string     `json:"merchant" yaml:"merchant"`
	Amount   float64    `json:"amount" yaml:"amount"`
	DueDate  time.Time  `json:"dueDate" yaml:"due_date"`
	Status   BillStatus `json:"status" yaml:"status"`
}

// BillsSummary is the bills view over a set of transactions.
type BillsSummary struct {
	Bills    []Bill  `json:"bills" yaml:"bills"`
	Total    float64 `json:"total" yaml:"total"`
	Paid     int     `json:"paid" yaml:"paid"`
	Upcoming int     `json:"upcoming" yaml:"upcoming"`
	Overdue  int     `json:"overdue" yaml:"overdue"`
}

// Bills selects bill-category transactions and classifies each one. A
// backend status of "overdue" wins; otherwise bills dated after now are
// upcoming and the rest are paid. Bills are ordered by due date.
func Bills(txns []model.Transaction, now time.Time) BillsSummary {
	var s BillsSummary
	var acc accumulator
	for _, t := range txns {
		if !IsBill(t.Category) || !finite(t.Amount) {
			continue
		}
		b := Bill{
			Category: t.Category,
			Merchant: t.Merchant,
			Amount:   math.Abs(t.Amount),
			DueDate:  t.Date.Time,
		}
		switch {
		case strings.EqualFold(t.Status, string(BillOverdue)):
			b.Status = BillOverdue
			s.Overdue++
		case b.DueDate.After(now):
			b.Status = BillUpcoming
			s.Upcoming++
		default:
			b.Status = BillPaid
			s.Paid++
		}
		acc.add(b.Amount)
		s.Bills = append(s.Bills, b)
	}
	sort.SliceStable(s.Bills, func(i, j int) bool {
		if !s.Bills[i].DueDate.Equal(s.Bills[j].DueDate) {
			return s.Bills[i].DueDate.Before(s.Bills[j].DueDate)
		}
		return s.Bills[i].Merchant < s.Bills[j].Merchant
	})
	s.Total = acc.value()
	return s
}

// BillsRatio is bills measured against monthly income.
type BillsRatio struct {
	Income        float64 `json:"income" yaml:"income"`
	Bills         float64 `json:"bills" yaml:"bills"`
	Remaining     float64 `json:"remaining" yaml:"remaining"`
	RatioPct      float64 `json:"ratioPct" yaml:"ratio_pct"`
	RemainingPct  float64 `json:"remainingPct" yaml:"remaining_pct"`
	ExceedsIncome bool    `json:"exceedsIncome" yaml:"exceeds_income"`
}

// IncomeRatio computes bills as a share of income. Zero income yields 0 for both
// percentages.
func IncomeRatio(bills, income float64) BillsRatio {
	r := BillsRatio{
		Income:    income,
		Bills:     math.Abs(bills),
		Remaining: Sum(income, -math.Abs(bills)),
	}
	r.RatioPct = Percent(r.Bills, income)
	if income != 0 {
		r.RemainingPct = Percent(r.Remaining, income)
	}
	r.ExceedsIncome = income > 0 && r.Bills > income
	return r
}

// IncomeFromAnalysis reads the ratio from a normalized bills-income payload.
func IncomeFromAnalysis(a model.BillsIncomeAnalysis) (BillsRatio, error) {
	if a.MonthlyIncome == nil || a.TotalBills == nil {
		return BillsRatio{}, ErrIncomplete
	}
	return IncomeRatio(*a.TotalBills, *a.MonthlyIncome), nil
}

// MonthBills groups the bills paid in one calendar month.
type MonthBills struct {
	Month     time.Month           `json:"month" yaml:"month"`
	Bills     []model.AnalyzedBill `json:"bills" yaml:"bills"`
	Total     float64              `json:"total" yaml:"total"`
	Income    float64              `json:"income" yaml:"income"`
	IncomePct float64              `json:"incomePct" yaml:"income_pct"`
}

// Name returns the month's English name.
func (m MonthBills) Name() string { return m.Month.String() }

// BillPct is a single bill's share of the month's income.
func (m MonthBills) BillPct(b model.AnalyzedBill) float64 {
	return Percent(math.Abs(b.Amount), m.Income)
}

// BillGrid buckets bills by the month they were paid. The result always has
// twelve entries, January first; months without bills carry zero income.
func BillGrid(bills []model.AnalyzedBill, income float64) []MonthBills {
	grid := make([]MonthBills, 12)
	accs := make([]accumulator, 12)
	for i := range grid {
		grid[i].Month = time.Month(i + 1)
	}
	for _, b := range bills {
		if b.Date.IsZero() || !finite(b.Amount) {
			continue
		}
		idx := int(b.Date.Month()) - 1
		grid[idx].Bills = append(grid[idx].Bills, b)
		accs[idx].add(math.Abs(b.Amount))
		if income > grid[idx].Income {
			grid[idx].Income = income
		}
	}
	for i := range grid {
		grid[i].Total = accs[i].value()
		grid[i].IncomePct = Percent(grid[i].Total, grid[i].Income)
		sort.SliceStable(grid[i].Bills, func(a, b int) bool {
			return grid[i].Bills[a].Date.Before(grid[i].Bills[b].Date.Time)
		})
	}
	return grid
}

// NavigateMonth moves a zero-based month index by delta, wrapping within 0..11.
func NavigateMonth(idx, delta int) int {
	n := (idx + delta) % 12
	if n < 0 {
		n += 12
	}
	return n
}
