package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// CSV reports are one flat table: section, name, value, share, detail.
var csvHeader = []string{"section", "name", "value", "percentage", "detail"}

func writeCSV(r Report, path string) error {
	f, err := os.Create(path) //nolint:gosec // output path is chosen by the local user
	if err != nil {
		return fmt.Errorf("creating csv report: %w", err)
	}

	w := csv.NewWriter(f)
	for _, row := range csvRows(r) {
		if err := w.Write(row); err != nil {
			_ = f.Close()
			return fmt.Errorf("writing csv report: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing csv report: %w", err)
	}
	return f.Close()
}

func csvRows(r Report) [][]string {
	rows := [][]string{csvHeader}
	add := func(section, name string, value float64, pct string, detail string) {
		rows = append(rows, []string{section, name, money(value), pct, detail})
	}

	if o := r.Overview; o != nil {
		add("overview", "total_spent", o.TotalSpent, "", o.Status)
		add("overview", "monthly_average", o.MonthlyAverage, "", "")
		add("overview", "spending_ratio", o.SpendingRatio, "", "")
		add("overview", "active_categories", float64(o.ActiveCategories), "", "")
	}
	for _, c := range r.Categories {
		add("category", c.Category, c.Amount, pct(c.Percentage), "")
	}
	if b := r.BillsRatio; b != nil {
		add("bills_income", "income", b.Income, "", "")
		add("bills_income", "bills", b.Bills, pct(b.RatioPct), "")
		add("bills_income", "remaining", b.Remaining, pct(b.RemainingPct), "")
	}
	for _, b := range r.Bills {
		add("bill", b.Merchant, b.Amount, "", string(b.Status)+" "+b.DueDate.Format("2006-01-02"))
	}
	for _, p := range r.Predictions {
		add("prediction", p.Category, p.Amount, p.Label, p.PredictedDate.Format("2006-01-02"))
	}
	for _, in := range r.Insights {
		add("insight", in.Category, in.TotalSpent, "", fmt.Sprintf("%d transactions, %s", in.Frequency, in.Indicator))
	}
	for _, s := range r.History {
		add("history", s.At.Format("2006-01-02 15:04"), s.TotalSpent, "", s.TopCategory)
	}
	return rows
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func pct(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}
