package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/theirongolddev/finburn/internal/model"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func txn(cat, merchant string, amount float64, date time.Time) model.Transaction {
	return model.Transaction{Category: cat, Merchant: merchant, Amount: amount, Date: model.NewDate(date)}
}

func TestCategoryBreakdown(t *testing.T) {
	rows := CategoryBreakdown(map[string]float64{
		"Food":          -50,
		"Transport":     -20,
		"Entertainment": -10,
		"Rent":          -2200,
		"Income":        5000,
	})

	want := []CategoryShare{
		{"Food", 50, 62.5},
		{"Transport", 20, 25},
		{"Entertainment", 10, 12.5},
	}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows, want %d: %+v", len(rows), len(want), rows)
	}
	for i, w := range want {
		if rows[i].Category != w.Category || !approx(rows[i].Amount, w.Amount) || !approx(rows[i].Percentage, w.Percentage) {
			t.Errorf("row %d = %+v, want %+v", i, rows[i], w)
		}
	}
}

func TestCategoryBreakdownProperties(t *testing.T) {
	totals := map[string]float64{
		"Food": -123.45, "Shopping": -67.89, "Travel": -310, "Health": -12.01,
		"Coffee Shop": -44.4, "Entertainment": -0.5,
	}
	rows := CategoryBreakdown(totals)

	var sum float64
	for i, r := range rows {
		sum += r.Percentage
		if math.IsNaN(r.Percentage) || math.IsInf(r.Percentage, 0) {
			t.Fatalf("non-finite percentage in %+v", r)
		}
		if i > 0 && rows[i-1].Amount <= r.Amount {
			t.Fatalf("not strictly descending at %d: %v then %v", i, rows[i-1].Amount, r.Amount)
		}
	}
	if math.Abs(sum-100) > 0.01 {
		t.Fatalf("percentages sum to %v, want ~100", sum)
	}
}

func TestCategoryBreakdownTiesAndEmpty(t *testing.T) {
	rows := CategoryBreakdown(map[string]float64{"B": -10, "A": -10})
	if rows[0].Category != "A" || rows[1].Category != "B" {
		t.Fatalf("ties should sort by name: %+v", rows)
	}

	if rows := CategoryBreakdown(nil); len(rows) != 0 {
		t.Fatalf("empty input gave %+v", rows)
	}

	zero := CategoryBreakdown(map[string]float64{"Food": 0})
	if zero[0].Percentage != 0 {
		t.Fatalf("zero total should give 0%%, got %v", zero[0].Percentage)
	}
}

func TestIncomeRatio(t *testing.T) {
	r := IncomeRatio(800, 2000)
	if !approx(r.RatioPct, 40) || !approx(r.RemainingPct, 60) || !approx(r.Remaining, 1200) {
		t.Fatalf("IncomeRatio(800, 2000) = %+v", r)
	}

	z := IncomeRatio(800, 0)
	if z.RatioPct != 0 || z.RemainingPct != 0 {
		t.Fatalf("zero income should yield zeros, got %+v", z)
	}

	over := IncomeRatio(2500, 2000)
	if !over.ExceedsIncome {
		t.Fatal("bills above income should be flagged")
	}
}

func TestIncomeFromAnalysis(t *testing.T) {
	if _, err := IncomeFromAnalysis(model.BillsIncomeAnalysis{}); err == nil {
		t.Fatal("expected error for missing figures")
	}
	r, err := IncomeFromAnalysis(model.BillsIncomeAnalysis{
		MonthlyIncome: model.Float(2000),
		TotalBills:    model.Float(800),
	})
	if err != nil || !approx(r.RatioPct, 40) {
		t.Fatalf("IncomeFromAnalysis = %+v, %v", r, err)
	}
}

func TestOverview(t *testing.T) {
	a := model.SpendingAnalytics{
		Account:        "1234567891",
		TotalSpent:     model.Float(500),
		MonthlyAverage: 1000,
		TopCategories: []model.CategorySpend{
			{Category: "Food", TotalSpent: 300},
			{Category: "Travel", TotalSpent: 200},
		},
	}
	s, err := Overview(a)
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if s.Status != StatusOnTrack || !approx(s.SpendingRatio, 0.5) {
		t.Fatalf("status = %q ratio = %v", s.Status, s.SpendingRatio)
	}
	if !approx(s.Diversity, 0.2) || s.Tips[1] != "Try diversifying your spending categories" {
		t.Fatalf("diversity = %v tips = %v", s.Diversity, s.Tips)
	}

	a.MonthlyAverage = 0
	s, err = Overview(a)
	if err != nil {
		t.Fatal(err)
	}
	if s.SpendingRatio != 0 || s.Status != StatusOnTrack {
		t.Fatalf("zero average should give ratio 0, got %+v", s)
	}

	a.MonthlyAverage = -250
	s, err = Overview(a)
	if err != nil {
		t.Fatal(err)
	}
	if s.SpendingRatio != 0 || s.MonthlyAverage != -250 {
		t.Fatalf("negative average should give ratio 0, got %+v", s)
	}

	a.TotalSpent = nil
	if _, err := Overview(a); err == nil {
		t.Fatal("expected error for missing total_spent")
	}
}

func TestInsights(t *testing.T) {
	now := time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)
	current := []model.Transaction{
		txn("Food", "Chipotle", -15, now),
		txn("Food", "Chipotle", -15, now),
		txn("Food", "Starbucks", -6, now),
		txn("Food", "Mystery Diner", -40, now),
		txn("Rent", "Landlord", -2200, now),
		txn("Travel", "Uber", -25, now),
	}
	previous := []model.Transaction{
		txn("Travel", "Uber", -80, now.AddDate(0, -1, 0)),
	}

	got := Insights(current, previous)
	if len(got) != 2 {
		t.Fatalf("got %d insights, want 2: %+v", len(got), got)
	}
	food := got[0]
	if food.Category != "Food" || !approx(food.TotalSpent, 76) || food.Frequency != 4 {
		t.Fatalf("food = %+v", food)
	}
	if food.Merchants[0].Name != "Mystery Diner" || food.Merchants[0].Emoji != "🏪" {
		t.Fatalf("top merchant = %+v", food.Merchants[0])
	}
	if food.Merchants[1].Name != "Chipotle" || food.Merchants[1].Count != 2 || food.Merchants[1].Emoji != "🌯" {
		t.Fatalf("second merchant = %+v", food.Merchants[1])
	}
	if len(food.TopMerchants(3)) != 3 {
		t.Fatal("TopMerchants(3) should cap at three")
	}
	if food.Trend != TrendIncreasing || food.Indicator != IndicatorLow {
		t.Fatalf("food trend/indicator = %s/%s", food.Trend, food.Indicator)
	}
	if got[1].Trend != TrendDecreasing {
		t.Fatalf("travel trend = %s", got[1].Trend)
	}
}

func TestSpendingIndicator(t *testing.T) {
	tests := []struct {
		amount float64
		freq   int
		want   Indicator
	}{
		{1500, 25, IndicatorHigh},
		{1500, 5, IndicatorNormal},
		{100, 5, IndicatorLow},
		{600, 5, IndicatorNormal},
	}
	for _, tt := range tests {
		if got := SpendingIndicator(tt.amount, tt.freq); got != tt.want {
			t.Errorf("SpendingIndicator(%v, %d) = %s, want %s", tt.amount, tt.freq, got, tt.want)
		}
	}
}

func TestSplitPeriod(t *testing.T) {
	now := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	window := 30 * 24 * time.Hour
	txns := []model.Transaction{
		txn("Food", "a", -1, now.AddDate(0, 0, -1)),
		txn("Food", "b", -1, now.AddDate(0, 0, -40)),
		txn("Food", "c", -1, now.AddDate(0, 0, -90)),
		txn("Food", "d", -1, now.AddDate(0, 0, 2)),
	}
	cur, prev := SplitPeriod(txns, now, window)
	if len(cur) != 1 || cur[0].Merchant != "a" {
		t.Fatalf("current = %+v", cur)
	}
	if len(prev) != 1 || prev[0].Merchant != "b" {
		t.Fatalf("previous = %+v", prev)
	}
}

func TestBills(t *testing.T) {
	now := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	txns := []model.Transaction{
		txn("Rent", "Landlord", -2200, now.AddDate(0, 0, -14)),
		txn("Internet", "Comcast", -80, now.AddDate(0, 0, 5)),
		txn("Food", "Chipotle", -15, now),
		{Category: "Phone Bill", Merchant: "Verizon", Amount: -60, Date: model.NewDate(now.AddDate(0, 0, -3)), Status: "Overdue"},
	}
	s := Bills(txns, now)
	if len(s.Bills) != 3 || !approx(s.Total, 2340) {
		t.Fatalf("bills = %+v", s)
	}
	if s.Paid != 1 || s.Upcoming != 1 || s.Overdue != 1 {
		t.Fatalf("counts paid=%d upcoming=%d overdue=%d", s.Paid, s.Upcoming, s.Overdue)
	}
	if s.Bills[0].Merchant != "Landlord" || s.Bills[2].Status != BillUpcoming {
		t.Fatalf("order/status wrong: %+v", s.Bills)
	}
}

func TestBillGridAndNavigation(t *testing.T) {
	mar := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	bills := []model.AnalyzedBill{
		{Merchant: "Landlord", Amount: -1000, Date: model.NewDate(mar)},
		{Merchant: "Comcast", Amount: 100, Date: model.NewDate(mar.AddDate(0, 0, 5))},
		{Merchant: "Netflix", Amount: 15, Date: model.NewDate(mar.AddDate(0, 1, 0))},
	}
	grid := BillGrid(bills, 2200)
	if len(grid) != 12 {
		t.Fatalf("grid has %d months", len(grid))
	}
	m := grid[2]
	if m.Name() != "March" || len(m.Bills) != 2 || !approx(m.Total, 1100) || !approx(m.IncomePct, 50) {
		t.Fatalf("march = %+v", m)
	}
	if !approx(m.BillPct(m.Bills[1]), 100.0/22) {
		t.Fatalf("bill pct = %v", m.BillPct(m.Bills[1]))
	}
	if grid[0].Income != 0 || grid[0].IncomePct != 0 {
		t.Fatalf("empty month should carry zero income: %+v", grid[0])
	}

	if NavigateMonth(0, -1) != 11 || NavigateMonth(11, 1) != 0 || NavigateMonth(5, 14) != 7 {
		t.Fatal("NavigateMonth does not wrap")
	}
}

func TestPartOfDay(t *testing.T) {
	tests := map[int]string{
		4: Night, 5: Morning, 11: Morning, 12: Afternoon, 16: Afternoon,
		17: Evening, 20: Evening, 21: Night, 0: Night,
	}
	for h, want := range tests {
		if got := PartOfDay(h); got != want {
			t.Errorf("PartOfDay(%d) = %s, want %s", h, got, want)
		}
	}
}

func TestPatternsFromCells(t *testing.T) {
	p := model.SpendingPatterns{Cells: []model.TimePattern{
		{TimeOfDay: "08:00", DayOfWeek: "Monday", Frequency: 2, AverageSpend: 5},
		{TimeOfDay: "13:00", DayOfWeek: "monday", Frequency: 1, AverageSpend: 30},
		{TimeOfDay: "23:00", DayOfWeek: "Sat", Frequency: 1, AverageSpend: 10},
	}}
	b := Patterns(p)
	if b.TimeOfDay[0].Amount != 10 || b.TimeOfDay[1].Amount != 30 || b.TimeOfDay[3].Amount != 10 {
		t.Fatalf("time of day = %+v", b.TimeOfDay)
	}
	if b.DayOfWeek[0].Amount != 40 || b.DayOfWeek[5].Amount != 10 {
		t.Fatalf("day of week = %+v", b.DayOfWeek)
	}
	if b.PeakTime() != Afternoon || b.PeakDay() != "Monday" {
		t.Fatalf("peaks = %s/%s", b.PeakTime(), b.PeakDay())
	}
}

func TestPatternsFromBuckets(t *testing.T) {
	p := model.SpendingPatterns{
		Buckets:   &model.TimeOfDayBuckets{Morning: 250, Afternoon: 350, Evening: 450, Night: 150},
		DayOfWeek: map[string]float64{"Friday": 600, "Monday": 300},
		RecurringTransactions: []model.RecurringTransaction{
			{Merchant: "Spotify", Amount: 9.99}, {Merchant: "Gym", Amount: 49.99},
		},
	}
	b := Patterns(p)
	if b.PeakTime() != Evening || b.PeakDay() != "Friday" {
		t.Fatalf("peaks = %s/%s", b.PeakTime(), b.PeakDay())
	}
	if b.Recurring[0].Merchant != "Gym" {
		t.Fatalf("recurring not sorted: %+v", b.Recurring)
	}
	if b.DayOfWeek[1].Amount != 0 || b.DayOfWeek[1].Label != "Tuesday" {
		t.Fatalf("missing weekdays should be zero-filled: %+v", b.DayOfWeek[1])
	}
}

func TestRecurring(t *testing.T) {
	start := time.Date(2025, 1, 5, 9, 0, 0, 0, time.UTC)
	var txns []model.Transaction
	for i := 0; i < 3; i++ {
		txns = append(txns, txn("Entertainment", "Netflix", -15.99, start.AddDate(0, i, 0)))
	}
	txns = append(txns, txn("Food", "Chipotle", -12, start), txn("Income", "Employer", 2500, start))

	got := Recurring(txns)
	if len(got) != 1 || got[0].Merchant != "Netflix" || got[0].Frequency != "Monthly" || got[0].Amount != 15.99 {
		t.Fatalf("Recurring = %+v", got)
	}
}

func TestPredictions(t *testing.T) {
	got := Predictions([]model.PredictedSpend{
		{Category: "Food", Likelihood: 0.4},
		{Category: "Rent", Likelihood: 0.99},
		{Category: "Travel", Likelihood: 0.85, Amount: -300},
		{Category: "Coffee", Likelihood: 1.7},
	})
	if len(got) != 3 {
		t.Fatalf("got %d predictions", len(got))
	}
	if got[0].Category != "Coffee" || got[0].Likelihood != 1 || got[0].Label != "100%" {
		t.Fatalf("first = %+v", got[0])
	}
	if !got[1].High || got[1].Amount != 300 || got[2].High {
		t.Fatalf("flags = %+v", got)
	}
	if CountHigh(got) != 2 {
		t.Fatalf("CountHigh = %d", CountHigh(got))
	}
}

func TestForecast(t *testing.T) {
	now := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	var txns []model.Transaction
	for i := 0; i < 30; i++ {
		txns = append(txns, txn("Coffee Shop", "Starbucks", -6, now.AddDate(0, 0, -i*2-1)))
	}
	txns = append(txns,
		txn("Travel", "Delta Airlines", -400, now.AddDate(0, -1, 0)),
		txn("Travel", "Delta Airlines", -400, now.AddDate(0, -2, 0)),
	)

	preds := Forecast(txns, now)
	if len(preds) != 1 || preds[0].Category != "Coffee Shop" {
		t.Fatalf("Forecast = %+v", preds)
	}
	p := preds[0]
	// 30 charges in 180 days: freq term 1, size term 0.006
	if !approx(p.Likelihood, 0.503) {
		t.Fatalf("likelihood = %v", p.Likelihood)
	}
	if p.Warning != "" {
		t.Fatalf("unexpected warning %q", p.Warning)
	}
	if want := now.AddDate(0, 0, 1); !p.PredictedDate.Equal(want) {
		t.Fatalf("predicted date = %v, want %v", p.PredictedDate.Time, want)
	}
}

func TestPercentGuards(t *testing.T) {
	if Percent(5, 0) != 0 || Percent(math.NaN(), 10) != 0 || Percent(5, math.Inf(1)) != 0 {
		t.Fatal("Percent must guard zero and non-finite inputs")
	}
	if Ratio(1, 0) != 0 {
		t.Fatal("Ratio must guard zero divisor")
	}
	if Sum(0.1, 0.2) != 0.3 {
		t.Fatalf("Sum(0.1, 0.2) = %v", Sum(0.1, 0.2))
	}
}
