package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDateAcceptsLayouts(t *testing.T) {
	inputs := []string{
		`"2025-03-14"`,
		`"2025-03-14T09:30:00Z"`,
		`"2025-03-14T09:30:00"`,
		`"2025-03-14 09:30:00"`,
	}
	for _, in := range inputs {
		var d Date
		if err := json.Unmarshal([]byte(in), &d); err != nil {
			t.Fatalf("Unmarshal(%s): %v", in, err)
		}
		if d.Year() != 2025 || d.Month() != time.March || d.Day() != 14 {
			t.Fatalf("Unmarshal(%s) = %v", in, d.Time)
		}
	}

	var d Date
	if err := json.Unmarshal([]byte(`"14/03/2025"`), &d); err == nil {
		t.Fatal("expected error for unsupported layout")
	}
	if err := json.Unmarshal([]byte(`null`), &d); err != nil || !d.IsZero() {
		t.Fatalf("null should decode to zero date, got %v err=%v", d.Time, err)
	}
}

func TestFlexFloat(t *testing.T) {
	cases := map[string]float64{
		`12.5`:    12.5,
		`"12.5"`:  12.5,
		`"40.0%"`: 40,
		`""`:      0,
		`null`:    0,
	}
	for in, want := range cases {
		var f FlexFloat
		if err := json.Unmarshal([]byte(in), &f); err != nil {
			t.Fatalf("Unmarshal(%s): %v", in, err)
		}
		if float64(f) != want {
			t.Errorf("Unmarshal(%s) = %v, want %v", in, f, want)
		}
	}

	var f FlexFloat
	if err := json.Unmarshal([]byte(`"abc"`), &f); err == nil {
		t.Fatal("expected error for non-numeric string")
	}
}

func TestSpendingPatternsDecodesCellList(t *testing.T) {
	body := `[{"timeOfDay":"08:00","dayOfWeek":"Monday","frequency":3,"averageSpend":6.5}]`
	var p SpendingPatterns
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(p.Cells) != 1 || p.Cells[0].DayOfWeek != "Monday" || p.Buckets != nil {
		t.Fatalf("unexpected decode: %+v", p)
	}

	out, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if out[0] != '[' {
		t.Fatalf("cell list should marshal as array, got %s", out)
	}
}

func TestSpendingPatternsDecodesBuckets(t *testing.T) {
	body := `{"timeOfDay":{"morning":10,"afternoon":20,"evening":5,"night":1},
		"dayOfWeek":{"Monday":12.5},
		"recurringTransactions":[{"merchant":"Netflix","amount":15.99,"frequency":"monthly"}]}`
	var p SpendingPatterns
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if p.Buckets == nil || p.Buckets.Afternoon != 20 {
		t.Fatalf("buckets not decoded: %+v", p)
	}
	if len(p.RecurringTransactions) != 1 {
		t.Fatalf("recurring = %d, want 1", len(p.RecurringTransactions))
	}
}

func TestSpendingPatternsRejectsShapeless(t *testing.T) {
	var p SpendingPatterns
	if err := json.Unmarshal([]byte(`{"foo":1}`), &p); err == nil {
		t.Fatal("expected error for object without buckets")
	}
}

func TestBillsIncomeNormalize(t *testing.T) {
	flat := `{"monthlyIncome":2000,"totalBills":800,"bills":[],"year":2025,"month":3}`
	var a BillsIncomeAnalysis
	if err := json.Unmarshal([]byte(flat), &a); err != nil {
		t.Fatal(err)
	}
	if !a.Normalize() || *a.MonthlyIncome != 2000 {
		t.Fatalf("flat shape not recognised: %+v", a)
	}

	nested := `{"balance":{"monthlyIncome":2000,"totalBills":800},"bills":[]}`
	var b BillsIncomeAnalysis
	if err := json.Unmarshal([]byte(nested), &b); err != nil {
		t.Fatal(err)
	}
	if !b.Normalize() || *b.TotalBills != 800 || b.Balance != nil {
		t.Fatalf("nested shape not folded: %+v", b)
	}

	var c BillsIncomeAnalysis
	if err := json.Unmarshal([]byte(`{"bills":[]}`), &c); err != nil {
		t.Fatal(err)
	}
	if c.Normalize() {
		t.Fatal("empty analysis should not normalize")
	}
}

func TestValidateRequiresTotalSpent(t *testing.T) {
	var a SpendingAnalytics
	if err := json.Unmarshal([]byte(`{"account":"1234567891","top_categories":[]}`), &a); err != nil {
		t.Fatal(err)
	}
	if err := Validate(a); err == nil {
		t.Fatal("expected validation error for missing total_spent")
	}

	a.TotalSpent = Float(120)
	if err := Validate(&a); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateSlice(t *testing.T) {
	preds := []PredictedSpend{
		{Category: "Food", Likelihood: 0.5},
		{Category: "Travel", Likelihood: 1.5},
	}
	if err := Validate(preds); err == nil {
		t.Fatal("expected error for likelihood > 1")
	}
	if err := Validate(preds[:1]); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
