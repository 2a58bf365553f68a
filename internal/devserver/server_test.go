package devserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/finburn/internal/api"
	"github.com/theirongolddev/finburn/internal/config"
	"github.com/theirongolddev/finburn/internal/model"
)

var fixtureNow = time.Date(2025, 6, 20, 15, 0, 0, 0, time.UTC)

func fixtures() Fixtures {
	return Generate(42, "acct", fixtureNow)
}

func get(t *testing.T, f Fixtures, opts Options, target string) *httptest.ResponseRecorder {
	t.Helper()
	e := New(f, opts)
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return v
}

func TestGenerateIsDeterministic(t *testing.T) {
	a := Generate(7, "acct", fixtureNow)
	b := Generate(7, "acct", fixtureNow)
	if len(a.Transactions) == 0 || len(a.Transactions) != len(b.Transactions) {
		t.Fatalf("lengths %d vs %d", len(a.Transactions), len(b.Transactions))
	}
	for i := range a.Transactions {
		if a.Transactions[i].Amount != b.Transactions[i].Amount || a.Transactions[i].Merchant != b.Transactions[i].Merchant {
			t.Fatalf("txn %d differs", i)
		}
	}
	if a.Transactions[0].TransactionID != "TXN00001" {
		t.Fatalf("first id = %s", a.Transactions[0].TransactionID)
	}
	for i := 1; i < len(a.Transactions); i++ {
		if a.Transactions[i].Date.Before(a.Transactions[i-1].Date.Time) {
			t.Fatal("transactions not in date order")
		}
		if a.Transactions[i].Date.After(fixtureNow) {
			t.Fatal("transaction dated after now")
		}
	}

	var rent, salary int
	for _, txn := range a.Transactions {
		switch txn.Category {
		case "Rent":
			rent++
			if -txn.Amount < 2200 || -txn.Amount > 2300 {
				t.Fatalf("rent out of range: %v", txn.Amount)
			}
		case "Income":
			salary++
			if txn.Amount != 2500 {
				t.Fatalf("salary = %v", txn.Amount)
			}
		}
	}
	if rent < 12 || salary < 24 {
		t.Fatalf("rent=%d salary=%d", rent, salary)
	}
}

func TestClientReadsEveryEndpoint(t *testing.T) {
	srv := httptest.NewServer(New(fixtures(), Options{}))
	defer srv.Close()

	cfg := config.DefaultConfig().API
	cfg.BaseURL = srv.URL
	cfg.AccountID = "acct"
	cfg.RatePerSec = 0
	c, err := api.New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	for _, r := range api.Resources {
		q := url.Values{}
		switch r {
		case api.ResourceBills, api.ResourceBillsIncome, api.ResourceIncome, api.ResourceMonthlyIncome:
			q, _ = api.MonthQuery(2025, 6)
		}
		if _, err := c.Raw(ctx, r, q); err != nil {
			t.Fatalf("%s: %v", r, err)
		}
	}

	overview, err := c.GetSpendingOverview(ctx)
	if err != nil || overview.TotalSpent == nil || *overview.TotalSpent <= 0 {
		t.Fatalf("overview = %+v, %v", overview, err)
	}
	if _, err := c.GetBillsIncomeAnalysis(ctx, 2025, 6); err != nil {
		t.Fatalf("bills-income: %v", err)
	}
	preds, err := c.GetSpendingPredictions(ctx)
	if err != nil || len(preds) == 0 {
		t.Fatalf("predictions = %v, %v", preds, err)
	}
	patterns, err := c.GetSpendingPatterns(ctx)
	if err != nil || len(patterns.Cells) == 0 {
		t.Fatalf("patterns = %+v, %v", patterns, err)
	}
	txns, err := c.GetTransactions(ctx)
	if err != nil || len(txns) == 0 {
		t.Fatalf("transactions = %d, %v", len(txns), err)
	}
}

func TestBillsIncomeFigures(t *testing.T) {
	rec := get(t, fixtures(), Options{}, "/api/analysis/bills-income/acct?year=2025&month=5")
	a := decodeBody[model.BillsIncomeAnalysis](t, rec)
	if a.MonthlyIncome == nil || *a.MonthlyIncome != 5000 {
		t.Fatalf("income = %v", a.MonthlyIncome)
	}
	if a.TotalBills == nil || *a.TotalBills <= 2200 {
		t.Fatalf("bills = %v", a.TotalBills)
	}
	if a.MonthName != "May" || len(a.Bills) < 5 {
		t.Fatalf("analysis = %+v", a)
	}
}

func TestMonthValidation(t *testing.T) {
	for _, q := range []string{"month=13", "month=0", "month=abc"} {
		rec := get(t, fixtures(), Options{}, "/api/bills/acct?"+q)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status %d", q, rec.Code)
		}
		body := decodeBody[map[string]string](t, rec)
		if body["error"] != "Invalid month parameter (must be 1-12)" {
			t.Fatalf("%s: error = %q", q, body["error"])
		}
	}

	rec := get(t, fixtures(), Options{}, "/api/income/acct?year=nope")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad year status = %d", rec.Code)
	}
}

func TestUnknownAccount(t *testing.T) {
	rec := get(t, fixtures(), Options{}, "/api/user/someone-else")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestFailPath(t *testing.T) {
	opts := Options{FailPath: "/api/predictions/"}
	if rec := get(t, fixtures(), opts, "/api/predictions/acct"); rec.Code != http.StatusInternalServerError {
		t.Fatalf("forced path status = %d", rec.Code)
	}
	if rec := get(t, fixtures(), opts, "/api/patterns/acct"); rec.Code != http.StatusOK {
		t.Fatalf("other path status = %d", rec.Code)
	}
}

func TestRateLimiter(t *testing.T) {
	e := New(fixtures(), Options{RatePerSec: 1, Burst: 1})
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/user/acct", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v", codes)
	}
}

func TestOverviewTimeRange(t *testing.T) {
	f := fixtures()
	month := decodeBody[model.SpendingAnalytics](t, get(t, f, Options{}, "/api/analytics/acct?timeRange=1%20month"))
	quarter := decodeBody[model.SpendingAnalytics](t, get(t, f, Options{}, "/api/analytics/acct?timeRange=3%20months"))
	if month.TotalSpent == nil || quarter.TotalSpent == nil || *quarter.TotalSpent <= *month.TotalSpent {
		t.Fatalf("month=%v quarter=%v", month.TotalSpent, quarter.TotalSpent)
	}
	for _, c := range month.TopCategories {
		if c.Category == "Rent" || c.Category == "Income" {
			t.Fatalf("excluded category in top list: %s", c.Category)
		}
	}

	rec := get(t, f, Options{}, "/api/analytics/acct?timeRange=forever")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad range status = %d", rec.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	rec := get(t, fixtures(), Options{}, "/health")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Header().Get("X-Request-Id")) == "" {
		t.Fatalf("status=%d request id=%q", rec.Code, rec.Header().Get("X-Request-Id"))
	}
}
