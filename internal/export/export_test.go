package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/theirongolddev/finburn/internal/analytics"
	"github.com/theirongolddev/finburn/internal/api"
	"github.com/theirongolddev/finburn/internal/pipeline"
)

var generated = time.Date(2025, 3, 20, 14, 5, 9, 0, time.UTC)

func sampleReport() Report {
	return Report{
		Account:     "acct",
		GeneratedAt: generated,
		Overview: &analytics.OverviewStats{
			Account: "acct", TotalSpent: 812.5, MonthlyAverage: 1000, SpendingRatio: 0.81,
			ActiveCategories: 4, Status: analytics.StatusHighSpending,
			Tips: []string{"Consider reviewing your discretionary spending"},
		},
		Categories: []analytics.CategoryShare{
			{Category: "Food", Amount: 500, Percentage: 61.5},
			{Category: "Transport", Amount: 312.5, Percentage: 38.5},
		},
		BillsRatio: &analytics.BillsRatio{Income: 2000, Bills: 800, Remaining: 1200, RatioPct: 40, RemainingPct: 60},
		Predictions: []analytics.Prediction{
			{Category: "Food", Likelihood: 0.9, Label: "90%", Amount: 45, PredictedDate: generated.AddDate(0, 0, 3), High: true},
		},
		Errors: map[string]string{"patterns": "boom"},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"csv", FormatCSV, true},
		{" JSON ", FormatJSON, true},
		{"yml", FormatYAML, true},
		{"pdf", FormatPDF, true},
		{"xlsx", "", false},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestWriteUsesTimestampedName(t *testing.T) {
	dir := t.TempDir()
	for _, f := range Formats {
		path, err := Write(sampleReport(), f, dir, "spend")
		if err != nil {
			t.Fatalf("Write(%s): %v", f, err)
		}
		want := filepath.Join(dir, "spend_20250320_140509."+string(f))
		if path != want {
			t.Fatalf("path = %s, want %s", path, want)
		}
		info, err := os.Stat(path)
		if err != nil || info.Size() == 0 {
			t.Fatalf("%s not written: %v", path, err)
		}
	}
}

func TestCSVRows(t *testing.T) {
	dir := t.TempDir()
	path, err := Write(sampleReport(), FormatCSV, dir, "")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(filepath.Base(path), "finburn_report_") {
		t.Fatalf("default base not used: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(rows[0], ",") != "section,name,value,percentage,detail" {
		t.Fatalf("header = %v", rows[0])
	}

	var food []string
	for _, r := range rows {
		if r[0] == "category" && r[1] == "Food" {
			food = r
		}
	}
	if food == nil || food[2] != "500.00" || food[3] != "61.5%" {
		t.Fatalf("food row = %v", food)
	}
}

func TestJSONAndYAMLRoundTrip(t *testing.T) {
	dir := t.TempDir()

	jp, err := Write(sampleReport(), FormatJSON, dir, "r")
	if err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(jp)
	var fromJSON Report
	if err := json.Unmarshal(data, &fromJSON); err != nil {
		t.Fatal(err)
	}
	if fromJSON.Overview == nil || fromJSON.Overview.TotalSpent != 812.5 || fromJSON.BillsRatio.RatioPct != 40 {
		t.Fatalf("json report = %+v", fromJSON)
	}

	yp, err := Write(sampleReport(), FormatYAML, dir, "r")
	if err != nil {
		t.Fatal(err)
	}
	data, _ = os.ReadFile(yp)
	var fromYAML map[string]any
	if err := yaml.Unmarshal(data, &fromYAML); err != nil {
		t.Fatal(err)
	}
	if fromYAML["account"] != "acct" {
		t.Fatalf("yaml account = %v", fromYAML["account"])
	}
	if !strings.Contains(string(data), "total_spent: 812.5") {
		t.Fatalf("yaml should use snake_case keys:\n%s", data)
	}
}

func TestPDFHeader(t *testing.T) {
	path, err := Write(sampleReport(), FormatPDF, t.TempDir(), "r")
	if err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("not a pdf: %q", data[:min(len(data), 8)])
	}
}

func TestFromDashboardSkipsFailedWidgets(t *testing.T) {
	d := pipeline.NewDashboard("acct", pipeline.Period{})
	d.Categories = pipeline.Widget[[]analytics.CategoryShare]{
		State: pipeline.StateReady,
		Data:  []analytics.CategoryShare{{Category: "Food", Amount: 10, Percentage: 100}},
	}
	d.Overview = pipeline.Widget[analytics.OverviewStats]{State: pipeline.StateError, Err: errors.New("down")}
	d.Predictions = pipeline.Widget[[]analytics.Prediction]{State: pipeline.StateError, Err: api.ErrMalformed}

	r := FromDashboard(d, generated)
	if r.Overview != nil || r.Predictions != nil {
		t.Fatalf("failed widgets exported: %+v", r)
	}
	if len(r.Categories) != 1 {
		t.Fatalf("categories = %+v", r.Categories)
	}
	if r.Errors[string(api.ResourceOverview)] != "down" || r.Errors[string(api.ResourcePredictions)] == "" {
		t.Fatalf("errors = %v", r.Errors)
	}
}
