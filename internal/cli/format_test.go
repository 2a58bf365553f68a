package cli

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{5.5, "$5.50"},
		{1234.567, "$1,234.57"},
		{-12, "-$12.00"},
		{-0.001, "$0.00"},
		{1_000_000, "$1,000,000.00"},
		{math.NaN(), "$0.00"},
	}
	for _, tt := range tests {
		if got := FormatMoney(tt.in); got != tt.want {
			t.Errorf("FormatMoney(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatMoneyShort(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{56.78, "$56.78"},
		{250, "$250"},
		{1234, "$1.2K"},
		{45_000, "$45K"},
		{2_500_000, "$2.5M"},
		{-1500, "-$1.5K"},
	}
	for _, tt := range tests {
		if got := FormatMoneyShort(tt.in); got != tt.want {
			t.Errorf("FormatMoneyShort(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-4321, "-4,321"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPercentAndDelta(t *testing.T) {
	if got := FormatPercent(61.538); got != "61.5%" {
		t.Fatalf("FormatPercent = %q", got)
	}
	if got := FormatPercent(math.Inf(1)); got != "0.0%" {
		t.Fatalf("FormatPercent(inf) = %q", got)
	}
	if got := FormatRatio(0.25); got != "25.0%" {
		t.Fatalf("FormatRatio = %q", got)
	}
	if got := FormatDelta(150, 100); got != "+$50.00" {
		t.Fatalf("FormatDelta up = %q", got)
	}
	if got := FormatDelta(80, 100); got != "-$20.00" {
		t.Fatalf("FormatDelta down = %q", got)
	}
}

func TestFormatDates(t *testing.T) {
	if got := FormatDate(time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC)); got != "Mar 07" {
		t.Fatalf("FormatDate = %q", got)
	}
	if got := FormatDate(time.Time{}); got != "—" {
		t.Fatalf("FormatDate(zero) = %q", got)
	}
	if got := FormatMonth(2025, 3); got != "March 2025" {
		t.Fatalf("FormatMonth = %q", got)
	}
	if got := FormatMonth(0, 0); got != "current month" {
		t.Fatalf("FormatMonth(0,0) = %q", got)
	}
}

func TestRenderTableSeparatorAndAlignment(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Category", "Amount"},
		Rows: [][]string{
			{"Food", "$12.00"},
			{Separator},
			{"Total", "$1,012.00"},
		},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// top, header, rule, row, separator, row, bottom
	if len(lines) != 7 {
		t.Fatalf("got %d lines:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[3], "Food    ") {
		t.Fatalf("first column not left-aligned: %q", lines[3])
	}
	if !strings.Contains(lines[3], "   $12.00") {
		t.Fatalf("amount not right-aligned: %q", lines[3])
	}
	if !strings.Contains(lines[4], "┼") {
		t.Fatalf("separator row not rendered as rule: %q", lines[4])
	}
}

func TestRenderTableEmpty(t *testing.T) {
	if got := RenderTable(Table{}); got != "" {
		t.Fatalf("empty table = %q", got)
	}
}

func TestRenderBars(t *testing.T) {
	if got := strings.Count(RenderShareBar(50, 10), "█"); got != 5 {
		t.Fatalf("share bar filled = %d", got)
	}
	if got := strings.Count(RenderShareBar(250, 10), "█"); got != 10 {
		t.Fatalf("share bar clamp = %d", got)
	}
	if got := strings.Count(RenderRatioBar(130, 8), "█"); got != 8 {
		t.Fatalf("ratio bar clamp = %d", got)
	}
	if RenderRatioBar(50, 0) != "" {
		t.Fatal("zero width should be empty")
	}
}

func TestRenderSparkline(t *testing.T) {
	got := []rune(RenderSparkline([]float64{0, 5, 10}))
	if len(got) != 3 || got[0] != '▁' || got[2] != '█' {
		t.Fatalf("sparkline = %q", string(got))
	}
	if RenderSparkline(nil) != "" {
		t.Fatal("nil series should be empty")
	}
}

func TestConsoleQuiet(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleTo(&buf, true)
	c.Info("hidden %d", 1)
	c.Success("hidden")
	c.Start("spin").Stop()
	if buf.Len() != 0 {
		t.Fatalf("quiet console wrote %q", buf.String())
	}
	c.Warn("stale data for %s", "bills")
	if !strings.Contains(buf.String(), "stale data for bills") {
		t.Fatalf("warning missing: %q", buf.String())
	}
}
