package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/theirongolddev/finburn/internal/tui/theme"
)

func init() {
	// Force TrueColor output so ANSI codes are generated in tests
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestCardRowBackgroundFill(t *testing.T) {
	theme.SetActive("flexoki-dark")

	shortCard := ContentCard("Short", "Content", 22)
	tallCard := ContentCard("Tall", "Line 1\nLine 2\nLine 3\nLine 4\nLine 5", 22)

	shortLines := len(strings.Split(shortCard, "\n"))
	tallLines := len(strings.Split(tallCard, "\n"))
	if shortLines >= tallLines {
		t.Fatal("test setup error: short card should be shorter than tall card")
	}

	joined := CardRow([]string{tallCard, shortCard})
	lines := strings.Split(joined, "\n")
	if len(lines) != tallLines {
		t.Fatalf("joined height = %d, want %d", len(lines), tallLines)
	}

	for i := shortLines; i < len(lines); i++ {
		if !strings.Contains(lines[i], "\x1b[") {
			t.Errorf("line %d has no ANSI codes, padding would show unstyled", i)
		}
	}
}

func TestCardRowWidthConsistency(t *testing.T) {
	theme.SetActive("flexoki-dark")

	shortCard := ContentCard("Short", "A", 30)
	tallCard := ContentCard("Tall", "A\nB\nC\nD\nE\nF", 20)

	joined := CardRow([]string{tallCard, shortCard})
	lines := strings.Split(joined, "\n")

	want := lipgloss.Width(lines[0])
	for i, line := range lines {
		if w := lipgloss.Width(line); w != want {
			t.Errorf("line %d width = %d, want %d", i, w, want)
		}
	}
}

func TestWidgetCardStates(t *testing.T) {
	theme.SetActive("flexoki-dark")

	loading := WidgetCard("Bills", WidgetLoading, "*", "", "body", 40)
	if !strings.Contains(loading, "Loading") || strings.Contains(loading, "body") {
		t.Fatalf("loading card = %q", loading)
	}
	failed := WidgetCard("Bills", WidgetError, "*", "request failed: 500", "body", 40)
	if !strings.Contains(failed, "request failed: 500") || strings.Contains(failed, "body") {
		t.Fatalf("error card = %q", failed)
	}
	ready := WidgetCard("Bills", WidgetReady, "*", "", "body", 40)
	if !strings.Contains(ready, "body") || strings.Contains(ready, "Loading") {
		t.Fatalf("ready card = %q", ready)
	}
}

func TestLayoutRowSumsToTotal(t *testing.T) {
	for _, n := range []int{1, 3, 4, 7} {
		sum := 0
		for _, w := range LayoutRow(101, n) {
			sum += w
		}
		if sum != 101 {
			t.Fatalf("n=%d sum=%d", n, sum)
		}
	}
	if LayoutRow(10, 0) != nil {
		t.Fatal("n=0 should be nil")
	}
}
