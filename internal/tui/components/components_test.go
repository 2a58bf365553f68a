package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/theirongolddev/finburn/internal/tui/theme"
)

func TestCounterReachesTarget(t *testing.T) {
	c := NewCounter()
	c.SetTarget(1234.56)

	steps := 0
	prev := c.Value()
	for c.Step() {
		steps++
		if steps > 2000 {
			t.Fatalf("counter still moving after %d steps at %v", steps, c.Value())
		}
		if c.Value() < prev-0.01 {
			t.Fatalf("critically damped counter went backwards: %v -> %v", prev, c.Value())
		}
		prev = c.Value()
	}
	if c.Value() != 1234.56 || !c.Done() {
		t.Fatalf("value = %v, done = %v", c.Value(), c.Done())
	}
	if steps < 5 {
		t.Fatalf("counter finished in %d steps, expected an animation", steps)
	}
}

func TestCounterJump(t *testing.T) {
	c := NewCounter()
	c.Jump(42)
	if c.Value() != 42 || c.Step() {
		t.Fatalf("jump value = %v", c.Value())
	}
}

func TestHBarListScalesToLeader(t *testing.T) {
	theme.SetActive("terminal")
	out := HBarList([]Bar{
		{Label: "Food", Value: "$500.00", Pct: 62.5},
		{Label: "Transport", Value: "$200.00", Pct: 25},
	}, 60)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d", len(lines))
	}
	first := strings.Count(lines[0], "█")
	second := strings.Count(lines[1], "░")
	if first == 0 || strings.Contains(lines[0], "░") {
		t.Fatalf("leader should fill the track: %q", lines[0])
	}
	if second == 0 {
		t.Fatalf("second bar should be partial: %q", lines[1])
	}
	if !strings.Contains(lines[0], "62.5%") {
		t.Fatalf("missing percentage: %q", lines[0])
	}
	if HBarList(nil, 40) != "" {
		t.Fatal("empty list should render nothing")
	}
}

func TestRatioBarColor(t *testing.T) {
	theme.SetActive("flexoki-dark")
	th := theme.Active
	if ColorForRatio(40) != th.Income || ColorForRatio(75) != th.Warning || ColorForRatio(120) != th.Spend {
		t.Fatal("unexpected ratio colors")
	}
	if !strings.Contains(RatioBar("Bills", 40, 8, 20), "40.0%") {
		t.Fatal("ratio bar missing label")
	}
}

func TestTabVisualWidthMatchesRender(t *testing.T) {
	theme.SetActive("flexoki-dark")
	for active := range Tabs {
		total := 0
		for i, tab := range Tabs {
			total += TabVisualWidth(tab, i == active)
		}
		total += len(Tabs) - 1 // separators
		bar := RenderTabBar(active, total)
		if w := lipgloss.Width(bar); w != total {
			t.Fatalf("active=%d rendered width %d, want %d", active, w, total)
		}
	}
}

func TestTabIdxByKey(t *testing.T) {
	if TabIdxByKey('b') != 3 || TabIdxByKey('x') != len(Tabs)-1 || TabIdxByKey('z') != -1 {
		t.Fatal("unexpected tab key mapping")
	}
}
