package components

import (
	"fmt"
	"math"

	"github.com/theirongolddev/finburn/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ColorForRatio grades a bills-to-income percentage: green under 50,
// orange up to 100, red beyond.
func ColorForRatio(pct float64) lipgloss.Color {
	t := theme.Active
	switch {
	case pct > 100:
		return t.Spend
	case pct > 50:
		return t.Warning
	default:
		return t.Income
	}
}

// RatioBar renders a labeled bar for a 0-100 percentage, such as bills
// against income. Values over 100 fill the bar and keep their label.
func RatioBar(label string, pct float64, labelW, barWidth int) string {
	t := theme.Active
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		pct = 0
	}
	color := ColorForRatio(pct)

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) +
		spaceStyle.Render(" ") +
		bar.ViewAs(clamp01(pct/100)) +
		spaceStyle.Render(" ") +
		pctStyle.Render(fmt.Sprintf("%5.1f%%", pct))
}

// LikelihoodBar renders a compact bar for a 0-1 prediction likelihood;
// likelihoods flagged high use the warning color.
func LikelihoodBar(likelihood float64, high bool, width int) string {
	t := theme.Active
	color := t.Accent
	if high {
		color = t.Warning
	}
	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(max(width, 4)),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)
	return bar.ViewAs(clamp01(likelihood))
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
