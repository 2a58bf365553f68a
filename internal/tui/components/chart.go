package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/finburn/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Sparkline renders a unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	peak := values[0]
	for _, v := range values[1:] {
		if v > peak {
			peak = v
		}
	}
	if peak == 0 {
		peak = 1
	}

	style := lipgloss.NewStyle().Foreground(color).Background(t.Surface)

	var buf strings.Builder
	buf.Grow(len(values) * 4) // UTF-8 block chars are up to 3 bytes
	for _, v := range values {
		idx := int(v / peak * float64(len(blocks)-1))
		if idx >= len(blocks) {
			idx = len(blocks) - 1
		}
		if idx < 0 {
			idx = 0
		}
		buf.WriteRune(blocks[idx]) //nolint:gosec // bounds checked above
	}

	return style.Render(buf.String())
}

// BarChart renders labelled vertical bars, one column group per bucket,
// against a dollar y-axis. Labels are centred under their bar.
func BarChart(values []float64, labels []string, color lipgloss.Color, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	if width < 15 || height < 3 {
		return Sparkline(values, color)
	}
	t := theme.Active

	peak := 0.0
	for _, v := range values {
		peak = math.Max(peak, v)
	}
	if peak == 0 {
		peak = 1
	}
	step := chartTickStep(peak)
	ceiling := math.Ceil(peak/step) * step
	ticks := max(int(math.Round(ceiling/step)), 1)
	for ticks > max(height/2, 2) {
		step *= 2
		ceiling = math.Ceil(peak/step) * step
		ticks = max(int(math.Round(ceiling/step)), 1)
	}
	rowsPerTick := max(height/ticks, 1)
	rows := rowsPerTick * ticks

	axisW := max(len(formatChartLabel(ceiling))+1, 4)
	n := len(values)
	barW := min(max((width-axisW-1)/n-1, 1), 8)

	bg := lipgloss.NewStyle().Background(t.Surface)
	axis := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	blocks := []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	var b strings.Builder
	for row := rows; row >= 1; row-- {
		top := ceiling * float64(row) / float64(rows)
		bottom := ceiling * float64(row-1) / float64(rows)
		barColor := color
		if float64(row)/float64(rows) > 0.8 {
			barColor = t.AccentBright
		}
		bar := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface)

		label := ""
		if row%rowsPerTick == 0 {
			label = formatChartLabel(step * float64(row/rowsPerTick))
		}
		b.WriteString(axis.Render(fmt.Sprintf("%*s│", axisW, label)))
		for _, v := range values {
			cell := " "
			switch {
			case v >= top:
				cell = "█"
			case v > bottom:
				idx := min(max(int((v-bottom)/(top-bottom)*8), 1), 8)
				cell = string(blocks[idx])
			}
			b.WriteString(bar.Render(strings.Repeat(cell, barW)))
			b.WriteString(bg.Render(" "))
		}
		b.WriteString("\n")
	}

	b.WriteString(axis.Render(fmt.Sprintf("%*s└", axisW, "0")))
	b.WriteString(axis.Render(strings.Repeat("─", n*(barW+1))))
	if len(labels) != n {
		return b.String()
	}
	b.WriteString("\n")
	b.WriteString(bg.Render(strings.Repeat(" ", axisW+1)))
	for _, l := range labels {
		l = truncate(l, barW)
		pad := barW - lipgloss.Width(l)
		b.WriteString(axis.Render(strings.Repeat(" ", pad/2) + l + strings.Repeat(" ", pad-pad/2+1)))
	}
	return b.String()
}

// chartTickStep computes a nice tick interval targeting ~5 ticks.
func chartTickStep(maxVal float64) float64 {
	if maxVal <= 0 {
		return 1
	}
	rough := maxVal / 5
	exp := math.Floor(math.Log10(rough))
	base := math.Pow(10, exp)
	frac := rough / base

	switch {
	case frac < 1.5:
		return base
	case frac < 3.5:
		return 2 * base
	default:
		return 5 * base
	}
}

func formatChartLabel(v float64) string {
	switch {
	case v >= 1e6:
		if v == math.Trunc(v/1e6)*1e6 {
			return fmt.Sprintf("$%.0fM", v/1e6)
		}
		return fmt.Sprintf("$%.1fM", v/1e6)
	case v >= 1e3:
		if v == math.Trunc(v/1e3)*1e3 {
			return fmt.Sprintf("$%.0fk", v/1e3)
		}
		return fmt.Sprintf("$%.1fk", v/1e3)
	case v >= 1:
		return fmt.Sprintf("$%.0f", v)
	default:
		return fmt.Sprintf("$%.2f", v)
	}
}

// Bar is one labelled row of a horizontal bar list.
type Bar struct {
	Label string
	Value string  // preformatted amount
	Pct   float64 // 0-100, share of the whole
}

// HBarList renders one bar per row, scaled to the largest percentage so the
// leading category fills the track. Colors cycle through the theme series.
func HBarList(bars []Bar, width int) string {
	if len(bars) == 0 {
		return ""
	}
	t := theme.Active

	labelW, valueW := 0, 0
	top := 0.0
	for _, b := range bars {
		labelW = max(labelW, lipgloss.Width(b.Label))
		valueW = max(valueW, lipgloss.Width(b.Value))
		top = max(top, b.Pct)
	}
	labelW = min(labelW, max(width/3, 8))
	if top <= 0 || math.IsNaN(top) {
		top = 1
	}

	trackW := width - labelW - valueW - 9 // gaps + "100.0%"
	if trackW < 4 {
		trackW = 4
	}

	labelStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	for i, bar := range bars {
		pct := bar.Pct
		if math.IsNaN(pct) || pct < 0 {
			pct = 0
		}
		filled := int(math.Round(pct / top * float64(trackW)))
		filled = min(max(filled, 0), trackW)
		barStyle := lipgloss.NewStyle().Foreground(t.SeriesColor(i)).Background(t.Surface)

		label := truncate(bar.Label, labelW)
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)))
		b.WriteString(space.Render(" "))
		b.WriteString(barStyle.Render(strings.Repeat("█", filled)))
		b.WriteString(emptyStyle.Render(strings.Repeat("░", trackW-filled)))
		b.WriteString(space.Render(" "))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%*s %6.1f%%", valueW, bar.Value, pct)))
		if i < len(bars)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
