package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/finburn/internal/analytics"
	"github.com/theirongolddev/finburn/internal/cli"
	"github.com/theirongolddev/finburn/internal/tui/components"
	"github.com/theirongolddev/finburn/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderPredictionsTab(cw int) string {
	d := a.board()
	return widgetCard(a, "Predicted Spending", d.Predictions, cw, func(preds []analytics.Prediction) string {
		return renderPredictions(preds, components.CardInnerWidth(cw))
	})
}

func renderPredictions(preds []analytics.Prediction, width int) string {
	if len(preds) == 0 {
		return emptyNote("No upcoming spending predicted")
	}
	t := theme.Active
	name := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	dim := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	warn := lipgloss.NewStyle().Foreground(t.Warning).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface)

	barW := max(min(width-64, 24), 6)
	var b strings.Builder
	if n := analytics.CountHigh(preds); n > 0 {
		b.WriteString(warn.Render(fmt.Sprintf("%d high-likelihood predictions", n)))
		b.WriteString("\n\n")
	}
	for i, p := range preds {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(name.Render(fmt.Sprintf("%-18s", truncStr(p.Category, 18))))
		b.WriteString(space.Render(" "))
		b.WriteString(components.LikelihoodBar(p.Likelihood, p.High, barW))
		b.WriteString(dim.Render(fmt.Sprintf(" %-10s %8s %12s",
			p.Label, cli.FormatDate(p.PredictedDate), cli.FormatMoney(p.Amount))))
		if p.Warning != "" {
			b.WriteString("\n")
			b.WriteString(warn.Render("  ⚠ " + truncStr(p.Warning, width-4)))
		}
	}
	return b.String()
}

func (a App) renderPatternsTab(cw int) string {
	d := a.board()
	halves := components.LayoutRow(cw, 2)
	if a.isCompactLayout() {
		halves = []int{cw, cw}
	}
	chartH := 8

	timeCard := widgetCard(a, "Time of Day", d.Patterns, halves[0], func(p analytics.PatternBuckets) string {
		return renderBuckets(p.TimeOfDay, p.PeakTime(), components.CardInnerWidth(halves[0]), chartH, theme.Active.Accent)
	})
	dayCard := widgetCard(a, "Day of Week", d.Patterns, halves[1], func(p analytics.PatternBuckets) string {
		return renderBuckets(p.DayOfWeek, p.PeakDay(), components.CardInnerWidth(halves[1]), chartH, theme.Active.Spend)
	})

	var b strings.Builder
	b.WriteString(joinCards(a, timeCard, dayCard))
	b.WriteString("\n")
	b.WriteString(widgetCard(a, "Recurring Charges", d.Patterns, cw, func(p analytics.PatternBuckets) string {
		return renderRecurring(p)
	}))
	return b.String()
}

func renderBuckets(buckets []analytics.Bucket, peak string, width, height int, color lipgloss.Color) string {
	if peak == "" {
		return emptyNote("No spending recorded")
	}
	t := theme.Active
	values := make([]float64, len(buckets))
	labels := make([]string, len(buckets))
	for i, bk := range buckets {
		values[i] = bk.Amount
		labels[i] = abbreviate(bk.Label)
	}
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	return components.BarChart(values, labels, color, width, height) + "\n" +
		label.Render("Peak ") + value.Render(peak)
}

func abbreviate(s string) string {
	if len(s) > 3 {
		return s[:3]
	}
	return s
}

func renderRecurring(p analytics.PatternBuckets) string {
	if len(p.Recurring) == 0 {
		return emptyNote("No recurring charges detected")
	}
	t := theme.Active
	name := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	dim := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder
	for i, r := range p.Recurring {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(name.Render(fmt.Sprintf("%s %-24s", analytics.MerchantEmoji(r.Merchant), truncStr(r.Merchant, 24))))
		b.WriteString(dim.Render(fmt.Sprintf(" %12s  %s", cli.FormatMoney(r.Amount), r.Frequency)))
	}
	return b.String()
}
