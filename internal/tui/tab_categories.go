package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/finburn/internal/analytics"
	"github.com/theirongolddev/finburn/internal/cli"
	"github.com/theirongolddev/finburn/internal/model"
	"github.com/theirongolddev/finburn/internal/tui/components"
	"github.com/theirongolddev/finburn/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderCategoriesTab(cw int) string {
	d := a.board()
	inner := components.CardInnerWidth(cw)

	var b strings.Builder
	b.WriteString(widgetCard(a, "Spending by Category", d.Categories, cw, func(rows []analytics.CategoryShare) string {
		if len(rows) == 0 {
			return emptyNote("No categorized spending")
		}
		return categoryBars(rows, inner) + "\n\n" + totalLine(analytics.TotalOf(rows), len(rows))
	}))
	b.WriteString("\n")
	b.WriteString(widgetCard(a, "Top Categories (30 days)", d.TopCategories, cw, func(rows []analytics.CategoryShare) string {
		return categoryBars(rows, inner)
	}))
	return b.String()
}

func totalLine(total float64, n int) string {
	t := theme.Active
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	return label.Render("Total ") + value.Render(cli.FormatMoney(total)) +
		label.Render(fmt.Sprintf(" across %d categories", n))
}

func (a App) renderInsightsTab(cw int) string {
	d := a.board()

	var b strings.Builder
	b.WriteString(widgetCard(a, "Category Insights (30 days)", d.Insights, cw, func(rows []analytics.CategoryInsight) string {
		return renderCategoryInsights(rows, components.CardInnerWidth(cw))
	}))
	b.WriteString("\n")
	b.WriteString(widgetCard(a, "Observations", d.ServerInsights, cw, renderServerInsights))
	return b.String()
}

func renderCategoryInsights(rows []analytics.CategoryInsight, width int) string {
	if len(rows) == 0 {
		return emptyNote("No transactions in the last 30 days")
	}
	t := theme.Active
	head := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Bold(true)
	name := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	dim := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	b.WriteString(head.Render(fmt.Sprintf("%-18s %12s %6s  %-8s %-10s", "Category", "Spent", "Txns", "Level", "Trend")))
	for _, c := range rows {
		b.WriteString("\n")
		b.WriteString(name.Render(fmt.Sprintf("%-18s", truncStr(c.Category, 18))))
		b.WriteString(space.Render(" "))
		b.WriteString(dim.Render(fmt.Sprintf("%12s %6d  ", cli.FormatMoney(c.TotalSpent), c.Frequency)))
		b.WriteString(indicatorStyle(c.Indicator).Render(fmt.Sprintf("%-8s", c.Indicator)))
		b.WriteString(space.Render(" "))
		b.WriteString(dim.Render(trendLabel(c.Trend)))

		merchants := c.TopMerchants(3)
		if len(merchants) == 0 {
			continue
		}
		parts := make([]string, len(merchants))
		for i, m := range merchants {
			parts[i] = fmt.Sprintf("%s %s %s", m.Emoji, m.Name, cli.FormatMoneyShort(m.Amount))
		}
		b.WriteString("\n")
		b.WriteString(dim.Render(truncStr("   "+strings.Join(parts, "  ·  "), width)))
	}
	return b.String()
}

func indicatorStyle(ind analytics.Indicator) lipgloss.Style {
	t := theme.Active
	color := t.TextPrimary
	switch ind {
	case analytics.IndicatorHigh:
		color = t.Spend
	case analytics.IndicatorLow:
		color = t.Income
	}
	return lipgloss.NewStyle().Foreground(color).Background(t.Surface)
}

func trendLabel(tr analytics.Trend) string {
	switch tr {
	case analytics.TrendIncreasing:
		return "▲ " + string(tr)
	case analytics.TrendDecreasing:
		return "▼ " + string(tr)
	default:
		return "● " + string(tr)
	}
}

func renderServerInsights(r model.InsightsResponse) string {
	if len(r.Insights) == 0 {
		return emptyNote("Nothing to report")
	}
	t := theme.Active
	title := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	desc := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	dim := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder
	for i, in := range r.Insights {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(title.Render(in.Title))
		if in.Description != "" {
			b.WriteString("\n")
			b.WriteString(desc.Render(in.Description))
		}
		for _, datum := range in.Data {
			b.WriteString("\n")
			b.WriteString(dim.Render(fmt.Sprintf("  %-18s %12s %6.1f%%",
				datum.Category, cli.FormatMoney(datum.TotalSpent), float64(datum.Percentage))))
		}
	}
	return b.String()
}
