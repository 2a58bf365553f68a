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

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	d := a.board()
	var b strings.Builder

	// Row 1: headline metrics
	if d.Overview.Ready() {
		o := d.Overview.Data
		statusColor := t.Income
		if !o.OnTrack() {
			statusColor = t.Warning
		}
		metrics := []components.Metric{
			{Label: "Total Spent", Value: cli.FormatMoney(a.totalCounter.Value()), Delta: "last month", Color: t.Spend},
			{Label: "Monthly Average", Value: cli.FormatMoney(a.averageCounter.Value()), Delta: fmt.Sprintf("%d active categories", o.ActiveCategories)},
			{Label: "Spending Ratio", Value: cli.FormatRatio(o.SpendingRatio), Delta: "of monthly average"},
			{Label: "Status", Value: o.Status, Delta: "diversity " + cli.FormatRatio(o.Diversity), Color: statusColor},
		}
		b.WriteString(components.MetricCardRow(metrics, cw))
	} else {
		b.WriteString(widgetCard(a, "Spending Overview", d.Overview, cw, nil))
	}
	b.WriteString("\n")

	// Row 2: top categories + tips
	halves := components.LayoutRow(cw, 2)
	if a.isCompactLayout() {
		halves = []int{cw, cw}
	}
	top := widgetCard(a, "Top Categories", d.Overview, halves[0], func(o analytics.OverviewStats) string {
		return categoryBars(analytics.Top(o.TopCategories, 5), components.CardInnerWidth(halves[0]))
	})
	tips := widgetCard(a, "Tips", d.Overview, halves[1], func(o analytics.OverviewStats) string {
		return renderTips(o.Tips)
	})
	b.WriteString(joinCards(a, top, tips))
	b.WriteString("\n")

	// Row 3: account + income
	account := widgetCard(a, "Account", d.User, halves[0], renderUser)
	income := widgetCard(a, "Income", d.Income, halves[1], func(m model.MonthlyIncome) string {
		label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
		value := lipgloss.NewStyle().Foreground(t.Income).Background(t.Surface).Bold(true)
		return label.Render(fmt.Sprintf("%s %d  ", m.MonthName, m.Year)) + value.Render(cli.FormatMoney(m.MonthlyIncome))
	})
	b.WriteString(joinCards(a, account, income))

	return b.String()
}

// joinCards lays two cards side by side, or stacks them in compact layouts.
func joinCards(a App, left, right string) string {
	if a.isCompactLayout() {
		return left + "\n" + right
	}
	return components.CardRow([]string{left, right})
}

func categoryBars(rows []analytics.CategoryShare, width int) string {
	if len(rows) == 0 {
		return emptyNote("No spending in this period")
	}
	bars := make([]components.Bar, len(rows))
	for i, r := range rows {
		bars[i] = components.Bar{Label: r.Category, Value: cli.FormatMoney(r.Amount), Pct: r.Percentage}
	}
	return components.HBarList(bars, width)
}

func renderTips(tips []string) string {
	t := theme.Active
	bullet := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	text := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	if len(tips) == 0 {
		return emptyNote("No tips right now")
	}
	lines := make([]string, len(tips))
	for i, tip := range tips {
		lines[i] = bullet.Render("• ") + text.Render(tip)
	}
	return strings.Join(lines, "\n")
}

func renderUser(u model.User) string {
	t := theme.Active
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	name := u.OwnerName
	if name == "" {
		name = u.AccountName
	}
	rows := [][2]string{
		{"Owner", name},
		{"Account", strings.TrimSpace(u.AccountName + " " + u.AccountType)},
		{"Bank", u.BankDetails.BankName},
		{"Balance", cli.FormatMoney(u.Balance.Current)},
		{"Available", cli.FormatMoney(u.Balance.Available)},
	}
	var b strings.Builder
	for i, r := range rows {
		if r[1] == "" {
			continue
		}
		if i > 0 && b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(label.Render(fmt.Sprintf("%-10s ", r[0])))
		b.WriteString(value.Render(r[1]))
	}
	return b.String()
}

func emptyNote(s string) string {
	t := theme.Active
	return lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Italic(true).Render(s)
}
