package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/finburn/internal/analytics"
	"github.com/theirongolddev/finburn/internal/cli"
	"github.com/theirongolddev/finburn/internal/pipeline"
	"github.com/theirongolddev/finburn/internal/tui/components"
	"github.com/theirongolddev/finburn/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderBillsTab(cw int) string {
	t := theme.Active
	d := a.board()

	month := "current month"
	if a.loader != nil {
		p := a.effectivePeriod()
		month = cli.FormatMonth(p.Year, p.Month)
	}
	nav := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Background)
	title := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Background).Bold(true)

	var b strings.Builder
	b.WriteString(nav.Render(" ◀ ") + title.Render(month) + nav.Render(" ▶   ←/→ change month"))
	b.WriteString("\n")

	halves := components.LayoutRow(cw, 2)
	if a.isCompactLayout() {
		halves = []int{cw, cw}
	}

	ratio := widgetCard(a, "Bills vs Income", d.BillsIncome, halves[0], func(v pipeline.BillsIncomeView) string {
		return renderBillsRatio(v.Ratio, components.CardInnerWidth(halves[0]))
	})
	merchants := widgetCard(a, "Bills by Merchant", d.Bills, halves[1], func(v pipeline.BillsView) string {
		if len(v.Merchants) == 0 {
			return emptyNote("No bills this month")
		}
		return categoryBars(v.Merchants, components.CardInnerWidth(halves[1])) + "\n\n" +
			totalLine(v.Summary.TotalSpent, len(v.Merchants))
	})
	b.WriteString(joinCards(a, ratio, merchants))
	b.WriteString("\n")

	b.WriteString(widgetCard(a, "Payments", d.BillsIncome, cw, func(v pipeline.BillsIncomeView) string {
		idx := d.Period.Month - 1
		if idx < 0 || idx > 11 {
			idx = v.Analysis.Month - 1
		}
		if idx < 0 || idx > 11 || len(v.Grid) != 12 {
			return emptyNote("No payments this month")
		}
		return renderMonthBills(v.Grid[idx])
	}))
	b.WriteString("\n")

	b.WriteString(widgetCard(a, "Bill Schedule", d.BillSchedule, cw, renderBillSchedule))
	return b.String()
}

func renderBillsRatio(r analytics.BillsRatio, width int) string {
	t := theme.Active
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	income := lipgloss.NewStyle().Foreground(t.Income).Background(t.Surface).Bold(true)
	spend := lipgloss.NewStyle().Foreground(t.Spend).Background(t.Surface).Bold(true)

	barW := max(width-22, 10)
	var b strings.Builder
	b.WriteString(label.Render("Income     ") + income.Render(cli.FormatMoney(r.Income)) + "\n")
	b.WriteString(label.Render("Bills      ") + spend.Render(cli.FormatMoney(r.Bills)) + "\n")
	b.WriteString(label.Render("Remaining  ") + income.Render(cli.FormatMoney(r.Remaining)) +
		label.Render(" ("+cli.FormatPercent(r.RemainingPct)+")") + "\n\n")
	b.WriteString(components.RatioBar("Bills", r.RatioPct, 8, barW))
	if r.ExceedsIncome {
		warn := lipgloss.NewStyle().Foreground(t.Spend).Background(t.Surface).Bold(true)
		b.WriteString("\n")
		b.WriteString(warn.Render("Bills exceed income this month"))
	}
	return b.String()
}

func renderMonthBills(m analytics.MonthBills) string {
	if len(m.Bills) == 0 {
		return emptyNote("No payments in " + m.Name())
	}
	t := theme.Active
	dim := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var b strings.Builder
	for _, bill := range m.Bills {
		b.WriteString(dim.Render(cli.FormatDate(bill.Date.Time) + "  "))
		b.WriteString(value.Render(fmt.Sprintf("%-24s %12s", truncStr(bill.Merchant, 24), cli.FormatMoney(bill.Amount))))
		b.WriteString(dim.Render(fmt.Sprintf("  %5.1f%% of income", m.BillPct(bill))))
		b.WriteString("\n")
	}
	b.WriteString(dim.Render(fmt.Sprintf("%d payments, %s total, %s of income",
		len(m.Bills), cli.FormatMoney(m.Total), cli.FormatPercent(m.IncomePct))))
	return b.String()
}

func renderBillSchedule(s analytics.BillsSummary) string {
	t := theme.Active
	dim := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(t.Income).Background(t.Surface).Render(fmt.Sprintf("%d paid", s.Paid)))
	b.WriteString(dim.Render("  ·  "))
	b.WriteString(lipgloss.NewStyle().Foreground(t.Warning).Background(t.Surface).Render(fmt.Sprintf("%d upcoming", s.Upcoming)))
	b.WriteString(dim.Render("  ·  "))
	b.WriteString(lipgloss.NewStyle().Foreground(t.Overdue).Background(t.Surface).Render(fmt.Sprintf("%d overdue", s.Overdue)))
	b.WriteString(dim.Render("  ·  total " + cli.FormatMoney(s.Total)))

	shown := 0
	for i := len(s.Bills) - 1; i >= 0 && shown < 8; i-- {
		bill := s.Bills[i]
		b.WriteString("\n")
		b.WriteString(dim.Render(cli.FormatDate(bill.DueDate) + "  "))
		b.WriteString(value.Render(fmt.Sprintf("%-24s %12s  ", truncStr(bill.Merchant, 24), cli.FormatMoney(bill.Amount))))
		b.WriteString(billStatusStyle(bill.Status).Render(string(bill.Status)))
		shown++
	}
	return b.String()
}

func billStatusStyle(s analytics.BillStatus) lipgloss.Style {
	t := theme.Active
	color := t.Income
	switch s {
	case analytics.BillUpcoming:
		color = t.Warning
	case analytics.BillOverdue:
		color = t.Overdue
	}
	return lipgloss.NewStyle().Foreground(color).Background(t.Surface)
}
