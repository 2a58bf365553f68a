package cmd

import (
	"fmt"

	"github.com/theirongolddev/finburn/internal/analytics"
	"github.com/theirongolddev/finburn/internal/api"
	"github.com/theirongolddev/finburn/internal/cli"
	"github.com/theirongolddev/finburn/internal/pipeline"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Spending overview with top categories, bills and income",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	d := loadWithSpinner(s, "Loading spending overview...", func() *pipeline.Dashboard {
		return s.svc.LoadResources(ctx,
			api.ResourceOverview,
			api.ResourceCategoryTotals,
			api.ResourceBillsIncome,
			api.ResourcePredictions,
			api.ResourceTransactions,
		)
	})
	if err := failOnNoAccount(d); err != nil {
		return err
	}

	printTitle(fmt.Sprintf("SPENDING  %s", s.svc.Account()))

	if !widgetError(s, "Overview", d.Overview) {
		o := d.Overview.Data
		rows := [][]string{
			{"Total Spent", cli.FormatMoney(o.TotalSpent)},
			{"Monthly Average", cli.FormatMoney(o.MonthlyAverage)},
			{"Spending Ratio", cli.FormatRatio(o.SpendingRatio)},
			{"Active Categories", fmt.Sprintf("%d", o.ActiveCategories)},
			{"Diversity", cli.FormatRatio(o.Diversity)},
			{cli.Separator},
			{"Status", cli.Status(o.Status, o.OnTrack())},
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Metric", "Value"},
			Rows:    rows,
		}))
		for _, tip := range o.Tips {
			cli.Println(cli.Muted("• " + tip))
		}
		fmt.Println()
	}

	if !widgetError(s, "Categories", d.Categories) {
		printShares("Top Categories", "Category", analytics.Top(d.Categories.Data, 5))
	}

	if !widgetError(s, "Bills vs income", d.BillsIncome) {
		r := d.BillsIncome.Data.Ratio
		printRatio(r)
	}

	if d.Predictions.Ready() {
		if n := analytics.CountHigh(d.Predictions.Data); n > 0 {
			cli.Println(cli.Warning(fmt.Sprintf("%d high-likelihood spending predictions. See `finburn predictions`.", n)))
		}
	}
	if d.BillSchedule.Ready() && d.BillSchedule.Data.Overdue > 0 {
		cli.Println(cli.Warning(fmt.Sprintf("%d overdue bills. See `finburn bills`.", d.BillSchedule.Data.Overdue)))
	}
	return nil
}

// printShares renders a ranked share table with inline bars.
func printShares(title, label string, rows []analytics.CategoryShare) {
	if len(rows) == 0 {
		cli.Println(cli.Muted(title + ": nothing to show"))
		fmt.Println()
		return
	}
	out := make([][]string, 0, len(rows)+2)
	for _, r := range rows {
		out = append(out, []string{
			r.Category,
			cli.FormatMoney(r.Amount),
			cli.FormatPercent(r.Percentage),
			cli.RenderShareBar(r.Percentage, 20),
		})
	}
	out = append(out, []string{cli.Separator})
	out = append(out, []string{"Total", cli.FormatMoney(analytics.TotalOf(rows)), "", ""})

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   title,
		Headers: []string{label, "Amount", "Share", ""},
		Rows:    out,
	}))
	fmt.Println()
}

func printRatio(r analytics.BillsRatio) {
	rows := [][]string{
		{"Monthly Income", cli.FormatMoney(r.Income)},
		{"Bills", cli.FormatMoney(r.Bills)},
		{"Remaining", fmt.Sprintf("%s (%s)", cli.FormatMoney(r.Remaining), cli.FormatPercent(r.RemainingPct))},
		{cli.Separator},
		{"Bills / Income", cli.FormatPercent(r.RatioPct) + "  " + cli.RenderRatioBar(r.RatioPct, 20)},
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Bills vs Income",
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))
	if r.ExceedsIncome {
		cli.Println(cli.Warning("Bills exceed income this month."))
	}
	fmt.Println()
}
