package cmd

import (
	"fmt"
	"time"

	"github.com/theirongolddev/finburn/internal/analytics"
	"github.com/theirongolddev/finburn/internal/api"
	"github.com/theirongolddev/finburn/internal/cli"
	"github.com/theirongolddev/finburn/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	flagBillsYear  int
	flagBillsMonth int
	flagBillsGrid  bool
)

var billsCmd = &cobra.Command{
	Use:   "bills",
	Short: "Bills for a month, measured against income",
	RunE:  runBills,
}

func init() {
	billsCmd.Flags().IntVar(&flagBillsYear, "year", 0, "Year (default: current)")
	billsCmd.Flags().IntVar(&flagBillsMonth, "month", 0, "Month 1-12 (default: current)")
	billsCmd.Flags().BoolVar(&flagBillsGrid, "grid", false, "Show the twelve-month payment grid")
	rootCmd.AddCommand(billsCmd)
}

// billsPeriod resolves --year/--month, filling a missing half from now.
func billsPeriod(now time.Time) (pipeline.Period, error) {
	if flagBillsYear == 0 && flagBillsMonth == 0 {
		return pipeline.Period{}, nil
	}
	p := pipeline.Period{Year: flagBillsYear, Month: flagBillsMonth}
	if p.Year == 0 {
		p.Year = now.Year()
	}
	if p.Month == 0 {
		p.Month = int(now.Month())
	}
	if _, err := api.MonthQuery(p.Year, p.Month); err != nil {
		return p, err
	}
	return p, nil
}

func runBills(cmd *cobra.Command, _ []string) error {
	period, err := billsPeriod(time.Now())
	if err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()
	s.svc.SetPeriod(period)

	ctx, cancel := commandContext(cmd)
	defer cancel()

	d := loadWithSpinner(s, "Loading bills...", func() *pipeline.Dashboard {
		return s.svc.LoadResources(ctx,
			api.ResourceBills,
			api.ResourceBillsIncome,
			api.ResourceTransactions,
		)
	})
	if err := failOnNoAccount(d); err != nil {
		return err
	}

	title := "BILLS  " + cli.FormatMonth(period.Year, period.Month)
	if d.Bills.Ready() && d.Bills.Data.Summary.MonthName != "" {
		title = fmt.Sprintf("BILLS  %s %d", d.Bills.Data.Summary.MonthName, d.Bills.Data.Summary.Year)
	}
	printTitle(title)

	if !widgetError(s, "Bills", d.Bills) {
		printShares("By Merchant", "Merchant", d.Bills.Data.Merchants)
	}

	if !widgetError(s, "Bills vs income", d.BillsIncome) {
		v := d.BillsIncome.Data
		printRatio(v.Ratio)

		month := period.Month
		if month == 0 {
			month = v.Analysis.Month
		}
		if month >= 1 && month <= 12 && len(v.Grid) == 12 {
			printMonthBills(v.Grid[month-1])
		}
		if flagBillsGrid {
			printBillGrid(v.Grid)
		}
	}

	if d.BillSchedule.Ready() {
		printSchedule(d.BillSchedule.Data)
	}
	return nil
}

func printMonthBills(m analytics.MonthBills) {
	if len(m.Bills) == 0 {
		cli.Println(cli.Muted("No payments in " + m.Name() + "."))
		fmt.Println()
		return
	}
	rows := make([][]string, 0, len(m.Bills)+2)
	for _, b := range m.Bills {
		rows = append(rows, []string{
			b.Merchant,
			cli.FormatDate(b.Date.Time),
			cli.FormatMoney(b.Amount),
			cli.FormatPercent(m.BillPct(b)),
		})
	}
	rows = append(rows, []string{cli.Separator})
	rows = append(rows, []string{"Total", "", cli.FormatMoney(m.Total), cli.FormatPercent(m.IncomePct)})
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Payments in " + m.Name(),
		Headers: []string{"Merchant", "Date", "Amount", "Of Income"},
		Rows:    rows,
	}))
	fmt.Println()
}

func printBillGrid(grid []analytics.MonthBills) {
	totals := make([]float64, len(grid))
	rows := make([][]string, 0, len(grid))
	for i, m := range grid {
		totals[i] = m.Total
		rows = append(rows, []string{
			m.Name(),
			fmt.Sprintf("%d", len(m.Bills)),
			cli.FormatMoney(m.Total),
			cli.FormatPercent(m.IncomePct),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Payment Grid",
		Headers: []string{"Month", "Bills", "Total", "Of Income"},
		Rows:    rows,
	}))
	cli.Println(cli.Muted("Trend: ") + cli.RenderSparkline(totals))
	fmt.Println()
}

func printSchedule(s analytics.BillsSummary) {
	if len(s.Bills) == 0 {
		return
	}
	rows := make([][]string, 0, len(s.Bills))
	for _, b := range s.Bills {
		status := string(b.Status)
		switch b.Status {
		case analytics.BillOverdue:
			status = cli.Warning(status)
		case analytics.BillPaid:
			status = cli.Muted(status)
		}
		rows = append(rows, []string{b.Merchant, b.Category, cli.FormatDate(b.DueDate), cli.FormatMoney(b.Amount), status})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Schedule  %d paid · %d upcoming · %d overdue", s.Paid, s.Upcoming, s.Overdue),
		Headers: []string{"Merchant", "Category", "Due", "Amount", "Status"},
		Rows:    rows,
	}))
}
