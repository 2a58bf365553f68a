package cmd

import (
	"fmt"
	"time"

	"github.com/theirongolddev/finburn/internal/api"
	"github.com/theirongolddev/finburn/internal/cli"
	"github.com/theirongolddev/finburn/internal/pipeline"

	"github.com/spf13/cobra"
)

var incomeCmd = &cobra.Command{
	Use:   "income",
	Short: "Monthly income and income transactions",
	RunE:  runIncome,
}

func init() {
	incomeCmd.Flags().IntVar(&flagBillsYear, "year", 0, "Year (default: current)")
	incomeCmd.Flags().IntVar(&flagBillsMonth, "month", 0, "Month 1-12 (default: current)")
	rootCmd.AddCommand(incomeCmd)
}

func runIncome(cmd *cobra.Command, _ []string) error {
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

	d := loadWithSpinner(s, "Loading income...", func() *pipeline.Dashboard {
		return s.svc.LoadResources(ctx, api.ResourceMonthlyIncome, api.ResourceIncome)
	})
	if err := failOnNoAccount(d); err != nil {
		return err
	}

	title := "INCOME  " + cli.FormatMonth(period.Year, period.Month)
	if d.Income.Ready() {
		title = fmt.Sprintf("INCOME  %s %d", d.Income.Data.MonthName, d.Income.Data.Year)
	}
	printTitle(title)

	if !widgetError(s, "Monthly income", d.Income) {
		cli.Println("Monthly income: " + cli.Income(d.Income.Data.MonthlyIncome))
		fmt.Println()
	}

	if widgetError(s, "Income detail", d.IncomeDetail) {
		return nil
	}
	detail := d.IncomeDetail.Data
	if len(detail.Transactions) == 0 {
		cli.Println(cli.Muted("No income transactions this month."))
		return nil
	}
	rows := make([][]string, 0, len(detail.Transactions)+2)
	for _, t := range detail.Transactions {
		rows = append(rows, []string{
			t.Merchant,
			t.Category,
			cli.FormatDate(t.Date.Time),
			cli.FormatMoney(t.Amount),
		})
	}
	if detail.TotalIncome != nil {
		rows = append(rows, []string{cli.Separator})
		rows = append(rows, []string{"Total", "", "", cli.FormatMoney(*detail.TotalIncome)})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Deposits",
		Headers: []string{"Source", "Category", "Date", "Amount"},
		Rows:    rows,
	}))
	return nil
}
