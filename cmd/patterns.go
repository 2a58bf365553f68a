package cmd

import (
	"fmt"

	"github.com/theirongolddev/finburn/internal/analytics"
	"github.com/theirongolddev/finburn/internal/api"
	"github.com/theirongolddev/finburn/internal/cli"
	"github.com/theirongolddev/finburn/internal/pipeline"

	"github.com/spf13/cobra"
)

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Spending by time of day, day of week and recurring charges",
	RunE:  runPatterns,
}

func init() {
	rootCmd.AddCommand(patternsCmd)
}

func runPatterns(cmd *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	d := loadWithSpinner(s, "Loading spending patterns...", func() *pipeline.Dashboard {
		return s.svc.LoadResources(ctx, api.ResourcePatterns, api.ResourceTransactions)
	})
	if err := failOnNoAccount(d); err != nil {
		return err
	}
	if widgetError(s, "Patterns", d.Patterns) {
		return nil
	}

	p := d.Patterns.Data
	printTitle("SPENDING PATTERNS")
	printBuckets("Time of Day", "Part", p.TimeOfDay, p.PeakTime())
	printBuckets("Day of Week", "Day", p.DayOfWeek, p.PeakDay())

	if len(p.Recurring) == 0 {
		cli.Println(cli.Muted("No recurring charges detected."))
		return nil
	}
	rows := make([][]string, 0, len(p.Recurring))
	for _, r := range p.Recurring {
		rows = append(rows, []string{
			analytics.MerchantEmoji(r.Merchant) + " " + r.Merchant,
			cli.FormatMoney(r.Amount),
			r.Frequency,
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Recurring Charges",
		Headers: []string{"Merchant", "Amount", "Cadence"},
		Rows:    rows,
	}))
	return nil
}

func printBuckets(title, label string, buckets []analytics.Bucket, peak string) {
	values := make([]float64, len(buckets))
	rows := make([][]string, 0, len(buckets))
	for i, b := range buckets {
		values[i] = b.Amount
		rows = append(rows, []string{
			b.Label,
			cli.FormatMoney(b.Amount),
			cli.FormatPercent(b.Percentage),
			cli.RenderShareBar(b.Percentage, 20),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   title,
		Headers: []string{label, "Amount", "Share", ""},
		Rows:    rows,
	}))
	if peak != "" {
		cli.Println(cli.Muted("Peak: ") + cli.Accent(peak) + "  " + cli.RenderSparkline(values))
	}
	fmt.Println()
}
