package cmd

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/finburn/internal/analytics"
	"github.com/theirongolddev/finburn/internal/api"
	"github.com/theirongolddev/finburn/internal/cli"
	"github.com/theirongolddev/finburn/internal/pipeline"

	"github.com/spf13/cobra"
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Per-category spending insights and server observations",
	RunE:  runInsights,
}

func init() {
	rootCmd.AddCommand(insightsCmd)
}

func runInsights(cmd *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	d := loadWithSpinner(s, "Loading insights...", func() *pipeline.Dashboard {
		return s.svc.LoadResources(ctx, api.ResourceTransactions, api.ResourceInsights)
	})
	if err := failOnNoAccount(d); err != nil {
		return err
	}

	printTitle("INSIGHTS  Last 30 days")

	if !widgetError(s, "Insights", d.Insights) {
		printCategoryInsights(d.Insights.Data)
	}

	if !widgetError(s, "Observations", d.ServerInsights) {
		for _, in := range d.ServerInsights.Data.Insights {
			cli.Println(cli.Accent(in.Title))
			if in.Description != "" {
				cli.Println(in.Description)
			}
			for _, datum := range in.Data {
				cli.Println(cli.Muted(fmt.Sprintf("  %-20s %12s %6.1f%%",
					datum.Category, cli.FormatMoney(datum.TotalSpent), float64(datum.Percentage))))
			}
			fmt.Println()
		}
	}
	return nil
}

func printCategoryInsights(rows []analytics.CategoryInsight) {
	if len(rows) == 0 {
		cli.Println(cli.Muted("No transactions in the last 30 days."))
		fmt.Println()
		return
	}
	out := make([][]string, 0, len(rows))
	for _, c := range rows {
		merchants := c.TopMerchants(3)
		names := make([]string, len(merchants))
		for i, m := range merchants {
			names[i] = m.Emoji + " " + m.Name
		}
		out = append(out, []string{
			c.Category,
			cli.FormatMoney(c.TotalSpent),
			fmt.Sprintf("%d", c.Frequency),
			string(c.Indicator),
			string(c.Trend),
			strings.Join(names, ", "),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "By Category",
		Headers: []string{"Category", "Spent", "Txns", "Level", "Trend", "Top Merchants"},
		Rows:    out,
	}))
	fmt.Println()
}
