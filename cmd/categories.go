package cmd

import (
	"github.com/theirongolddev/finburn/internal/analytics"
	"github.com/theirongolddev/finburn/internal/api"
	"github.com/theirongolddev/finburn/internal/pipeline"

	"github.com/spf13/cobra"
)

var flagCategoriesTop int

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Spending by category",
	RunE:  runCategories,
}

func init() {
	categoriesCmd.Flags().IntVarP(&flagCategoriesTop, "top", "t", 0, "Show only the N largest categories")
	rootCmd.AddCommand(categoriesCmd)
}

func runCategories(cmd *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	d := loadWithSpinner(s, "Loading categories...", func() *pipeline.Dashboard {
		return s.svc.LoadResources(ctx, api.ResourceCategoryTotals, api.ResourceCategories)
	})
	if err := failOnNoAccount(d); err != nil {
		return err
	}

	printTitle("SPENDING BY CATEGORY")
	if !widgetError(s, "Categories", d.Categories) {
		rows := d.Categories.Data
		if flagCategoriesTop > 0 {
			rows = analytics.Top(rows, flagCategoriesTop)
		}
		printShares("All Categories", "Category", rows)
	}
	if !widgetError(s, "Top categories", d.TopCategories) {
		printShares("Last 30 Days", "Category", d.TopCategories.Data)
	}
	return nil
}
