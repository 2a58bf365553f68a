package cmd

import (
	"fmt"

	"github.com/theirongolddev/finburn/internal/analytics"
	"github.com/theirongolddev/finburn/internal/api"
	"github.com/theirongolddev/finburn/internal/cli"
	"github.com/theirongolddev/finburn/internal/pipeline"

	"github.com/spf13/cobra"
)

var predictionsCmd = &cobra.Command{
	Use:   "predictions",
	Short: "Predicted upcoming spending by category",
	RunE:  runPredictions,
}

func init() {
	rootCmd.AddCommand(predictionsCmd)
}

func runPredictions(cmd *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	d := loadWithSpinner(s, "Loading predictions...", func() *pipeline.Dashboard {
		return s.svc.LoadResources(ctx, api.ResourcePredictions)
	})
	if err := failOnNoAccount(d); err != nil {
		return err
	}
	if widgetError(s, "Predictions", d.Predictions) {
		return nil
	}

	preds := d.Predictions.Data
	printTitle("PREDICTED SPENDING")
	if len(preds) == 0 {
		cli.Println(cli.Muted("No upcoming spending predicted."))
		return nil
	}

	rows := make([][]string, 0, len(preds))
	for _, p := range preds {
		label := p.Label
		if p.High {
			label = cli.Warning(label)
		}
		rows = append(rows, []string{
			p.Category,
			label,
			cli.RenderShareBar(p.Likelihood*100, 10),
			cli.FormatDate(p.PredictedDate),
			cli.FormatMoney(p.Amount),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Category", "Likelihood", "", "Expected", "Amount"},
		Rows:    rows,
	}))

	if n := analytics.CountHigh(preds); n > 0 {
		fmt.Println()
		cli.Println(cli.Warning(fmt.Sprintf("%d high-likelihood predictions:", n)))
		for _, p := range preds {
			if p.High && p.Warning != "" {
				cli.Println(cli.Muted("  • " + p.Warning))
			}
		}
	}
	return nil
}
