package cmd

import (
	"fmt"

	"github.com/theirongolddev/finburn/internal/api"
	"github.com/theirongolddev/finburn/internal/cli"
	"github.com/theirongolddev/finburn/internal/pipeline"

	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Account holder, bank and balance",
	RunE:  runAccount,
}

func init() {
	rootCmd.AddCommand(accountCmd)
}

func runAccount(cmd *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	d := loadWithSpinner(s, "Loading account...", func() *pipeline.Dashboard {
		return s.svc.LoadResources(ctx, api.ResourceUser)
	})
	if err := failOnNoAccount(d); err != nil {
		return err
	}
	if widgetError(s, "Account", d.User) {
		return nil
	}

	u := d.User.Data
	printTitle("ACCOUNT")
	rows := [][]string{
		{"Owner", u.OwnerName},
		{"Account", u.AccountName},
		{"Type", u.AccountType},
		{"Number", maskAccountNumber(u.AccountNumber)},
		{"Bank", u.BankDetails.BankName},
		{cli.Separator},
		{"Current Balance", cli.FormatMoney(u.Balance.Current)},
		{"Available", cli.FormatMoney(u.Balance.Available)},
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Field", "Value"},
		Rows:    rows,
	}))
	return nil
}

// maskAccountNumber keeps the last four digits.
func maskAccountNumber(n string) string {
	if len(n) <= 4 {
		return n
	}
	return "••••" + n[len(n)-4:]
}
