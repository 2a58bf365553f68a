package cmd

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/theirongolddev/finburn/internal/api"
	"github.com/theirongolddev/finburn/internal/pipeline"
	"github.com/theirongolddev/finburn/internal/store"

	"github.com/spf13/cobra"
)

var flagCacheClear bool

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Show or clear the offline payload cache",
	RunE:  runCache,
}

var rawCmd = &cobra.Command{
	Use:   "raw <resource>",
	Short: "Print the raw JSON payload of one backend resource",
	Long: "Print the raw JSON payload of one backend resource through the caches.\n" +
		"Resources: " + resourceNames(),
	Args: cobra.ExactArgs(1),
	RunE: runRaw,
}

func init() {
	cacheCmd.Flags().BoolVar(&flagCacheClear, "clear", false, "Delete cached payloads for the configured account")
	rawCmd.Flags().IntVar(&flagBillsYear, "year", 0, "Year for month-scoped resources")
	rawCmd.Flags().IntVar(&flagBillsMonth, "month", 0, "Month 1-12 for month-scoped resources")
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(rawCmd)
}

func resourceNames() string {
	names := make([]string, len(api.Resources))
	for i, r := range api.Resources {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}

func runCache(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(pipeline.CachePath())
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	defer func() { _ = st.Close() }()

	if flagCacheClear {
		if !cfg.HasAccount() {
			return errors.New(api.Message(api.ErrNoAccount))
		}
		if err := st.DeletePayloads(cfg.API.AccountID); err != nil {
			return err
		}
		fmt.Printf("  Cleared cached payloads for %s\n", cfg.API.AccountID)
	}

	n, err := st.PayloadCount()
	if err != nil {
		return err
	}
	fmt.Printf("  Cache file: %s\n", pipeline.CachePath())
	if info, err := os.Stat(pipeline.CachePath()); err == nil {
		fmt.Printf("  Size: %d KB, modified %s\n", info.Size()/1024, info.ModTime().Format(time.RFC3339))
	}
	fmt.Printf("  Cached payloads: %d\n", n)
	return nil
}

func runRaw(cmd *cobra.Command, args []string) error {
	r, ok := api.ParseResource(args[0])
	if !ok {
		return fmt.Errorf("unknown resource %q (want one of: %s)", args[0], resourceNames())
	}
	var q url.Values
	if flagBillsYear != 0 || flagBillsMonth != 0 {
		mq, err := api.MonthQuery(flagBillsYear, flagBillsMonth)
		if err != nil {
			return err
		}
		q = mq
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	body, stale, err := s.svc.Fetch(ctx, r, q)
	if err != nil {
		return errors.New(api.Message(err))
	}
	if stale {
		s.console.Warn("Cached payload; the backend could not be reached.")
	}
	_, err = os.Stdout.Write(append(body, '\n'))
	return err
}
