package cmd

import (
	"fmt"

	"github.com/theirongolddev/finburn/internal/config"
	"github.com/theirongolddev/finburn/internal/pipeline"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Printf("  Cache:       %s\n", pipeline.CachePath())
	fmt.Println()

	fmt.Println("  [API]")
	fmt.Printf("    Base URL:     %s\n", cfg.API.BaseURL)
	fmt.Printf("    Account ID:   %s\n", maskSecret(cfg.API.AccountID))
	fmt.Printf("    Timeout:      %s\n", cfg.API.Timeout())
	fmt.Printf("    Rate limit:   %.1f req/s\n", cfg.API.RatePerSec)
	fmt.Printf("    Bills/income: %s\n", cfg.API.BillsIncomePath)
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Time range: %s\n", cfg.General.TimeRange)
	fmt.Printf("    Offline:    %v\n", cfg.General.Offline)
	fmt.Printf("    Cache TTL:  %s\n", cfg.General.CacheTTL())
	fmt.Printf("    Log level:  %s\n", cfg.General.LogLevel)
	fmt.Println()

	fmt.Println("  [TUI]")
	fmt.Printf("    Auto refresh: %v every %s\n", cfg.TUI.AutoRefresh, cfg.TUI.RefreshInterval())
	fmt.Printf("    Animate:      %v\n", cfg.TUI.Animate)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:  %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Interval: %s\n", cfg.Daemon.Interval())
	fmt.Println()

	fmt.Println("  Run `finburn setup` to reconfigure.")
	return nil
}
