package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/finburn/internal/cli"
	"github.com/theirongolddev/finburn/internal/config"
	"github.com/theirongolddev/finburn/internal/tui"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	// Start from the file on disk so env and flag overrides are not persisted.
	cfg, err := config.LoadFile(config.Path())
	if err != nil {
		return err
	}
	console := cli.NewConsole(flagQuiet)

	cfg, err = tui.RunSetup(cfg)
	if errors.Is(err, huh.ErrUserAborted) {
		console.Warn("Setup canceled; nothing saved.")
		return nil
	}
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	console.Success("Saved to %s", config.Path())
	console.Info("Run `finburn setup` anytime to reconfigure.")
	return nil
}

func maskSecret(s string) string {
	if len(s) > 12 {
		return s[:4] + "..." + s[len(s)-4:]
	}
	if len(s) > 4 {
		return s[:2] + "..."
	}
	if s == "" {
		return "not set"
	}
	return "****"
}
