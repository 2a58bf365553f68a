package cmd

import (
	"fmt"

	"github.com/theirongolddev/finburn/internal/cli"
	"github.com/theirongolddev/finburn/internal/config"
	"github.com/theirongolddev/finburn/internal/pipeline"
	"github.com/theirongolddev/finburn/internal/store"
	"github.com/theirongolddev/finburn/internal/tui"
	"github.com/theirongolddev/finburn/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	// Edits are saved from the file alone so env and flag overrides stay
	// out of config.toml.
	fileCfg, err := config.LoadFile(config.Path())
	if err != nil {
		return err
	}
	theme.SetActive(cfg.Appearance.Theme)
	lg := newLogger(cfg)
	console := cli.NewConsole(true)

	// Stores opened by rebuilds stay open until exit.
	var stores []*store.Store
	defer func() {
		for _, st := range stores {
			_ = st.Close()
		}
	}()
	build := func(c config.Config) (tui.Loader, error) {
		svc, st, err := buildService(c, lg, console, pipeline.Period{})
		if err != nil {
			return nil, err
		}
		if st != nil {
			stores = append(stores, st)
		}
		return svc, nil
	}

	loader, err := build(cfg)
	if err != nil {
		return err
	}

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	app := tui.NewApp(tui.Options{
		Loader:     loader,
		Config:     cfg,
		FileConfig: &fileCfg,
		NeedSetup:  !cfg.HasAccount() && !cfg.General.Offline,
		Save:       config.Save,
		Rebuild:    build,
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
