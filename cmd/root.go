// Package cmd implements the finburn CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/theirongolddev/finburn/internal/api"
	"github.com/theirongolddev/finburn/internal/cli"
	"github.com/theirongolddev/finburn/internal/config"
	flog "github.com/theirongolddev/finburn/internal/log"
	"github.com/theirongolddev/finburn/internal/pipeline"
	"github.com/theirongolddev/finburn/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagAPIURL    string
	flagAccount   string
	flagOffline   bool
	flagNoCache   bool
	flagQuiet     bool
	flagVerbose   bool
	flagTimeout   time.Duration
	flagTimeRange string
)

var rootCmd = &cobra.Command{
	Use:   "finburn",
	Short: "Personal finance dashboard",
	Long:  "Track spending, bills, income and predictions from your analytics backend.",
	RunE:  runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "Analytics backend base URL (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&flagAccount, "account", "a", "", "Account ID (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&flagOffline, "offline", false, "Serve cached payloads only, never contact the backend")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip the in-memory and SQLite payload caches")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log debug output to stderr")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 0, "Per-request timeout (e.g. 5s)")
	rootCmd.PersistentFlags().StringVar(&flagTimeRange, "range", "", "Overview time range, e.g. \"1 month\" or \"3 months\"")
}

// loadConfig reads the config file and environment, then applies flags.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if flagAPIURL != "" {
		cfg.API.BaseURL = strings.TrimRight(flagAPIURL, "/")
	}
	if flagAccount != "" {
		cfg.API.AccountID = flagAccount
	}
	if flagTimeout > 0 {
		cfg.API.TimeoutSec = max(int(flagTimeout.Seconds()), 1)
	}
	if flagTimeRange != "" {
		cfg.General.TimeRange = flagTimeRange
	}
	if flagOffline {
		cfg.General.Offline = true
	}
	if flagVerbose {
		cfg.General.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func newLogger(cfg config.Config) *flog.Logger {
	lc := flog.DefaultConfig()
	lc.Level = flog.ParseLevel(cfg.General.LogLevel)
	if flagVerbose {
		lc.Level = slog.LevelDebug
	}
	lg := flog.New(lc)
	flog.SetDefault(lg)
	return lg
}

// session bundles what every data command needs.
type session struct {
	cfg     config.Config
	log     *flog.Logger
	console *cli.Console
	svc     *pipeline.Service
	store   *store.Store
}

func (s *session) Close() {
	if s.store != nil {
		_ = s.store.Close()
	}
}

// openSession builds the logger, API client, payload store and pipeline.
// A missing account is not an error here: widgets report it individually.
func openSession() (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	s := &session{
		cfg:     cfg,
		log:     newLogger(cfg),
		console: cli.NewConsole(flagQuiet),
	}
	svc, st, err := buildService(cfg, s.log, s.console, pipeline.Period{})
	if err != nil {
		return nil, err
	}
	s.svc, s.store = svc, st
	return s, nil
}

func buildService(cfg config.Config, lg *flog.Logger, console *cli.Console, period pipeline.Period) (*pipeline.Service, *store.Store, error) {
	client, err := api.New(cfg.API,
		api.WithLogger(lg),
		api.WithTimeRange(cfg.General.TimeRange),
	)
	if err != nil && !errors.Is(err, api.ErrNoAccount) {
		return nil, nil, err
	}

	var st *store.Store
	if !flagNoCache {
		st, err = store.Open(pipeline.CachePath())
		if err != nil {
			console.Warn("Payload cache unavailable: %v", err)
			st = nil
		}
	}

	svc := pipeline.New(pipeline.Options{
		Client:    client,
		AccountID: cfg.API.AccountID,
		Store:     st,
		Offline:   cfg.General.Offline,
		NoCache:   flagNoCache,
		CacheTTL:  cfg.General.CacheTTL(),
		Period:    period,
		Log:       lg,
	})
	return svc, st, nil
}

// commandContext cancels on SIGINT or SIGTERM.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// loadWithSpinner runs load while showing a spinner on stderr.
func loadWithSpinner(s *session, msg string, load func() *pipeline.Dashboard) *pipeline.Dashboard {
	sp := s.console.Start(msg)
	start := time.Now()
	d := load()
	sp.Stop()
	s.log.Debug("dashboard loaded", "elapsed", time.Since(start), "failed", len(d.Errors()))
	if d.AnyStale() {
		s.console.Warn("Showing cached data; the backend could not be reached.")
	}
	return d
}

// widgetError reports a failed widget, returning true when the caller
// should skip rendering it.
func widgetError[T any](s *session, title string, w pipeline.Widget[T]) bool {
	if w.Ready() {
		return false
	}
	s.console.Error("%s: %s", title, w.Message())
	return true
}

// failOnNoAccount turns a dashboard whose every widget failed with a
// missing account into a single command error.
func failOnNoAccount(d *pipeline.Dashboard) error {
	errs := d.Errors()
	if len(errs) == 0 {
		return nil
	}
	for _, err := range errs {
		if !api.IsNoAccount(err) {
			return nil
		}
	}
	return errors.New(api.Message(api.ErrNoAccount))
}

func printTitle(title string) {
	fmt.Println()
	fmt.Println(cli.RenderTitle(title))
	fmt.Println()
}
