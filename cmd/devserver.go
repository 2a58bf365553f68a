package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/theirongolddev/finburn/internal/config"
	"github.com/theirongolddev/finburn/internal/devserver"
	flog "github.com/theirongolddev/finburn/internal/log"

	"github.com/spf13/cobra"
)

var (
	flagDevAddr     string
	flagDevSeed     int64
	flagDevAccount  string
	flagDevFailPath string
	flagDevDelay    time.Duration
	flagDevRate     float64
)

var devserverCmd = &cobra.Command{
	Use:   "devserver",
	Short: "Run a mock analytics backend over generated fixture data",
	RunE:  runDevserver,
}

func init() {
	devserverCmd.Flags().StringVar(&flagDevAddr, "addr", "127.0.0.1:8080", "HTTP listen address")
	devserverCmd.Flags().Int64Var(&flagDevSeed, "seed", 42, "Fixture generator seed")
	devserverCmd.Flags().StringVar(&flagDevAccount, "fixture-account", "demo", "Account ID served by the fixtures")
	devserverCmd.Flags().StringVar(&flagDevFailPath, "fail-path", "", "Force HTTP 500 for paths with this prefix (e.g. /api/bills)")
	devserverCmd.Flags().DurationVar(&flagDevDelay, "delay", 0, "Artificial latency added to every API response")
	devserverCmd.Flags().Float64Var(&flagDevRate, "rate", 0, "Per-client request limit per second (0 disables)")
	rootCmd.AddCommand(devserverCmd)
}

func runDevserver(_ *cobra.Command, _ []string) error {
	cfg := config.DefaultConfig()
	if loaded, err := config.Load(); err == nil {
		cfg = loaded
	}
	lc := flog.DefaultConfig()
	lc.Level = flog.ParseLevel("info")
	if flagVerbose {
		lc.Level = flog.ParseLevel("debug")
	}
	lc.Component = "devserver"
	lg := flog.New(lc)

	fixtures := devserver.Generate(flagDevSeed, flagDevAccount, time.Now())
	e := devserver.New(fixtures, devserver.Options{
		Log:        lg,
		RatePerSec: flagDevRate,
		FailPath:   flagDevFailPath,
		Delay:      flagDevDelay,
	})
	srv := devserver.NewHTTPServer(flagDevAddr, e)

	fmt.Printf("  Mock backend on http://%s (account %q, %d transactions)\n",
		flagDevAddr, fixtures.Account(), len(fixtures.Transactions))
	if cfg.API.AccountID != fixtures.Account() {
		fmt.Printf("  Point finburn at it: finburn --api-url http://%s --account %s\n", flagDevAddr, fixtures.Account())
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("devserver: %w", err)
	}
}
