package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/finburn/internal/export"
	"github.com/theirongolddev/finburn/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	flagExportFormats []string
	flagExportDir     string
	flagExportBase    string
	flagExportHistory int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a spending report as CSV, JSON, YAML or PDF",
	RunE:  runExport,
}

func init() {
	names := make([]string, len(export.Formats))
	for i, f := range export.Formats {
		names[i] = string(f)
	}
	exportCmd.Flags().StringSliceVarP(&flagExportFormats, "format", "f", []string{"csv"},
		"Output formats ("+strings.Join(names, ", ")+"); repeat or comma-separate for several")
	exportCmd.Flags().StringVarP(&flagExportDir, "dir", "o", "", "Output directory (default: current directory)")
	exportCmd.Flags().StringVar(&flagExportBase, "base", "finburn_report", "File name prefix")
	exportCmd.Flags().IntVar(&flagExportHistory, "history", 30, "Include the N most recent daemon snapshots (0 to skip)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	formats := make([]export.Format, 0, len(flagExportFormats))
	for _, name := range flagExportFormats {
		f, err := export.ParseFormat(name)
		if err != nil {
			return err
		}
		formats = append(formats, f)
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	d := loadWithSpinner(s, "Loading dashboard...", func() *pipeline.Dashboard {
		return s.svc.Load(ctx)
	})
	if err := failOnNoAccount(d); err != nil {
		return err
	}

	report := export.FromDashboard(d, time.Now())
	if flagExportHistory > 0 && s.store != nil {
		history, err := s.store.Snapshots(s.svc.Account(), flagExportHistory)
		if err != nil {
			s.console.Warn("Reading snapshot history: %v", err)
		}
		report.History = history
	}
	for res, msg := range report.Errors {
		s.console.Warn("%s: %s", res, msg)
	}

	for _, f := range formats {
		path, err := export.Write(report, f, flagExportDir, flagExportBase)
		if err != nil {
			return fmt.Errorf("export %s: %w", f, err)
		}
		s.console.Success("Wrote %s", path)
	}
	return nil
}
