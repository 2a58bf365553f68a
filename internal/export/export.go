// Package export writes dashboard reports to CSV, JSON, YAML and PDF files.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/theirongolddev/finburn/internal/analytics"
	"github.com/theirongolddev/finburn/internal/model"
	"github.com/theirongolddev/finburn/internal/pipeline"
)

// Format is an output file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatPDF  Format = "pdf"
)

// Formats lists every supported format.
var Formats = []Format{FormatCSV, FormatJSON, FormatYAML, FormatPDF}

// ParseFormat accepts a format name, case-insensitively. "yml" maps to yaml.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "pdf":
		return FormatPDF, nil
	}
	return "", fmt.Errorf("unsupported export format %q (want csv, json, yaml or pdf)", s)
}

// Report is the exported view of a dashboard. Sections whose widget failed
// are left empty.
type Report struct {
	Account     string                      `json:"account" yaml:"account"`
	GeneratedAt time.Time                   `json:"generated_at" yaml:"generated_at"`
	Overview    *analytics.OverviewStats    `json:"overview,omitempty" yaml:"overview,omitempty"`
	Categories  []analytics.CategoryShare   `json:"categories,omitempty" yaml:"categories,omitempty"`
	BillsRatio  *analytics.BillsRatio       `json:"bills_ratio,omitempty" yaml:"bills_ratio,omitempty"`
	Bills       []analytics.Bill            `json:"bills,omitempty" yaml:"bills,omitempty"`
	Predictions []analytics.Prediction      `json:"predictions,omitempty" yaml:"predictions,omitempty"`
	Insights    []analytics.CategoryInsight `json:"insights,omitempty" yaml:"insights,omitempty"`
	History     []model.Snapshot            `json:"history,omitempty" yaml:"history,omitempty"`
	Errors      map[string]string           `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// FromDashboard collects the ready widgets of d into a report.
func FromDashboard(d *pipeline.Dashboard, now time.Time) Report {
	r := Report{Account: d.Account, GeneratedAt: now}
	if d.Overview.Ready() {
		o := d.Overview.Data
		r.Overview = &o
	}
	if d.Categories.Ready() {
		r.Categories = d.Categories.Data
	}
	if d.BillsIncome.Ready() {
		ratio := d.BillsIncome.Data.Ratio
		r.BillsRatio = &ratio
	}
	if d.BillSchedule.Ready() {
		r.Bills = d.BillSchedule.Data.Bills
	}
	if d.Predictions.Ready() {
		r.Predictions = d.Predictions.Data
	}
	if d.Insights.Ready() {
		r.Insights = d.Insights.Data
	}
	for res, err := range d.Errors() {
		if r.Errors == nil {
			r.Errors = make(map[string]string)
		}
		r.Errors[string(res)] = err.Error()
	}
	return r
}

// Write renders r to dir/base_<timestamp>.<ext> and returns the absolute
// path. An empty dir means the working directory.
func Write(r Report, f Format, dir, base string) (string, error) {
	if base == "" {
		base = "finburn_report"
	}
	at := r.GeneratedAt
	if at.IsZero() {
		at = time.Now()
	}
	path, err := filename(base, dir, string(f), at)
	if err != nil {
		return "", err
	}

	switch f {
	case FormatCSV:
		err = writeCSV(r, path)
	case FormatJSON:
		err = writeJSON(r, path)
	case FormatYAML:
		err = writeYAML(r, path)
	case FormatPDF:
		err = writePDF(r, path)
	default:
		return "", fmt.Errorf("unsupported export format %q", f)
	}
	if err != nil {
		return "", err
	}
	return filepath.Abs(path)
}

func filename(base, dir, ext string, at time.Time) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolving working directory: %w", err)
		}
		dir = cwd
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("creating output directory %s: %w", dir, err)
	}
	name := fmt.Sprintf("%s_%s.%s", base, at.Format("20060102_150405"), ext)
	return filepath.Join(dir, name), nil
}

func writeJSON(r Report, path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding json report: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

func writeYAML(r Report, path string) error {
	f, err := os.Create(path) //nolint:gosec // output path is chosen by the local user
	if err != nil {
		return fmt.Errorf("creating yaml report: %w", err)
	}
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		_ = f.Close()
		return fmt.Errorf("encoding yaml report: %w", err)
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
