package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const pageWidth = 190.0

type rgb [3]int

var (
	headerFill = rgb{40, 40, 40}
	headerText = rgb{255, 255, 255}
	titleText  = rgb{0, 0, 0}
	bodyText   = rgb{50, 50, 50}
	ruleColor  = rgb{200, 200, 200}
	overColor  = rgb{192, 0, 0}
	underColor = rgb{0, 128, 0}
)

func writePDF(r Report, path string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, tr("Generated by finburn | "+r.GeneratedAt.Format("2006-01-02 15:04")), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "R", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFillColor(headerFill[0], headerFill[1], headerFill[2])
	pdf.SetTextColor(headerText[0], headerText[1], headerText[2])
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 12, tr("  Spending report: "+r.Account), "", 1, "L", true, 0, "")
	pdf.Ln(8)

	section := func(title, body string) {
		if body == "" {
			return
		}
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(titleText[0], titleText[1], titleText[2])
		pdf.Cell(0, 8, tr(title))
		pdf.Ln(7)
		pdf.SetDrawColor(ruleColor[0], ruleColor[1], ruleColor[2])
		pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+pageWidth, pdf.GetY())
		pdf.Ln(4)
		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(bodyText[0], bodyText[1], bodyText[2])
		pdf.MultiCell(pageWidth, 5, tr(body), "", "L", false)
		pdf.Ln(6)
	}

	if o := r.Overview; o != nil {
		pdf.SetFont("Arial", "B", 16)
		c := underColor
		if !o.OnTrack() {
			c = overColor
		}
		pdf.SetTextColor(c[0], c[1], c[2])
		pdf.CellFormat(pageWidth, 10, tr(fmt.Sprintf("$%.2f spent  (%s)", o.TotalSpent, o.Status)), "", 1, "L", false, 0, "")
		pdf.Ln(4)

		var b strings.Builder
		fmt.Fprintf(&b, "Monthly average: $%.2f\n", o.MonthlyAverage)
		fmt.Fprintf(&b, "Spending ratio: %.2f\n", o.SpendingRatio)
		fmt.Fprintf(&b, "Active categories: %d\n", o.ActiveCategories)
		for _, tip := range o.Tips {
			fmt.Fprintf(&b, "- %s\n", tip)
		}
		section("Overview", strings.TrimSpace(b.String()))
	}

	var cats strings.Builder
	for _, c := range r.Categories {
		fmt.Fprintf(&cats, "%s: $%.2f (%.1f%%)\n", c.Category, c.Amount, c.Percentage)
	}
	section("Spending by category", strings.TrimSpace(cats.String()))

	if b := r.BillsRatio; b != nil {
		body := fmt.Sprintf("Income: $%.2f\nBills: $%.2f (%.1f%% of income)\nRemaining: $%.2f (%.1f%%)",
			b.Income, b.Bills, b.RatioPct, b.Remaining, b.RemainingPct)
		if b.ExceedsIncome {
			body += "\nBills exceed income."
		}
		section("Bills vs income", body)
	}

	var bills strings.Builder
	for _, b := range r.Bills {
		fmt.Fprintf(&bills, "%s  %s: $%.2f [%s]\n", b.DueDate.Format("Jan 02"), b.Merchant, b.Amount, b.Status)
	}
	section("Bills", strings.TrimSpace(bills.String()))

	var preds strings.Builder
	for _, p := range r.Predictions {
		fmt.Fprintf(&preds, "%s: %s likely, ~$%.2f around %s\n", p.Category, p.Label, p.Amount, p.PredictedDate.Format("Jan 02"))
	}
	section("Predicted spending", strings.TrimSpace(preds.String()))

	var ins strings.Builder
	for _, in := range r.Insights {
		fmt.Fprintf(&ins, "%s: $%.2f over %d transactions (%s)\n", in.Category, in.TotalSpent, in.Frequency, in.Indicator)
	}
	section("Insights", strings.TrimSpace(ins.String()))

	if len(r.Errors) > 0 {
		keys := make([]string, 0, len(r.Errors))
		for k := range r.Errors {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var errs strings.Builder
		for _, k := range keys {
			fmt.Fprintf(&errs, "%s: %s\n", k, r.Errors[k])
		}
		section("Unavailable sections", strings.TrimSpace(errs.String()))
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("writing pdf report: %w", err)
	}
	return nil
}
