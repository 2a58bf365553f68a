package devserver

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/theirongolddev/finburn/internal/analytics"
	"github.com/theirongolddev/finburn/internal/model"
)

const (
	msgInvalidMonth     = "Invalid month parameter (must be 1-12)"
	msgInvalidYear      = "Invalid year parameter"
	msgInvalidTimeRange = "Invalid timeRange parameter"
	msgAccountNotFound  = "account not found"
)

type handler struct {
	f Fixtures
}

func (h *handler) requireAccount(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if c.Param("account") != h.f.Account() {
			return notFound(c, msgAccountNotFound)
		}
		return next(c)
	}
}

type periodQuery struct {
	Year  int `validate:"min=1970,max=9999"`
	Month int `validate:"min=1,max=12"`
}

// period reads ?year=&month=, defaulting to the fixture clock's month.
func (h *handler) period(c echo.Context) (int, time.Month, error) {
	q := periodQuery{Year: h.f.Now.Year(), Month: int(h.f.Now.Month())}
	if err := echo.QueryParamsBinder(c).Int("month", &q.Month).BindError(); err != nil {
		return 0, 0, errors.New(msgInvalidMonth)
	}
	if err := echo.QueryParamsBinder(c).Int("year", &q.Year).BindError(); err != nil {
		return 0, 0, errors.New(msgInvalidYear)
	}
	if err := c.Validate(q); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 && ve[0].Field() == "Month" {
			return 0, 0, errors.New(msgInvalidMonth)
		}
		return 0, 0, errors.New(msgInvalidYear)
	}
	return q.Year, time.Month(q.Month), nil
}

func (h *handler) User(c echo.Context) error {
	return c.JSON(http.StatusOK, h.f.User)
}

func (h *handler) Overview(c echo.Context) error {
	since, err := h.timeRangeStart(c.QueryParam("timeRange"))
	if err != nil {
		return badRequest(c, msgInvalidTimeRange)
	}
	window := h.between(since, h.f.Now)

	var total, year float64
	for _, t := range window {
		if isSpend(t) {
			total += -t.Amount
		}
	}
	for _, t := range h.f.Transactions {
		if isSpend(t) {
			year += -t.Amount
		}
	}
	total = analytics.Round2(total)

	return c.JSON(http.StatusOK, model.SpendingAnalytics{
		Account:           h.f.Account(),
		TopCategories:     topCategories(window, 5),
		SpendingPatterns:  timePatterns(window),
		PredictedSpending: analytics.Forecast(h.f.Transactions, h.f.Now),
		TotalSpent:        &total,
		MonthlyAverage:    analytics.Round2(year / 12),
	})
}

// timeRangeStart parses values like "1 month", "3 months" or "1 year".
func (h *handler) timeRangeStart(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return h.f.Now.AddDate(0, -1, 0), nil
	}
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return time.Time{}, fmt.Errorf("bad time range %q", s)
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 1 {
		return time.Time{}, fmt.Errorf("bad time range %q", s)
	}
	switch strings.TrimSuffix(strings.ToLower(fields[1]), "s") {
	case "day":
		return h.f.Now.AddDate(0, 0, -n), nil
	case "week":
		return h.f.Now.AddDate(0, 0, -7*n), nil
	case "month":
		return h.f.Now.AddDate(0, -n, 0), nil
	case "year":
		return h.f.Now.AddDate(-n, 0, 0), nil
	}
	return time.Time{}, fmt.Errorf("bad time range %q", s)
}

func (h *handler) Bills(c echo.Context) error {
	year, month, err := h.period(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	totals := map[string]float64{}
	var total float64
	for _, t := range h.inMonth(year, month) {
		if t.Amount >= 0 || !analytics.IsBill(t.Category) {
			continue
		}
		totals[t.Merchant] += -t.Amount
		total += -t.Amount
	}

	rows := make([]model.BillSpend, 0, len(totals))
	for m, amt := range totals {
		rows = append(rows, model.BillSpend{
			Merchant:   m,
			TotalSpent: analytics.Round2(amt),
			Percentage: model.FlexFloat(math.Round(analytics.Percent(amt, total)*10) / 10),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalSpent != rows[j].TotalSpent {
			return rows[i].TotalSpent > rows[j].TotalSpent
		}
		return rows[i].Merchant < rows[j].Merchant
	})

	return c.JSON(http.StatusOK, model.BillsResponse{
		TopBills:   rows,
		TotalSpent: analytics.Round2(total),
		Year:       year,
		Month:      int(month),
		MonthName:  month.String(),
	})
}

func (h *handler) Categories(c echo.Context) error {
	return c.JSON(http.StatusOK, model.CategoriesResponse{
		TopCategories: topCategories(h.lastDays(30), 0),
	})
}

func (h *handler) CategoryTotals(c echo.Context) error {
	totals := map[string]float64{}
	for _, t := range h.lastDays(30) {
		if t.Amount < 0 && t.Category != "" {
			totals[t.Category] += t.Amount
		}
	}
	for k, v := range totals {
		totals[k] = analytics.Round2(v)
	}
	return c.JSON(http.StatusOK, totals)
}

func (h *handler) Predictions(c echo.Context) error {
	preds := analytics.Forecast(h.f.Transactions, h.f.Now)
	if preds == nil {
		preds = []model.PredictedSpend{}
	}
	return c.JSON(http.StatusOK, preds)
}

func (h *handler) Patterns(c echo.Context) error {
	return c.JSON(http.StatusOK, timePatterns(h.lastDays(90)))
}

func (h *handler) Insights(c echo.Context) error {
	current := h.lastDays(30)
	previous := h.between(h.f.Now.AddDate(0, 0, -60), h.f.Now.AddDate(0, 0, -30))

	var cur, prev, year float64
	for _, t := range current {
		if isSpend(t) {
			cur += -t.Amount
		}
	}
	for _, t := range previous {
		if isSpend(t) {
			prev += -t.Amount
		}
	}
	for _, t := range h.f.Transactions {
		if isSpend(t) {
			year += -t.Amount
		}
	}

	insights := []model.Insight{}
	top := topCategories(current, 3)
	if len(top) > 0 {
		data := make([]model.InsightDatum, len(top))
		for i, cat := range top {
			data[i] = model.InsightDatum{Category: cat.Category, TotalSpent: cat.TotalSpent, Percentage: cat.Percentage}
		}
		insights = append(insights, model.Insight{
			Type:        "top_categories",
			Title:       fmt.Sprintf("%s is your top spending category", top[0].Category),
			Description: fmt.Sprintf("%.1f%% of your spending over the last 30 days", float64(top[0].Percentage)),
			Data:        data,
		})
	}
	if prev > 0 {
		change := analytics.Percent(cur-prev, prev)
		direction := "up"
		if change < 0 {
			direction = "down"
		}
		insights = append(insights, model.Insight{
			Type:        "spending_trend",
			Title:       fmt.Sprintf("Spending is %s %.1f%%", direction, math.Abs(change)),
			Description: fmt.Sprintf("$%.2f this period against $%.2f the period before", cur, prev),
		})
	}

	return c.JSON(http.StatusOK, model.InsightsResponse{
		Insights:       insights,
		TotalSpent:     analytics.Round2(cur),
		MonthlyAverage: analytics.Round2(year / 12),
	})
}

func (h *handler) BillsIncome(c echo.Context) error {
	year, month, err := h.period(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	var income, bills float64
	var rows []model.AnalyzedBill
	for _, t := range h.inMonth(year, month) {
		switch {
		case t.Category == "Income" && t.Amount > 0:
			income += t.Amount
		case t.Amount < 0 && analytics.IsBill(t.Category):
			bills += -t.Amount
			rows = append(rows, model.AnalyzedBill{Merchant: t.Merchant, Amount: -t.Amount, Date: t.Date})
		}
	}
	for i := range rows {
		rows[i].Percentage = model.FlexFloat(analytics.Round2(analytics.Percent(rows[i].Amount, income)))
	}
	if rows == nil {
		rows = []model.AnalyzedBill{}
	}

	ratio := analytics.IncomeRatio(bills, income)
	return c.JSON(http.StatusOK, model.BillsIncomeAnalysis{
		MonthlyIncome:             model.Float(analytics.Round2(income)),
		TotalBills:                model.Float(analytics.Round2(bills)),
		BillsToIncomeRatio:        model.Float(analytics.Round2(ratio.RatioPct)),
		RemainingIncome:           model.Float(analytics.Round2(ratio.Remaining)),
		RemainingIncomePercentage: model.Float(analytics.Round2(ratio.RemainingPct)),
		Bills:                     rows,
		Year:                      year,
		Month:                     int(month),
		MonthName:                 month.String(),
	})
}

func (h *handler) Income(c echo.Context) error {
	year, month, err := h.period(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	txns, total := h.income(year, month)
	return c.JSON(http.StatusOK, model.IncomeResponse{
		Transactions: txns,
		TotalIncome:  &total,
		Year:         year,
		Month:        int(month),
		MonthName:    month.String(),
	})
}

func (h *handler) MonthlyIncome(c echo.Context) error {
	year, month, err := h.period(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	_, total := h.income(year, month)
	return c.JSON(http.StatusOK, model.MonthlyIncome{
		Year:          year,
		Month:         int(month),
		MonthName:     month.String(),
		MonthlyIncome: total,
	})
}

func (h *handler) income(year int, month time.Month) ([]model.Transaction, float64) {
	txns := []model.Transaction{}
	var total float64
	for _, t := range h.inMonth(year, month) {
		if t.Category == "Income" && t.Amount > 0 {
			txns = append(txns, t)
			total += t.Amount
		}
	}
	return txns, analytics.Round2(total)
}

func (h *handler) Transactions(c echo.Context) error {
	txns := h.f.Transactions
	if txns == nil {
		txns = []model.Transaction{}
	}
	return c.JSON(http.StatusOK, txns)
}

func (h *handler) lastDays(n int) []model.Transaction {
	return h.between(h.f.Now.AddDate(0, 0, -n), h.f.Now)
}

// between returns transactions in [from, to).
func (h *handler) between(from, to time.Time) []model.Transaction {
	var out []model.Transaction
	for _, t := range h.f.Transactions {
		if !t.Date.Before(from) && t.Date.Before(to) {
			out = append(out, t)
		}
	}
	return out
}

func (h *handler) inMonth(year int, month time.Month) []model.Transaction {
	var out []model.Transaction
	for _, t := range h.f.Transactions {
		if t.Date.Year() == year && t.Date.Month() == month {
			out = append(out, t)
		}
	}
	return out
}

func isSpend(t model.Transaction) bool {
	return t.Amount < 0 && !analytics.IsExcluded(t.Category)
}

// topCategories ranks discretionary spend; n <= 0 returns every category.
func topCategories(txns []model.Transaction, n int) []model.CategorySpend {
	totals := map[string]float64{}
	for _, t := range txns {
		if t.Amount < 0 && t.Category != "" {
			totals[t.Category] += t.Amount
		}
	}
	shares := analytics.CategoryBreakdown(totals)
	if n > 0 {
		shares = analytics.Top(shares, n)
	}
	out := make([]model.CategorySpend, len(shares))
	for i, s := range shares {
		out[i] = model.CategorySpend{
			Category:   s.Category,
			TotalSpent: analytics.Round2(s.Amount),
			Percentage: model.FlexFloat(math.Round(s.Percentage*10) / 10),
		}
	}
	return out
}

// timePatterns groups spend into hour-of-day by weekday cells.
func timePatterns(txns []model.Transaction) []model.TimePattern {
	type key struct {
		hour int
		day  time.Weekday
	}
	type agg struct {
		n   int
		sum float64
	}
	cells := map[key]*agg{}
	for _, t := range txns {
		if t.Amount >= 0 || t.Date.IsZero() {
			continue
		}
		k := key{t.Date.Hour(), t.Date.Weekday()}
		a := cells[k]
		if a == nil {
			a = &agg{}
			cells[k] = a
		}
		a.n++
		a.sum += -t.Amount
	}

	out := make([]model.TimePattern, 0, len(cells))
	for k, a := range cells {
		out = append(out, model.TimePattern{
			TimeOfDay:    fmt.Sprintf("%02d:00", k.hour),
			DayOfWeek:    k.day.String(),
			Frequency:    a.n,
			AverageSpend: analytics.Round2(a.sum / float64(a.n)),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Frequency != out[j].Frequency {
			return out[i].Frequency > out[j].Frequency
		}
		if out[i].DayOfWeek != out[j].DayOfWeek {
			return out[i].DayOfWeek < out[j].DayOfWeek
		}
		return out[i].TimeOfDay < out[j].TimeOfDay
	})
	return out
}
