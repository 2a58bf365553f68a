package pipeline

import (
	"time"

	"github.com/theirongolddev/finburn/internal/analytics"
	"github.com/theirongolddev/finburn/internal/api"
	"github.com/theirongolddev/finburn/internal/model"
)

// State is the lifecycle of one widget's data.
type State int

const (
	StateLoading State = iota
	StateError
	StateReady
)

func (s State) String() string {
	switch s {
	case StateError:
		return "error"
	case StateReady:
		return "ready"
	default:
		return "loading"
	}
}

// Widget holds exactly one of: nothing yet (loading), an error, or data.
type Widget[T any] struct {
	Data      T
	Err       error
	State     State
	Stale     bool
	FetchedAt time.Time
}

// Ready reports whether Data is populated.
func (w Widget[T]) Ready() bool { return w.State == StateReady }

// Failed reports whether the load ended in an error.
func (w Widget[T]) Failed() bool { return w.State == StateError }

// Message is the user-facing error text, or "".
func (w Widget[T]) Message() string {
	if w.State != StateError {
		return ""
	}
	return api.Message(w.Err)
}

func ready[T any](data T, f fetched) Widget[T] {
	return Widget[T]{Data: data, State: StateReady, Stale: f.stale, FetchedAt: f.at}
}

func failed[T any](err error) Widget[T] {
	return Widget[T]{Err: err, State: StateError}
}

// BillsView combines the monthly bills summary with its merchant breakdown.
type BillsView struct {
	Summary   model.BillsResponse       `json:"summary" yaml:"summary"`
	Merchants []analytics.CategoryShare `json:"merchants" yaml:"merchants"`
}

// BillsIncomeView is bills against income plus the per-month grid.
type BillsIncomeView struct {
	Analysis model.BillsIncomeAnalysis `json:"analysis" yaml:"analysis"`
	Ratio    analytics.BillsRatio      `json:"ratio" yaml:"ratio"`
	Grid     []analytics.MonthBills    `json:"grid" yaml:"grid"`
}

// Dashboard is every widget's state after a load.
type Dashboard struct {
	Account  string
	Period   Period
	LoadedAt time.Time

	User           Widget[model.User]
	Overview       Widget[analytics.OverviewStats]
	Categories     Widget[[]analytics.CategoryShare]
	TopCategories  Widget[[]analytics.CategoryShare]
	ServerInsights Widget[model.InsightsResponse]
	Bills          Widget[BillsView]
	BillsIncome    Widget[BillsIncomeView]
	Income         Widget[model.MonthlyIncome]
	IncomeDetail   Widget[model.IncomeResponse]
	Predictions    Widget[[]analytics.Prediction]
	Patterns       Widget[analytics.PatternBuckets]
	Transactions   Widget[[]model.Transaction]

	// Derived from Transactions.
	Insights     Widget[[]analytics.CategoryInsight]
	BillSchedule Widget[analytics.BillsSummary]
}

// NewDashboard returns a dashboard with every widget loading.
func NewDashboard(account string, p Period) *Dashboard {
	return &Dashboard{Account: account, Period: p}
}

// Errors returns the failed widgets keyed by resource.
func (d *Dashboard) Errors() map[api.Resource]error {
	out := map[api.Resource]error{}
	add := func(r api.Resource, st State, err error) {
		if st == StateError {
			out[r] = err
		}
	}
	add(api.ResourceUser, d.User.State, d.User.Err)
	add(api.ResourceOverview, d.Overview.State, d.Overview.Err)
	add(api.ResourceCategoryTotals, d.Categories.State, d.Categories.Err)
	add(api.ResourceCategories, d.TopCategories.State, d.TopCategories.Err)
	add(api.ResourceInsights, d.ServerInsights.State, d.ServerInsights.Err)
	add(api.ResourceBills, d.Bills.State, d.Bills.Err)
	add(api.ResourceBillsIncome, d.BillsIncome.State, d.BillsIncome.Err)
	add(api.ResourceMonthlyIncome, d.Income.State, d.Income.Err)
	add(api.ResourceIncome, d.IncomeDetail.State, d.IncomeDetail.Err)
	add(api.ResourcePredictions, d.Predictions.State, d.Predictions.Err)
	add(api.ResourcePatterns, d.Patterns.State, d.Patterns.Err)
	add(api.ResourceTransactions, d.Transactions.State, d.Transactions.Err)
	return out
}

// AnyStale reports whether any ready widget was served from the offline cache.
func (d *Dashboard) AnyStale() bool {
	return d.User.Stale || d.Overview.Stale || d.Categories.Stale || d.TopCategories.Stale ||
		d.ServerInsights.Stale || d.Bills.Stale || d.BillsIncome.Stale || d.Income.Stale ||
		d.IncomeDetail.Stale || d.Predictions.Stale || d.Patterns.Stale || d.Transactions.Stale
}

// Period selects the month for bill and income endpoints. Zero values
// defer to the backend's current month.
type Period struct {
	Year  int
	Month int
}
