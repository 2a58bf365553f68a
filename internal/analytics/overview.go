package analytics

import (
	"errors"
	"strings"

	"github.com/theirongolddev/finburn/internal/model"
)

// ErrIncomplete is returned when a payload lacks a field a view depends on.
var ErrIncomplete = errors.New("analytics: incomplete payload")

// Thresholds for the overview verdicts.
const (
	onTrackRatio       = 0.7
	goodDiversity      = 0.5
	diversityMaxActive = 10
)

// Overview status labels.
const (
	StatusOnTrack      = "On Track"
	StatusHighSpending = "High Spending"
)

// OverviewStats is the headline view of an account's spending.
type OverviewStats struct {
	Account          string          `json:"account" yaml:"account"`
	TotalSpent       float64         `json:"totalSpent" yaml:"total_spent"`
	MonthlyAverage   float64         `json:"monthlyAverage" yaml:"monthly_average"`
	ActiveCategories int             `json:"activeCategories" yaml:"active_categories"`
	SpendingRatio    float64         `json:"spendingRatio" yaml:"spending_ratio"`
	Diversity        float64         `json:"categoryDiversity" yaml:"category_diversity"`
	Status           string          `json:"status" yaml:"status"`
	Tips             []string        `json:"tips" yaml:"tips"`
	TopCategories    []CategoryShare `json:"topCategories" yaml:"top_categories"`
}

// OnTrack reports whether spending is below the monthly-average threshold.
func (o OverviewStats) OnTrack() bool { return o.Status == StatusOnTrack }

// Overview derives the headline stats. It fails when the account or
// total_spent is missing.
func Overview(a model.SpendingAnalytics) (OverviewStats, error) {
	if strings.TrimSpace(a.Account) == "" || a.TotalSpent == nil {
		return OverviewStats{}, ErrIncomplete
	}

	total := *a.TotalSpent
	if !finite(total) {
		total = 0
	}
	avg := a.MonthlyAverage
	if !finite(avg) {
		avg = 0
	}
	// A non-positive average is no baseline to compare against.
	ratio := 0.0
	if avg > 0 {
		ratio = Ratio(total, avg)
	}

	s := OverviewStats{
		Account:          a.Account,
		TotalSpent:       total,
		MonthlyAverage:   avg,
		ActiveCategories: len(a.TopCategories),
		SpendingRatio:    ratio,
		TopCategories:    FromTopCategories(a.TopCategories),
	}
	s.Diversity = float64(s.ActiveCategories) / diversityMaxActive

	if s.SpendingRatio < onTrackRatio {
		s.Status = StatusOnTrack
		s.Tips = append(s.Tips, "Great job maintaining your spending habits!")
	} else {
		s.Status = StatusHighSpending
		s.Tips = append(s.Tips, "Consider reviewing your discretionary spending")
	}
	if s.Diversity > goodDiversity {
		s.Tips = append(s.Tips, "Good category distribution!")
	} else {
		s.Tips = append(s.Tips, "Try diversifying your spending categories")
	}
	return s, nil
}
