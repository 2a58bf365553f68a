package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexFloat decodes a JSON number, a numeric string, or a "12.5%" string.
type FlexFloat float64

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexFloat(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("flex float: %w", err)
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	if s == "" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("flex float %q: %w", s, err)
	}
	*f = FlexFloat(v)
	return nil
}

// CategorySpend is one category row from the analytics and categories endpoints.
type CategorySpend struct {
	Category   string    `json:"category" validate:"required"`
	TotalSpent float64   `json:"totalSpent"`
	Percentage FlexFloat `json:"percentage,omitempty"`
}

// CategoriesResponse is the payload of /api/categories/{account}.
type CategoriesResponse struct {
	TopCategories []CategorySpend `json:"topCategories" validate:"required,dive"`
}

// TimePattern is one hour/weekday cell of the backend's pattern analysis.
// TimeOfDay is formatted "15:00" and DayOfWeek "Monday".
type TimePattern struct {
	TimeOfDay    string  `json:"timeOfDay"`
	DayOfWeek    string  `json:"dayOfWeek"`
	Frequency    int     `json:"frequency"`
	AverageSpend float64 `json:"averageSpend"`
}

// PredictedSpend is a forecast of spending in one category.
type PredictedSpend struct {
	Category      string  `json:"category" validate:"required"`
	Likelihood    float64 `json:"likelihood" validate:"gte=0,lte=1"`
	PredictedDate Date    `json:"predictedDate"`
	Warning       string  `json:"warning,omitempty"`
	Amount        float64 `json:"amount"`
}

// SpendingAnalytics is the payload of /api/analytics/{account}.
type SpendingAnalytics struct {
	Account           string           `json:"account" validate:"required"`
	TopCategories     []CategorySpend  `json:"top_categories" validate:"dive"`
	SpendingPatterns  []TimePattern    `json:"spending_patterns"`
	PredictedSpending []PredictedSpend `json:"predicted_spending"`
	TotalSpent        *float64         `json:"total_spent" validate:"required"`
	MonthlyAverage    float64          `json:"monthly_average"`
}

// TimeOfDayBuckets counts activity per part of day.
type TimeOfDayBuckets struct {
	Morning   float64 `json:"morning"`
	Afternoon float64 `json:"afternoon"`
	Evening   float64 `json:"evening"`
	Night     float64 `json:"night"`
}

// RecurringTransaction is a merchant charged on a regular cadence.
type RecurringTransaction struct {
	Merchant  string  `json:"merchant"`
	Amount    float64 `json:"amount"`
	Frequency string  `json:"frequency"`
}

// SpendingPatterns is the payload of /api/patterns/{account}. The backend
// returns either a flat list of hour/weekday cells or pre-bucketed totals;
// exactly one of Cells or Buckets is populated after decoding.
type SpendingPatterns struct {
	Cells []TimePattern `json:"-"`

	Buckets               *TimeOfDayBuckets      `json:"timeOfDay,omitempty"`
	DayOfWeek             map[string]float64     `json:"dayOfWeek,omitempty"`
	RecurringTransactions []RecurringTransaction `json:"recurringTransactions,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *SpendingPatterns) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return fmt.Errorf("patterns: empty payload")
	}

	if trimmed[0] == '[' {
		var cells []TimePattern
		if err := json.Unmarshal(trimmed, &cells); err != nil {
			return fmt.Errorf("patterns: %w", err)
		}
		*p = SpendingPatterns{Cells: cells}
		return nil
	}

	type plain SpendingPatterns
	var out plain
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return fmt.Errorf("patterns: %w", err)
	}
	if out.Buckets == nil && out.DayOfWeek == nil {
		return fmt.Errorf("patterns: missing timeOfDay and dayOfWeek")
	}
	*p = SpendingPatterns(out)
	return nil
}

// MarshalJSON emits the cell list when present, otherwise the bucket object.
func (p SpendingPatterns) MarshalJSON() ([]byte, error) {
	if p.Cells != nil {
		return json.Marshal(p.Cells)
	}
	type plain SpendingPatterns
	return json.Marshal(plain(p))
}

// InsightDatum is one category line inside an insight.
type InsightDatum struct {
	Category   string    `json:"category"`
	TotalSpent float64   `json:"totalSpent"`
	Percentage FlexFloat `json:"percentage"`
}

// Insight is a server-generated observation about spending.
type Insight struct {
	Type        string         `json:"type"`
	Title       string         `json:"title" validate:"required"`
	Description string         `json:"description"`
	Data        []InsightDatum `json:"data,omitempty"`
}

// InsightsResponse is the payload of /api/insights/{account}.
type InsightsResponse struct {
	Insights       []Insight `json:"insights" validate:"required,dive"`
	TotalSpent     float64   `json:"totalSpent"`
	MonthlyAverage float64   `json:"monthlyAverage"`
}
