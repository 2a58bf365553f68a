package model

import "time"

// Snapshot is a compact spending state recorded by the poller.
type Snapshot struct {
	At                time.Time          `json:"at" yaml:"at"`
	Account           string             `json:"account" yaml:"account"`
	TotalSpent        float64            `json:"total_spent" yaml:"total_spent"`
	MonthlyAverage    float64            `json:"monthly_average" yaml:"monthly_average"`
	SpendingRatio     float64            `json:"spending_ratio" yaml:"spending_ratio"`
	BillsTotal        float64            `json:"bills_total" yaml:"bills_total"`
	UpcomingBills     int                `json:"upcoming_bills" yaml:"upcoming_bills"`
	TopCategory       string             `json:"top_category,omitempty" yaml:"top_category,omitempty"`
	TopCategoryAmount float64            `json:"top_category_amount" yaml:"top_category_amount"`
	HighPredictions   int                `json:"high_predictions" yaml:"high_predictions"`
	Categories        map[string]float64 `json:"categories,omitempty" yaml:"categories,omitempty"`
}
