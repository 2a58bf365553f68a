package model

// BillSpend is one merchant row of the monthly bills summary. The backend
// labels the merchant "category" and sends percentage as a string.
type BillSpend struct {
	Merchant   string    `json:"category" validate:"required"`
	TotalSpent float64   `json:"totalSpent"`
	Percentage FlexFloat `json:"percentage"`
}

// BillsResponse is the payload of /api/bills/{account}.
type BillsResponse struct {
	TopBills   []BillSpend `json:"topBills" validate:"required,dive"`
	TotalSpent float64     `json:"totalSpent"`
	Year       int         `json:"year"`
	Month      int         `json:"month" validate:"omitempty,min=1,max=12"`
	MonthName  string      `json:"monthName"`
}

// AnalyzedBill is one bill inside the bills-vs-income analysis.
type AnalyzedBill struct {
	Merchant   string    `json:"merchant"`
	Amount     float64   `json:"amount"`
	Percentage FlexFloat `json:"percentage"`
	Date       Date      `json:"date"`
}

// IncomeBalance is the nested variant of the bills-vs-income figures.
type IncomeBalance struct {
	MonthlyIncome             *float64 `json:"monthlyIncome"`
	TotalBills                *float64 `json:"totalBills"`
	BillsToIncomeRatio        *float64 `json:"billsToIncomeRatio"`
	RemainingIncome           *float64 `json:"remainingIncome"`
	RemainingIncomePercentage *float64 `json:"remainingIncomePercentage"`
}

// BillsIncomeAnalysis is the payload of the bills-vs-income endpoint.
// The flat fields are authoritative; Balance is read only when they are absent.
type BillsIncomeAnalysis struct {
	MonthlyIncome             *float64       `json:"monthlyIncome,omitempty"`
	TotalBills                *float64       `json:"totalBills,omitempty"`
	BillsToIncomeRatio        *float64       `json:"billsToIncomeRatio,omitempty"`
	RemainingIncome           *float64       `json:"remainingIncome,omitempty"`
	RemainingIncomePercentage *float64       `json:"remainingIncomePercentage,omitempty"`
	Balance                   *IncomeBalance `json:"balance,omitempty"`
	Bills                     []AnalyzedBill `json:"bills"`
	Year                      int            `json:"year"`
	Month                     int            `json:"month" validate:"omitempty,min=1,max=12"`
	MonthName                 string         `json:"monthName"`
}

// Normalize folds the nested balance variant into the flat fields.
// It reports false when neither shape carries income and bill totals.
func (a *BillsIncomeAnalysis) Normalize() bool {
	if a.Balance != nil {
		if a.MonthlyIncome == nil {
			a.MonthlyIncome = a.Balance.MonthlyIncome
		}
		if a.TotalBills == nil {
			a.TotalBills = a.Balance.TotalBills
		}
		if a.BillsToIncomeRatio == nil {
			a.BillsToIncomeRatio = a.Balance.BillsToIncomeRatio
		}
		if a.RemainingIncome == nil {
			a.RemainingIncome = a.Balance.RemainingIncome
		}
		if a.RemainingIncomePercentage == nil {
			a.RemainingIncomePercentage = a.Balance.RemainingIncomePercentage
		}
		a.Balance = nil
	}
	return a.MonthlyIncome != nil && a.TotalBills != nil
}

// IncomeResponse is the payload of /api/income/{account}.
type IncomeResponse struct {
	Transactions []Transaction `json:"transactions" validate:"dive"`
	TotalIncome  *float64      `json:"totalIncome" validate:"required"`
	Year         int           `json:"year"`
	Month        int           `json:"month" validate:"omitempty,min=1,max=12"`
	MonthName    string        `json:"monthName"`
}

// MonthlyIncome is the payload of /api/income/{account}/monthly.
type MonthlyIncome struct {
	Year          int     `json:"year"`
	Month         int     `json:"month" validate:"min=1,max=12"`
	MonthName     string  `json:"monthName"`
	MonthlyIncome float64 `json:"monthlyIncome"`
}

// Float returns a pointer to v, for building payloads with optional numbers.
func Float(v float64) *float64 { return &v }
