package api

// Resource names one backend endpoint.
type Resource string

const (
	ResourceUser           Resource = "user"
	ResourceOverview       Resource = "overview"
	ResourceBills          Resource = "bills"
	ResourceCategories     Resource = "categories"
	ResourceCategoryTotals Resource = "category-totals"
	ResourcePredictions    Resource = "predictions"
	ResourcePatterns       Resource = "patterns"
	ResourceInsights       Resource = "insights"
	ResourceBillsIncome    Resource = "bills-income"
	ResourceIncome         Resource = "income"
	ResourceMonthlyIncome  Resource = "monthly-income"
	ResourceTransactions   Resource = "transactions"
)

// Resources lists every endpoint in a stable order.
var Resources = []Resource{
	ResourceUser,
	ResourceOverview,
	ResourceBills,
	ResourceCategories,
	ResourceCategoryTotals,
	ResourcePredictions,
	ResourcePatterns,
	ResourceInsights,
	ResourceBillsIncome,
	ResourceIncome,
	ResourceMonthlyIncome,
	ResourceTransactions,
}

var resourcePaths = map[Resource]string{
	ResourceUser:           "/api/user/{account}",
	ResourceOverview:       "/api/analytics/{account}",
	ResourceBills:          "/api/bills/{account}",
	ResourceCategories:     "/api/categories/{account}",
	ResourceCategoryTotals: "/api/categories/{account}/totals",
	ResourcePredictions:    "/api/predictions/{account}",
	ResourcePatterns:       "/api/patterns/{account}",
	ResourceInsights:       "/api/insights/{account}",
	ResourceBillsIncome:    "/api/analysis/bills-income/{account}",
	ResourceIncome:         "/api/income/{account}",
	ResourceMonthlyIncome:  "/api/income/{account}/monthly",
	ResourceTransactions:   "/api/transactions/{account}",
}

func (r Resource) pathTemplate() string {
	return resourcePaths[r]
}

// ParseResource resolves a resource by name.
func ParseResource(name string) (Resource, bool) {
	r := Resource(name)
	_, ok := resourcePaths[r]
	return r, ok
}
