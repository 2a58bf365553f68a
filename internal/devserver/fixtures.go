package devserver

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/theirongolddev/finburn/internal/model"
)

// Fixtures is the data set the mock backend serves.
type Fixtures struct {
	User         model.User
	Transactions []model.Transaction
	// Now anchors relative windows such as "last 30 days".
	Now time.Time
}

// Account returns the fixture account id.
func (f Fixtures) Account() string { return f.User.AccountID }

// Generate builds a deterministic year of transactions ending at now.
// The same seed always yields the same data.
func Generate(seed int64, accountID string, now time.Time) Fixtures {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // fixture data, not security sensitive
	g := generator{rng: rng, account: accountID}

	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	start := end.AddDate(-1, 0, 0)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		g.day(day, now)
	}

	sort.SliceStable(g.txns, func(i, j int) bool { return g.txns[i].Date.Before(g.txns[j].Date.Time) })
	for i := range g.txns {
		g.txns[i].TransactionID = fmt.Sprintf("TXN%05d", i+1)
	}

	return Fixtures{
		User: model.User{
			AccountID:     accountID,
			AccountName:   "Everyday Checking",
			AccountType:   "checking",
			AccountNumber: "****4821",
			Balance:       model.Balance{Current: 8423.17, Available: 8123.17, Currency: "USD"},
			OwnerName:     "Jane Doe",
			BankDetails:   model.BankDetails{BankName: "First Demo Bank", RoutingNumber: "021000021", Branch: "Main Street"},
		},
		Transactions: g.txns,
		Now:          now,
	}
}

type generator struct {
	rng     *rand.Rand
	account string
	txns    []model.Transaction
}

func (g *generator) add(day time.Time, hour int, amount float64, category, merchant, desc string, now time.Time) {
	at := day.Add(time.Duration(hour)*time.Hour + time.Duration(g.rng.Intn(60))*time.Minute)
	if at.After(now) {
		return
	}
	status := "completed"
	if now.Sub(at) < 48*time.Hour {
		status = "pending"
	}
	g.txns = append(g.txns, model.Transaction{
		AccountID:   g.account,
		Date:        model.NewDate(at),
		Amount:      math.Round(amount*100) / 100,
		Category:    category,
		Merchant:    merchant,
		Location:    "San Francisco, CA",
		Description: desc,
		Status:      status,
	})
}

func (g *generator) between(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

func (g *generator) day(d, now time.Time) {
	switch d.Day() {
	case 1:
		g.add(d, 9, -float64(2200+g.rng.Intn(101)), "Rent", "Landlord Properties", "Monthly rent", now)
		g.add(d, 8, 2500, "Income", "Acme Corp Payroll", "Salary deposit", now)
	case 5:
		g.add(d, 3, -15.99, "Entertainment", "Netflix", "Streaming subscription", now)
	case 10:
		g.add(d, 10, -g.between(80, 140), "Electric Bill", "City Power & Light", "Electric bill", now)
	case 12:
		g.add(d, 10, -69.99, "Internet", "Comcast", "Internet service", now)
	case 15:
		g.add(d, 8, 2500, "Income", "Acme Corp Payroll", "Salary deposit", now)
	case 18:
		g.add(d, 11, -55.00, "Phone Bill", "Verizon", "Mobile plan", now)
	case 20:
		g.add(d, 11, -g.between(110, 130), "Insurance", "State Farm", "Auto insurance", now)
	}

	if d.Day()%7 == 0 {
		stores := []string{"Whole Foods", "Trader Joe's", "Safeway"}
		g.add(d, 17+g.rng.Intn(3), -float64(50+g.rng.Intn(101)), "Groceries", stores[g.rng.Intn(len(stores))], "Weekly groceries", now)
	}
	if g.rng.Float64() < 0.7 {
		g.add(d, 7+g.rng.Intn(3), -g.between(5.75, 7.75), "Food & Dining", "Starbucks", "Coffee", now)
	}
	if g.rng.Float64() < 0.4 {
		g.add(d, 12+g.rng.Intn(2), -g.between(12.99, 15.99), "Food & Dining", "Chipotle", "Lunch", now)
	}
	if g.rng.Float64() < 0.3 {
		merchant, cat := "Uber", "Transportation"
		if g.rng.Intn(2) == 0 {
			merchant, cat = "Uber Eats", "Food & Dining"
		}
		g.add(d, 18+g.rng.Intn(5), -float64(10+g.rng.Intn(31)), cat, merchant, "", now)
	}
	if g.rng.Float64() < 0.2 {
		items := []string{"Electronics", "Books", "Clothing", "Home", "Other"}
		g.add(d, 20+g.rng.Intn(3), -float64(10+g.rng.Intn(91)), "Shopping", "Amazon", items[g.rng.Intn(len(items))], now)
	}
}
