package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/theirongolddev/finburn/internal/model"
)

// Indicator flags unusually heavy or light spending in a category.
type Indicator string

const (
	IndicatorHigh   Indicator = "high"
	IndicatorNormal Indicator = "normal"
	IndicatorLow    Indicator = "low"
)

// Trend compares a category's spend with the previous period.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

const (
	heavyAmount    = 1000.0
	heavyFrequency = 20
)

const fallbackEmoji = "🏪"

var merchantEmojis = map[string]string{
	"Amazon.com":        "📦",
	"Target":            "🎯",
	"Walmart":           "🛒",
	"Best Buy":          "🔌",
	"Home Depot":        "🏠",
	"IKEA":              "🪑",
	"Netflix":           "🎬",
	"Spotify":           "🎵",
	"Apple Music":       "🎧",
	"Steam":             "🎮",
	"PlayStation":       "🕹️",
	"Xbox":              "🎯",
	"AMC Theaters":      "🍿",
	"Regal Cinemas":     "🎦",
	"Uber":              "🚗",
	"Lyft":              "🚙",
	"Shell":             "⛽",
	"Chevron":           "⛽",
	"Delta Airlines":    "✈️",
	"United Airlines":   "✈️",
	"American Airlines": "✈️",
	"Uber Eats":         "🥡",
	"DoorDash":          "🛵",
	"GrubHub":           "🍽️",
	"Starbucks":         "☕",
	"Dunkin":            "🍩",
	"McDonalds":         "🍔",
	"Chipotle":          "🌯",
	"Subway":            "🥖",
	"Pizza Hut":         "🍕",
	"Dominos":           "🍕",
	"Airbnb":            "🏡",
	"Hotels.com":        "🏨",
	"Marriott":          "🏨",
	"Hilton":            "🏨",
	"Expedia":           "🌎",
	"Restaurant":        "🍽️",
	"Bar":               "🍺",
	"Grocery":           "🛒",
	"Clothing":          "👕",
	"Entertainment":     "🎭",
	"Books":             "📚",
	"Online":            "💻",
	"Pharmacy":          "💊",
	"Health":            "🏥",
	"Fitness":           "🏋️",
	"Sports":            "⚽",
	"Education":         "📚",
	"Pet Supplies":      "🐾",
	"Beauty":            "💄",
	"Gaming":            "🎮",
	"Music":             "🎵",
	"Movies":            "🎬",
	"Coffee Shop":       "☕",
}

// MerchantEmoji returns the icon for a merchant, or a generic store.
func MerchantEmoji(name string) string {
	if e, ok := merchantEmojis[name]; ok {
		return e
	}
	return fallbackEmoji
}

// MerchantSpend is one merchant's share of a category.
type MerchantSpend struct {
	Name   string  `json:"name" yaml:"name"`
	Amount float64 `json:"amount" yaml:"amount"`
	Count  int     `json:"count" yaml:"count"`
	Emoji  string  `json:"emoji" yaml:"emoji"`
}

// CategoryInsight summarizes one category over a period.
type CategoryInsight struct {
	Category      string          `json:"category" yaml:"category"`
	TotalSpent    float64         `json:"totalSpent" yaml:"total_spent"`
	PreviousSpent float64         `json:"previousSpent" yaml:"previous_spent"`
	Frequency     int             `json:"frequency" yaml:"frequency"`
	Merchants     []MerchantSpend `json:"merchants" yaml:"merchants"`
	Indicator     Indicator       `json:"indicator" yaml:"indicator"`
	Trend         Trend           `json:"trend" yaml:"trend"`
}

// TopMerchants returns at most n merchants.
func (c CategoryInsight) TopMerchants(n int) []MerchantSpend {
	if n <= 0 || n >= len(c.Merchants) {
		return c.Merchants
	}
	return c.Merchants[:n]
}

// SpendingIndicator classifies a category by amount and transaction count.
func SpendingIndicator(amount float64, frequency int) Indicator {
	switch {
	case amount > heavyAmount && frequency > heavyFrequency:
		return IndicatorHigh
	case amount < heavyAmount/2 && frequency < heavyFrequency/2:
		return IndicatorLow
	default:
		return IndicatorNormal
	}
}

type categoryAcc struct {
	total     accumulator
	count     int
	merchants map[string]*merchantAcc
}

type merchantAcc struct {
	total accumulator
	count int
}

// Insights groups discretionary transactions by category. previous is the
// preceding period, used only for the trend; it may be nil.
func Insights(current, previous []model.Transaction) []CategoryInsight {
	cats := make(map[string]*categoryAcc)
	for _, t := range current {
		if t.Category == "" || IsExcluded(t.Category) || !finite(t.Amount) {
			continue
		}
		c, ok := cats[t.Category]
		if !ok {
			c = &categoryAcc{merchants: make(map[string]*merchantAcc)}
			cats[t.Category] = c
		}
		amt := math.Abs(t.Amount)
		c.total.add(amt)
		c.count++

		m, ok := c.merchants[t.Merchant]
		if !ok {
			m = &merchantAcc{}
			c.merchants[t.Merchant] = m
		}
		m.total.add(amt)
		m.count++
	}

	prev := make(map[string]*accumulator)
	for _, t := range previous {
		if IsExcluded(t.Category) {
			continue
		}
		a, ok := prev[t.Category]
		if !ok {
			a = &accumulator{}
			prev[t.Category] = a
		}
		a.add(math.Abs(t.Amount))
	}

	out := make([]CategoryInsight, 0, len(cats))
	for name, c := range cats {
		ins := CategoryInsight{
			Category:   name,
			TotalSpent: c.total.value(),
			Frequency:  c.count,
		}
		if p, ok := prev[name]; ok {
			ins.PreviousSpent = p.value()
		}
		switch {
		case ins.TotalSpent > ins.PreviousSpent:
			ins.Trend = TrendIncreasing
		case ins.TotalSpent < ins.PreviousSpent:
			ins.Trend = TrendDecreasing
		default:
			ins.Trend = TrendStable
		}
		ins.Indicator = SpendingIndicator(ins.TotalSpent, ins.Frequency)

		for mName, m := range c.merchants {
			ins.Merchants = append(ins.Merchants, MerchantSpend{
				Name:   mName,
				Amount: m.total.value(),
				Count:  m.count,
				Emoji:  MerchantEmoji(mName),
			})
		}
		sort.Slice(ins.Merchants, func(i, j int) bool {
			if ins.Merchants[i].Amount != ins.Merchants[j].Amount {
				return ins.Merchants[i].Amount > ins.Merchants[j].Amount
			}
			return ins.Merchants[i].Name < ins.Merchants[j].Name
		})
		out = append(out, ins)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalSpent != out[j].TotalSpent {
			return out[i].TotalSpent > out[j].TotalSpent
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// SplitPeriod partitions transactions into the window of the given length
// ending at now and the equally long window before it. Anything older, or
// dated after now, is dropped.
func SplitPeriod(txns []model.Transaction, now time.Time, window time.Duration) (current, previous []model.Transaction) {
	start := now.Add(-window)
	prevStart := start.Add(-window)
	for _, t := range txns {
		d := t.Date.Time
		switch {
		case d.After(now):
		case !d.Before(start):
			current = append(current, t)
		case !d.Before(prevStart):
			previous = append(previous, t)
		}
	}
	return current, previous
}
