package analytics

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/finburn/internal/model"
)

// Part-of-day bucket labels.
const (
	Morning   = "Morning"
	Afternoon = "Afternoon"
	Evening   = "Evening"
	Night     = "Night"
)

// PartsOfDay lists the bucket labels in display order.
var PartsOfDay = []string{Morning, Afternoon, Evening, Night}

// Weekdays lists day names Monday first.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// PartOfDay maps an hour (0-23) to its bucket: morning 05-11, afternoon
// 12-16, evening 17-20, night 21-04.
func PartOfDay(hour int) string {
	switch {
	case hour >= 5 && hour <= 11:
		return Morning
	case hour >= 12 && hour <= 16:
		return Afternoon
	case hour >= 17 && hour <= 20:
		return Evening
	default:
		return Night
	}
}

// Bucket is one labelled amount in a pattern chart.
type Bucket struct {
	Label      string  `json:"label" yaml:"label"`
	Amount     float64 `json:"amount" yaml:"amount"`
	Percentage float64 `json:"percentage" yaml:"percentage"`
}

// PatternBuckets is the chart-ready form of spending patterns.
type PatternBuckets struct {
	TimeOfDay []Bucket                     `json:"timeOfDay" yaml:"time_of_day"`
	DayOfWeek []Bucket                     `json:"dayOfWeek" yaml:"day_of_week"`
	Recurring []model.RecurringTransaction `json:"recurring" yaml:"recurring"`
}

// PeakTime returns the busiest part of day, or "" when there is no spend.
func (p PatternBuckets) PeakTime() string { return peak(p.TimeOfDay) }

// PeakDay returns the busiest weekday, or "" when there is no spend.
func (p PatternBuckets) PeakDay() string { return peak(p.DayOfWeek) }

func peak(bs []Bucket) string {
	best := ""
	top := 0.0
	for _, b := range bs {
		if b.Amount > top {
			best, top = b.Label, b.Amount
		}
	}
	return best
}

// Patterns normalizes either payload variant into fixed buckets.
func Patterns(p model.SpendingPatterns) PatternBuckets {
	if p.Buckets == nil && p.DayOfWeek == nil {
		return FromTimePatterns(p.Cells)
	}

	tod := map[string]float64{}
	if b := p.Buckets; b != nil {
		tod[Morning] = b.Morning
		tod[Afternoon] = b.Afternoon
		tod[Evening] = b.Evening
		tod[Night] = b.Night
	}
	dow := map[string]float64{}
	for day, v := range p.DayOfWeek {
		dow[canonicalDay(day)] += v
	}

	out := PatternBuckets{
		TimeOfDay: ordered(PartsOfDay, tod),
		DayOfWeek: ordered(Weekdays, dow),
		Recurring: append([]model.RecurringTransaction(nil), p.RecurringTransactions...),
	}
	sortRecurring(out.Recurring)
	return out
}

// FromTimePatterns folds hour/weekday cells into buckets. Each cell
// contributes frequency times average spend.
func FromTimePatterns(cells []model.TimePattern) PatternBuckets {
	tod := map[string]float64{}
	dow := map[string]float64{}
	for _, c := range cells {
		amt := float64(c.Frequency) * c.AverageSpend
		if !finite(amt) {
			continue
		}
		if h, ok := parseHour(c.TimeOfDay); ok {
			tod[PartOfDay(h)] += amt
		}
		if c.DayOfWeek != "" {
			dow[canonicalDay(c.DayOfWeek)] += amt
		}
	}
	return PatternBuckets{
		TimeOfDay: ordered(PartsOfDay, tod),
		DayOfWeek: ordered(Weekdays, dow),
	}
}

// PatternsFromTransactions buckets raw spend by local hour and weekday and
// detects recurring merchants.
func PatternsFromTransactions(txns []model.Transaction) PatternBuckets {
	tod := map[string]float64{}
	dow := map[string]float64{}
	for _, t := range txns {
		if t.Date.IsZero() || t.Amount >= 0 || !finite(t.Amount) {
			continue
		}
		amt := math.Abs(t.Amount)
		tod[PartOfDay(t.Date.Hour())] += amt
		dow[t.Date.Weekday().String()] += amt
	}
	return PatternBuckets{
		TimeOfDay: ordered(PartsOfDay, tod),
		DayOfWeek: ordered(Weekdays, dow),
		Recurring: Recurring(txns),
	}
}

// minRecurring is the number of charges before a merchant counts as recurring.
const minRecurring = 3

// Recurring finds merchants charged at least three times and labels their
// cadence from the mean gap between charges.
func Recurring(txns []model.Transaction) []model.RecurringTransaction {
	byMerchant := map[string][]model.Transaction{}
	for _, t := range txns {
		if t.Merchant == "" || t.Amount >= 0 || t.Date.IsZero() {
			continue
		}
		byMerchant[t.Merchant] = append(byMerchant[t.Merchant], t)
	}

	var out []model.RecurringTransaction
	for m, ts := range byMerchant {
		if len(ts) < minRecurring {
			continue
		}
		sort.Slice(ts, func(i, j int) bool { return ts[i].Date.Before(ts[j].Date.Time) })

		var acc accumulator
		for _, t := range ts {
			acc.add(math.Abs(t.Amount))
		}
		span := ts[len(ts)-1].Date.Sub(ts[0].Date.Time)
		gap := span / time.Duration(len(ts)-1)

		out = append(out, model.RecurringTransaction{
			Merchant:  m,
			Amount:    Round2(acc.value() / float64(len(ts))),
			Frequency: cadence(gap),
		})
	}
	sortRecurring(out)
	return out
}

func cadence(gap time.Duration) string {
	days := gap.Hours() / 24
	switch {
	case days < 2:
		return "Daily"
	case days <= 10:
		return "Weekly"
	case days <= 20:
		return "Biweekly"
	case days <= 45:
		return "Monthly"
	default:
		return "Irregular"
	}
}

func sortRecurring(rs []model.RecurringTransaction) {
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].Amount != rs[j].Amount {
			return rs[i].Amount > rs[j].Amount
		}
		return rs[i].Merchant < rs[j].Merchant
	})
}

func ordered(labels []string, values map[string]float64) []Bucket {
	var acc accumulator
	for _, l := range labels {
		acc.add(values[l])
	}
	total := acc.value()

	out := make([]Bucket, len(labels))
	for i, l := range labels {
		v := values[l]
		if !finite(v) {
			v = 0
		}
		out[i] = Bucket{Label: l, Amount: v, Percentage: Percent(v, total)}
	}
	return out
}

func parseHour(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, ':'); i >= 0 {
		s = s[:i]
	}
	h, err := strconv.Atoi(s)
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	return h, true
}

func canonicalDay(s string) string {
	s = strings.TrimSpace(s)
	for _, d := range Weekdays {
		if strings.EqualFold(s, d) || strings.EqualFold(s, d[:3]) {
			return d
		}
	}
	return s
}
