package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/theirongolddev/finburn/internal/model"
)

// HighLikelihood is the threshold above which a prediction is flagged.
const HighLikelihood = 0.7

// Prediction is a forecast prepared for display.
type Prediction struct {
	Category      string    `json:"category" yaml:"category"`
	Likelihood    float64   `json:"likelihood" yaml:"likelihood"`
	Label         string    `json:"label" yaml:"label"`
	PredictedDate time.Time `json:"predictedDate" yaml:"predicted_date"`
	Amount        float64   `json:"amount" yaml:"amount"`
	Warning       string    `json:"warning,omitempty" yaml:"warning,omitempty"`
	High          bool      `json:"high" yaml:"high"`
}

// Predictions drops excluded categories, clamps likelihood into [0,1] and
// orders by likelihood descending, then category.
func Predictions(preds []model.PredictedSpend) []Prediction {
	out := make([]Prediction, 0, len(preds))
	for _, p := range preds {
		if IsExcluded(p.Category) {
			continue
		}
		l := clamp01(p.Likelihood)
		amt := p.Amount
		if !finite(amt) {
			amt = 0
		}
		out = append(out, Prediction{
			Category:      p.Category,
			Likelihood:    l,
			Label:         fmt.Sprintf("%.0f%%", l*100),
			PredictedDate: p.PredictedDate.Time,
			Amount:        math.Abs(amt),
			Warning:       p.Warning,
			High:          l > HighLikelihood,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Likelihood != out[j].Likelihood {
			return out[i].Likelihood > out[j].Likelihood
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// CountHigh returns how many predictions are flagged high.
func CountHigh(preds []Prediction) int {
	n := 0
	for _, p := range preds {
		if p.High {
			n++
		}
	}
	return n
}

// Forecast predicts the next spend per category from transaction history.
// Only categories with at least three debits inside the lookback window are
// considered. Likelihood blends frequency and average size; the date is the
// last charge plus the mean gap between charges.
func Forecast(txns []model.Transaction, now time.Time) []model.PredictedSpend {
	const (
		lookbackDays = 180
		minCharges   = 3
	)
	since := now.AddDate(0, 0, -lookbackDays)

	byCat := map[string][]model.Transaction{}
	for _, t := range txns {
		if t.Amount >= 0 || t.Date.Before(since) || t.Date.After(now) || t.Category == "" {
			continue
		}
		byCat[t.Category] = append(byCat[t.Category], t)
	}

	var out []model.PredictedSpend
	for cat, ts := range byCat {
		if len(ts) < minCharges {
			continue
		}
		sort.Slice(ts, func(i, j int) bool { return ts[i].Date.Before(ts[j].Date.Time) })

		var acc accumulator
		for _, t := range ts {
			acc.add(math.Abs(t.Amount))
		}
		avg := acc.value() / float64(len(ts))
		freq := float64(len(ts)) / lookbackDays
		likelihood := (math.Min(freq*30, 1) + math.Min(avg/1000, 1)) / 2

		last := ts[len(ts)-1].Date.Time
		gap := last.Sub(ts[0].Date.Time) / time.Duration(len(ts)-1)
		next := last.Add(gap)

		p := model.PredictedSpend{
			Category:      cat,
			Likelihood:    likelihood,
			PredictedDate: model.NewDate(next),
			Amount:        Round2(avg),
		}
		if likelihood > HighLikelihood {
			p.Warning = fmt.Sprintf("High likelihood (%.0f%%) of spending in %s category around %s",
				likelihood*100, cat, next.Format("Jan 02"))
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Likelihood != out[j].Likelihood {
			return out[i].Likelihood > out[j].Likelihood
		}
		return out[i].Category < out[j].Category
	})
	return out
}

func clamp01(v float64) float64 {
	switch {
	case !finite(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
