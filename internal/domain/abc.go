// Package domain – ABC classification and demand forecasting.
//
// ABC classification is Pareto-style value banding: records sorted by
// consumption value descending, cumulative percentage computed over the
// grand total, A up to 80%, B up to 95%, C beyond. The sort uses an explicit
// (part, location) secondary key so equal values classify deterministically
// regardless of input order.
package domain

import "sort"

// ABC band cutoffs, in cumulative percent. A record whose cumulative
// percentage lands exactly on a cutoff is included in the better band.
const (
	AbcClassACutoff = 80.0
	AbcClassBCutoff = 95.0
)

// ConsumptionRecord is one (part, location) consumption total for a period,
// the input of ClassifyABC.
type ConsumptionRecord struct {
	PartID             string
	LocationID         string
	TotalValueConsumed float64
}

// AbcResult is one classified record.
type AbcResult struct {
	PartID               string
	LocationID           string
	TotalValueConsumed   float64
	PercentageOfTotal    float64
	CumulativePercentage float64
	Classification       string
}

// ClassifyABC sorts records by consumption value descending and assigns A/B/C
// classes at the 80/95 cumulative-percent cutoffs. The input slice is not
// modified. A zero grand total classifies everything as C with zero
// percentages.
func ClassifyABC(records []ConsumptionRecord) []AbcResult {
	sorted := make([]ConsumptionRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].TotalValueConsumed != sorted[j].TotalValueConsumed {
			return sorted[i].TotalValueConsumed > sorted[j].TotalValueConsumed
		}
		if sorted[i].PartID != sorted[j].PartID {
			return sorted[i].PartID < sorted[j].PartID
		}
		return sorted[i].LocationID < sorted[j].LocationID
	})

	var grand float64
	for _, r := range sorted {
		grand += r.TotalValueConsumed
	}

	out := make([]AbcResult, 0, len(sorted))
	var running float64
	for _, r := range sorted {
		res := AbcResult{
			PartID:             r.PartID,
			LocationID:         r.LocationID,
			TotalValueConsumed: r.TotalValueConsumed,
			Classification:     "C",
		}
		if grand > 0 {
			running += r.TotalValueConsumed
			res.PercentageOfTotal = r.TotalValueConsumed / grand * 100
			res.CumulativePercentage = running / grand * 100
			switch {
			case res.CumulativePercentage <= AbcClassACutoff:
				res.Classification = "A"
			case res.CumulativePercentage <= AbcClassBCutoff:
				res.Classification = "B"
			}
		}
		out = append(out, res)
	}
	return out
}

// ForecastStrategy predicts demand for a part from its consumption history.
// The default is a plain average; real models plug in behind this interface.
type ForecastStrategy interface {
	Predict(history []float64) float64
}

// AverageForecast predicts demand as the arithmetic mean of the lookback
// window. An empty history predicts zero.
type AverageForecast struct{}

// Predict implements ForecastStrategy.
func (AverageForecast) Predict(history []float64) float64 {
	if len(history) == 0 {
		return 0
	}
	var sum float64
	for _, v := range history {
		sum += v
	}
	return sum / float64(len(history))
}
