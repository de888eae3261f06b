package temporal

import (
	"fmt"
	"math"

	"github.com/sajari/regression"
)

// DefaultStableSlope is the slope magnitude (value units per day) below
// which a trend is classified as stable. Policy constant, overridable
// through analysis settings.
const DefaultStableSlope = 0.001

// EstimateTrend fits an ordinary least squares line of value against
// whole-day offsets from the first point and classifies the slope.
// Fewer than two points, or a degenerate time axis, yields an unknown
// direction with low confidence.
func EstimateTrend(series []Point, metricName string, stableSlope float64) TrendResult {
	if stableSlope <= 0 {
		stableSlope = DefaultStableSlope
	}

	if len(series) < 2 {
		return TrendResult{
			Direction:      TrendUnknown,
			RatePerWeek:    0,
			Confidence:     ConfidenceLow,
			Interpretation: fmt.Sprintf("Not enough data to estimate a %s trend", metricName),
		}
	}

	// Day offsets keep the regressor small; raw unix timestamps would
	// dwarf the values and hurt the fit numerically.
	first := series[0].Timestamp
	offsets := make([]float64, len(series))
	degenerate := true
	for i := range series {
		offsets[i] = math.Floor(series[i].Timestamp.Sub(first).Hours() / 24)
		if offsets[i] != offsets[0] {
			degenerate = false
		}
	}
	if degenerate {
		return TrendResult{
			Direction:      TrendUnknown,
			RatePerWeek:    0,
			Confidence:     ConfidenceLow,
			Interpretation: fmt.Sprintf("Cannot estimate a %s trend over identical timestamps", metricName),
		}
	}

	r := new(regression.Regression)
	r.SetObserved(metricName)
	r.SetVar(0, "days")
	for i := range series {
		r.Train(regression.DataPoint(series[i].Value, []float64{offsets[i]}))
	}
	if err := r.Run(); err != nil {
		return TrendResult{
			Direction:      TrendUnknown,
			RatePerWeek:    0,
			Confidence:     ConfidenceLow,
			Interpretation: fmt.Sprintf("Trend fit failed for %s: %v", metricName, err),
		}
	}

	slope := r.Coeff(1)

	var direction TrendDirection
	switch {
	case math.Abs(slope) < stableSlope:
		direction = TrendStable
	case slope > 0:
		direction = TrendImproving
	default:
		direction = TrendDeclining
	}

	ratePerWeek := math.Round(slope*7*10000) / 10000

	// R-squared of a single-regressor fit equals the squared Pearson
	// correlation between day offsets and values. Two points always fit
	// perfectly, so confidence stays low below three.
	confidence := ConfidenceLow
	if len(series) > 2 {
		switch {
		case r.R2 > 0.7:
			confidence = ConfidenceHigh
		case r.R2 > 0.4:
			confidence = ConfidenceMedium
		}
	}

	return TrendResult{
		Direction:      direction,
		RatePerWeek:    ratePerWeek,
		Confidence:     confidence,
		Interpretation: fmt.Sprintf("%s is %s at %.4f per week", metricName, direction, math.Abs(ratePerWeek)),
	}
}
