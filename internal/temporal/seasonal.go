package temporal

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// DefaultSeasonalSigmaFactor bounds the band around the seasonal mean
// within which a current reading counts as normal.
const DefaultSeasonalSigmaFactor = 1.5

// seasonalBaselineDays is the lookback used when no historical series is
// supplied to CompareSeasonal.
const seasonalBaselineDays = 365

// CompareSeasonal compares current index readings against the historical
// baseline of the same season (a ±1 calendar month circular window, so
// December history counts for a January comparison and vice versa).
//
// When historical is nil, a year of NDVI history is fetched through the
// store, which may engage the synthetic fallback. An empty seasonal
// window yields a low-confidence result that defaults to normal; absence
// of contrary evidence is deliberately not treated as an alarm.
//
// All indices share one baseline: the store does not keep separate
// per-index history, so every index is compared against the combined
// seasonal values. Per-index separation would require the datastore to
// tag historical rows per index series.
func (s *Service) CompareSeasonal(currentData map[string]float64, farmID, cropType string, historical []Point) SeasonalComparison {
	currentMonth := int(s.now().Month())

	if len(historical) == 0 {
		historical = s.HistoricalTrend(farmID, "NDVI", seasonalBaselineDays)
	}

	var seasonal []Point
	for i := range historical {
		pointMonth := int(historical[i].Timestamp.Month())
		diff := pointMonth - currentMonth
		if abs(diff) <= 1 || abs(diff) >= 11 {
			seasonal = append(seasonal, historical[i])
		}
	}

	if len(seasonal) == 0 {
		return SeasonalComparison{
			ComparisonText:      "Insufficient historical data for seasonal comparison",
			IsNormal:            true,
			DeviationPercentage: 0,
			Confidence:          ConfidenceLow,
		}
	}

	seasonalValues := make([]float64, len(seasonal))
	for i := range seasonal {
		seasonalValues[i] = seasonal[i].Value
	}
	baselineMean := stat.Mean(seasonalValues, nil)
	baselineStd := stat.PopStdDev(seasonalValues, nil)

	sigmaFactor := s.cfg.SeasonalSigmaFactor
	if sigmaFactor <= 0 {
		sigmaFactor = DefaultSeasonalSigmaFactor
	}

	results := make(map[string]IndexComparison, len(currentData))
	for indexName, currentValue := range currentData {
		deviation := currentValue - baselineMean
		deviationPct := 0.0
		if baselineMean > 0 {
			deviationPct = deviation / baselineMean * 100
		}

		results[indexName] = IndexComparison{
			CurrentValue:        currentValue,
			HistoricalMean:      baselineMean,
			HistoricalStd:       baselineStd,
			Deviation:           deviation,
			DeviationPercentage: deviationPct,
			IsNormal:            math.Abs(deviation) <= sigmaFactor*baselineStd,
		}
	}

	comparison := SeasonalComparison{
		IsNormal:        true,
		Confidence:      ConfidenceMedium,
		BaselinePeriod:  fmt.Sprintf("%d historical observations", len(seasonal)),
		DetailedResults: results,
	}
	if len(seasonal) > 5 {
		comparison.Confidence = ConfidenceHigh
	}

	if len(results) == 0 {
		comparison.ComparisonText = "No comparison data available"
		return comparison
	}

	// The summary privileges NDVI when present, otherwise the
	// alphabetically first index so the choice is deterministic.
	headline, ok := results["NDVI"]
	if !ok {
		names := make([]string, 0, len(results))
		for name := range results {
			names = append(names, name)
		}
		sort.Strings(names)
		headline = results[names[0]]
	}

	deviationPct := headline.DeviationPercentage
	switch {
	case math.Abs(deviationPct) < 10:
		comparison.ComparisonText = fmt.Sprintf(
			"Crop health is normal for this season (within %.1f%% of historical average)", math.Abs(deviationPct))
	case deviationPct > 10:
		comparison.ComparisonText = fmt.Sprintf(
			"Crop health is %.1f%% better than historical average for this season", deviationPct)
	default:
		comparison.ComparisonText = fmt.Sprintf(
			"Crop health is %.1f%% below historical average - investigation recommended", math.Abs(deviationPct))
		comparison.IsNormal = false
	}

	comparison.DeviationPercentage = math.Round(deviationPct*10) / 10
	return comparison
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
