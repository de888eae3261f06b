package temporal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// baselinePoints builds historical points in the given month of 2024 with
// alternating values around the requested mean.
func baselinePoints(month time.Month, values ...float64) []Point {
	points := make([]Point, len(values))
	for i, v := range values {
		points[i] = Point{
			Timestamp: time.Date(2024, month, 1+i*3, 0, 0, 0, 0, time.UTC),
			Value:     v,
		}
	}
	return points
}

func TestCompareSeasonalDetectsAbnormalDrop(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	svc := newTestService(&mockStore{}, now)

	// Baseline mean 0.65 with population std 0.05; a current reading of
	// 0.30 sits seven sigma below and almost 54 percent under the mean.
	historical := baselinePoints(time.June, 0.60, 0.70, 0.60, 0.70, 0.60, 0.70)

	result := svc.CompareSeasonal(map[string]float64{"NDVI": 0.30}, "farm-1", "wheat", historical)

	assert.False(t, result.IsNormal)
	assert.Equal(t, ConfidenceHigh, result.Confidence)
	assert.InDelta(t, -53.8, result.DeviationPercentage, 1e-9)
	assert.Contains(t, result.ComparisonText, "below historical average")

	ndvi, ok := result.DetailedResults["NDVI"]
	require.True(t, ok)
	assert.False(t, ndvi.IsNormal)
	assert.InDelta(t, 0.65, ndvi.HistoricalMean, 1e-9)
	assert.InDelta(t, 0.05, ndvi.HistoricalStd, 1e-9)
}

func TestCompareSeasonalNormalReading(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	svc := newTestService(&mockStore{}, now)

	historical := baselinePoints(time.June, 0.60, 0.70, 0.60, 0.70, 0.60, 0.70)

	result := svc.CompareSeasonal(map[string]float64{"NDVI": 0.67}, "farm-1", "wheat", historical)

	assert.True(t, result.IsNormal)
	assert.Contains(t, result.ComparisonText, "normal for this season")

	ndvi := result.DetailedResults["NDVI"]
	assert.True(t, ndvi.IsNormal)
}

func TestCompareSeasonalBetterThanAverage(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	svc := newTestService(&mockStore{}, now)

	historical := baselinePoints(time.June, 0.48, 0.52, 0.48, 0.52, 0.48, 0.52)

	result := svc.CompareSeasonal(map[string]float64{"NDVI": 0.60}, "farm-1", "wheat", historical)

	// 20 percent above the mean reads as better, even though it also
	// falls outside the sigma band per index.
	assert.Contains(t, result.ComparisonText, "better than historical average")
	assert.InDelta(t, 20.0, result.DeviationPercentage, 1e-9)
	assert.False(t, result.DetailedResults["NDVI"].IsNormal)
}

func TestCompareSeasonalMonthWraparound(t *testing.T) {
	t.Parallel()

	// Comparing in January must pull December history across the year
	// boundary, and exclude mid-year observations.
	now := time.Date(2025, time.January, 10, 12, 0, 0, 0, time.UTC)
	svc := newTestService(&mockStore{}, now)

	historical := append(
		baselinePoints(time.December, 0.50, 0.50, 0.50, 0.50),
		baselinePoints(time.June, 0.90, 0.90, 0.90, 0.90)...,
	)

	result := svc.CompareSeasonal(map[string]float64{"NDVI": 0.50}, "farm-1", "wheat", historical)

	assert.True(t, result.IsNormal)
	assert.Equal(t, "4 historical observations", result.BaselinePeriod)
	assert.InDelta(t, 0.50, result.DetailedResults["NDVI"].HistoricalMean, 1e-9)
}

func TestCompareSeasonalEmptyWindowIsLowConfidenceNormal(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.January, 10, 12, 0, 0, 0, time.UTC)
	svc := newTestService(&mockStore{}, now)

	// Only mid-year history: nothing falls inside the January window.
	historical := baselinePoints(time.June, 0.60, 0.70, 0.60, 0.70)

	result := svc.CompareSeasonal(map[string]float64{"NDVI": 0.30}, "farm-1", "wheat", historical)

	assert.True(t, result.IsNormal)
	assert.Equal(t, ConfidenceLow, result.Confidence)
	assert.Zero(t, result.DeviationPercentage)
	assert.Contains(t, result.ComparisonText, "Insufficient historical data")
}

func TestCompareSeasonalSmallWindowIsMediumConfidence(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	svc := newTestService(&mockStore{}, now)

	historical := baselinePoints(time.June, 0.60, 0.70, 0.65)

	result := svc.CompareSeasonal(map[string]float64{"NDVI": 0.64}, "farm-1", "wheat", historical)
	assert.Equal(t, ConfidenceMedium, result.Confidence)
}

func TestCompareSeasonalHeadlinePrefersNDVI(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	svc := newTestService(&mockStore{}, now)

	historical := baselinePoints(time.June, 0.48, 0.52, 0.48, 0.52, 0.48, 0.52)

	// EVI deviates wildly but NDVI drives the summary.
	current := map[string]float64{"NDVI": 0.51, "EVI": 0.05}
	result := svc.CompareSeasonal(current, "farm-1", "wheat", historical)

	assert.Contains(t, result.ComparisonText, "normal for this season")
	assert.InDelta(t, 2.0, result.DeviationPercentage, 1e-9)
	require.Len(t, result.DetailedResults, 2)
}

func TestCompareSeasonalNilHistoricalFallsBackToStore(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	svc := newTestService(&mockStore{}, now)

	// Empty store engages the synthetic generator for the baseline.
	result := svc.CompareSeasonal(map[string]float64{"NDVI": 0.60}, "farm-1", "wheat", nil)
	assert.NotEmpty(t, result.ComparisonText)
	assert.NotEmpty(t, result.DetailedResults)
}
