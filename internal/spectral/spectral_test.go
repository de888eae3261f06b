package spectral

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthyBands() BandMeans {
	return BandMeans{
		Blue:  0.04,
		Green: 0.08,
		Red:   0.06,
		NIR:   0.45,
		SWIR:  0.20,
	}
}

func TestComputeNormalizedDifferences(t *testing.T) {
	t.Parallel()

	idx := Compute(healthyBands())

	assert.InDelta(t, (0.45-0.06)/(0.45+0.06), idx.NDVI, 1e-6)
	assert.InDelta(t, (0.45-0.08)/(0.45+0.08), idx.GNDVI, 1e-6)
	assert.InDelta(t, (0.08-0.45)/(0.08+0.45), idx.NDWI, 1e-6)
	assert.InDelta(t, (0.45-0.20)/(0.45+0.20), idx.NDMI, 1e-6)

	// Single-date NBR uses the same band pair as NDMI.
	assert.InDelta(t, idx.NDMI, idx.NBR, 1e-12)

	// NDWI mirrors GNDVI by construction.
	assert.InDelta(t, -idx.GNDVI, idx.NDWI, 1e-6)
}

func TestComputeSoilAdjustedAndChlorophyll(t *testing.T) {
	t.Parallel()

	idx := Compute(healthyBands())

	assert.InDelta(t, (0.45-0.06)/(0.45+0.06+0.5)*1.5, idx.SAVI, 1e-6)
	assert.InDelta(t, (0.45-0.06)/(0.45+0.06+0.16), idx.OSAVI, 1e-6)
	assert.InDelta(t, 0.45/0.08-1, idx.CIG, 1e-6)
	assert.InDelta(t, 2.5*(0.45-0.06)/(0.45+6*0.06-7.5*0.04+1), idx.EVI, 1e-6)
}

func TestComputeZeroBandsDoNotDivideByZero(t *testing.T) {
	t.Parallel()

	idx := Compute(BandMeans{})

	assert.Zero(t, idx.NDVI)
	assert.Zero(t, idx.NDMI)
	assert.Zero(t, idx.CIG)
	assert.False(t, idx.LAI < 0 || idx.LAI > 10)
}

func TestLeafAreaIndexBounds(t *testing.T) {
	t.Parallel()

	// Dense canopy pushes SAVI past the formula's asymptote.
	assert.Zero(t, leafAreaIndex(0.69))
	assert.Zero(t, leafAreaIndex(0.80))

	// Bare soil keeps the estimate small but non-negative.
	assert.GreaterOrEqual(t, leafAreaIndex(0.05), 0.0)
	assert.LessOrEqual(t, leafAreaIndex(0.05), 10.0)
}

func TestAnalyzeHealthBands(t *testing.T) {
	t.Parallel()

	cases := []struct {
		ndvi   float64
		health string
		score  float64
	}{
		{0.75, HealthExcellent, 0.9},
		{0.50, HealthGood, 0.7},
		{0.30, HealthFair, 0.5},
		{0.15, HealthPoor, 0.3},
		{0.05, HealthVeryPoor, 0.1},
	}

	for _, tc := range cases {
		report := AnalyzeHealth(Indices{NDVI: tc.ndvi, NDMI: 0.3, EVI: 0.4, LAI: 2})
		assert.Equal(t, tc.health, report.OverallHealth, "ndvi=%v", tc.ndvi)
		assert.InDelta(t, tc.score, report.HealthScore, 1e-9, "ndvi=%v", tc.ndvi)
	}
}

func TestAnalyzeHealthStressIndicators(t *testing.T) {
	t.Parallel()

	report := AnalyzeHealth(Indices{NDVI: 0.25, NDMI: 0.05, EVI: 0.15, LAI: 0.5})

	assert.Equal(t, []string{
		StressLowVigor,
		StressWater,
		StressLowChlorophyll,
		StressLowLeafDensity,
	}, report.StressIndicators)

	require.Len(t, report.Recommendations, 3)
	assert.Equal(t, "Increase irrigation frequency", report.Recommendations[0])
	assert.Equal(t, "Consider fertilizer application", report.Recommendations[1])
	assert.Equal(t, "Monitor for nutrient deficiency", report.Recommendations[2])
}

func TestAnalyzeHealthNoStress(t *testing.T) {
	t.Parallel()

	report := AnalyzeHealth(Indices{NDVI: 0.7, NDMI: 0.3, EVI: 0.45, LAI: 3.2})

	assert.Empty(t, report.StressIndicators)
	assert.Equal(t, []string{"Continue current management practices"}, report.Recommendations)
}
