package temporal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectAnomaliesTooFewPoints(t *testing.T) {
	t.Parallel()

	assert.Empty(t, DetectAnomalies(nil, 0, 0))
	assert.Empty(t, DetectAnomalies(makeSeries(testStart(), 7, 0.5, 0.9), 0, 0))
}

func TestDetectAnomaliesFlatSeries(t *testing.T) {
	t.Parallel()

	values := make([]float64, 15)
	for i := range values {
		values[i] = 0.6
	}
	series := makeSeries(testStart(), 7, values...)

	assert.Empty(t, DetectAnomalies(series, 0, 0))
}

func TestDetectAnomaliesSingleDropNotDoubleCounted(t *testing.T) {
	t.Parallel()

	// Ten healthy readings, one crash, nine recovered readings. The crash
	// must be reported once by the z-score method, not again as a sudden
	// drop for the same observation.
	values := make([]float64, 0, 20)
	for i := 0; i < 10; i++ {
		values = append(values, 0.75)
	}
	values = append(values, 0.40)
	for i := 0; i < 9; i++ {
		values = append(values, 0.74)
	}
	series := makeSeries(testStart(), 7, values...)

	anomalies := DetectAnomalies(series, 0, 0)
	require.Len(t, anomalies, 2)

	crash := anomalies[0]
	assert.Equal(t, AnomalyDrop, crash.Type)
	assert.Equal(t, SeveritySevere, crash.Severity)
	assert.Equal(t, series[10].Timestamp, crash.Date)
	assert.InDelta(t, 0.40, crash.Value, 1e-9)

	// The recovery a week later is a genuine sudden rise of its own.
	recovery := anomalies[1]
	assert.Equal(t, AnomalySuddenSpike, recovery.Type)
	assert.Equal(t, series[11].Timestamp, recovery.Date)
}

func TestDetectAnomaliesDedupWindowSuppressesNearbyCandidate(t *testing.T) {
	t.Parallel()

	// A recovery six hours after a globally flagged crash is treated as
	// the same event, not a second anomaly.
	series := makeSeries(testStart(), 1,
		0.75, 0.75, 0.75, 0.75, 0.75, 0.75, 0.75, 0.75, 0.75, 0.75)
	crashAt := series[9].Timestamp.Add(24 * time.Hour)
	series = append(series,
		Point{Timestamp: crashAt, Value: 0.40},
		Point{Timestamp: crashAt.Add(6 * time.Hour), Value: 0.74},
		Point{Timestamp: crashAt.Add(48 * time.Hour), Value: 0.74},
	)

	anomalies := DetectAnomalies(series, 0, 0)
	require.Len(t, anomalies, 1)
	assert.Equal(t, AnomalyDrop, anomalies[0].Type)
	assert.Equal(t, crashAt, anomalies[0].Date)
}

func TestDetectAnomaliesSuddenSpikeWithoutGlobalOutlier(t *testing.T) {
	t.Parallel()

	// Enough spread that no point exceeds two standard deviations, but one
	// adjacent jump of 40 percent.
	series := makeSeries(testStart(), 7, 0.55, 0.50, 0.60, 0.50, 0.70, 0.60, 0.65)

	anomalies := DetectAnomalies(series, 0, 0)
	require.Len(t, anomalies, 1)

	spike := anomalies[0]
	assert.Equal(t, AnomalySuddenSpike, spike.Type)
	assert.Equal(t, SeverityModerate, spike.Severity)
	assert.Equal(t, series[4].Timestamp, spike.Date)
	assert.InDelta(t, 0.50, spike.ExpectedValue, 1e-9)
	assert.InDelta(t, 40.0, spike.Deviation, 0.01) // percent change
}

func TestDetectAnomaliesSeverityGrading(t *testing.T) {
	t.Parallel()

	// One extreme outlier among twenty stable readings crosses three
	// standard deviations.
	values := make([]float64, 0, 21)
	for i := 0; i < 10; i++ {
		values = append(values, 0.5)
	}
	values = append(values, 0.9)
	for i := 0; i < 10; i++ {
		values = append(values, 0.5)
	}
	series := makeSeries(testStart(), 7, values...)

	anomalies := DetectAnomalies(series, 0, 0)
	require.NotEmpty(t, anomalies)
	assert.Equal(t, AnomalySpike, anomalies[0].Type)
	assert.Equal(t, SeveritySevere, anomalies[0].Severity)
	assert.Greater(t, anomalies[0].Deviation, 3.0) // standard deviations
}

func TestDetectAnomaliesDeterministic(t *testing.T) {
	t.Parallel()

	series := makeSeries(testStart(), 7, 0.55, 0.50, 0.60, 0.50, 0.70, 0.60, 0.65)
	first := DetectAnomalies(series, 0, 0)
	second := DetectAnomalies(series, 0, 0)
	assert.Equal(t, first, second)
}
