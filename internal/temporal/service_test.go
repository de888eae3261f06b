package temporal

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cropsense/cropsense-go/internal/conf"
	"github.com/cropsense/cropsense-go/internal/datastore"
	apperrors "github.com/cropsense/cropsense-go/internal/errors"
)

// mockStore implements datastore.Interface in memory for service tests.
type mockStore struct {
	metrics      []datastore.TemporalMetric
	metricsErr   error
	savedMetrics []datastore.TemporalMetric
	saveErr      error

	lastMetricType string
}

func (m *mockStore) Open() error  { return nil }
func (m *mockStore) Close() error { return nil }

func (m *mockStore) CreateFarm(farm *datastore.Farm) error { return nil }
func (m *mockStore) GetFarm(id string) (datastore.Farm, error) {
	return datastore.Farm{}, nil
}
func (m *mockStore) GetFarms(userID string, limit int) ([]datastore.Farm, error) {
	return nil, nil
}
func (m *mockStore) UpdateFarm(id string, updates map[string]any) (datastore.Farm, error) {
	return datastore.Farm{}, nil
}
func (m *mockStore) DeleteFarm(id string) error { return nil }

func (m *mockStore) GetTemporalMetrics(farmID, metricType string, since time.Time) ([]datastore.TemporalMetric, error) {
	m.lastMetricType = metricType
	if m.metricsErr != nil {
		return nil, m.metricsErr
	}
	var out []datastore.TemporalMetric
	for _, metric := range m.metrics {
		if metric.FarmID == farmID && metric.MetricType == metricType && !metric.Timestamp.Before(since) {
			out = append(out, metric)
		}
	}
	return out, nil
}

func (m *mockStore) SaveTemporalMetric(metric *datastore.TemporalMetric) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.savedMetrics = append(m.savedMetrics, *metric)
	return nil
}

func (m *mockStore) SaveAnalysis(analysis *datastore.SatelliteAnalysis) error { return nil }
func (m *mockStore) LatestAnalysis(farmID string) (*datastore.SatelliteAnalysis, error) {
	return nil, nil
}
func (m *mockStore) GetAnalyses(farmID string) ([]datastore.SatelliteAnalysis, error) {
	return nil, nil
}
func (m *mockStore) SaveHourlyWeather(weather *datastore.HourlyWeather) error { return nil }
func (m *mockStore) GetHourlyWeather(farmID string, since time.Time) ([]datastore.HourlyWeather, error) {
	return nil, nil
}

func testAnalysisSettings() conf.AnalysisSettings {
	return conf.AnalysisSettings{
		LookbackDays:        90,
		StableSlope:         0.001,
		AnomalyThresholdStd: 2.0,
		SuddenChangePct:     0.2,
		SeasonalSigmaFactor: 1.5,
	}
}

func newTestService(ds datastore.Interface, now time.Time) *Service {
	svc := NewService(ds, testAnalysisSettings(), nil)
	svc.now = func() time.Time { return now }
	return svc
}

func TestHistoricalTrendUsesStoredData(t *testing.T) {
	t.Parallel()

	now := testStart()
	store := &mockStore{}
	for i := 0; i < 8; i++ {
		store.metrics = append(store.metrics, datastore.TemporalMetric{
			FarmID:     "farm-1",
			MetricType: "NDVI",
			Timestamp:  now.AddDate(0, 0, -56+i*7),
			Value:      0.6 + float64(i)*0.01,
		})
	}
	svc := newTestService(store, now)

	series := svc.HistoricalTrend("farm-1", "ndvi", 90)
	require.Len(t, series, 8)
	assert.Equal(t, "NDVI", store.lastMetricType)
	assert.False(t, series[0].Synthetic())
	assert.InDelta(t, 0.6, series[0].Value, 1e-9)
	assert.InDelta(t, 0.67, series[7].Value, 1e-9)
}

func TestHistoricalTrendSyntheticFallbackOnEmptyStore(t *testing.T) {
	t.Parallel()

	svc := newTestService(&mockStore{}, testStart())

	series := svc.HistoricalTrend("farm-1", "NDVI", 90)
	require.Len(t, series, 12) // weekly points over 90 days
	for i := range series {
		assert.True(t, series[i].Synthetic())
		assert.GreaterOrEqual(t, series[i].Value, 0.2)
		assert.LessOrEqual(t, series[i].Value, 0.9)
	}
	assert.True(t, series[0].Timestamp.Before(series[11].Timestamp))
}

func TestHistoricalTrendSyntheticFallbackOnStoreError(t *testing.T) {
	t.Parallel()

	store := &mockStore{metricsErr: errors.New("connection refused")}
	svc := newTestService(store, testStart())

	series := svc.HistoricalTrend("farm-1", "EVI", 365)
	require.Len(t, series, 52) // capped at one year of weekly points
	for i := range series {
		assert.True(t, series[i].Synthetic())
		assert.GreaterOrEqual(t, series[i].Value, 0.1)
		assert.LessOrEqual(t, series[i].Value, 0.7)
	}
}

func TestSaveMetricNormalizesAndPersists(t *testing.T) {
	t.Parallel()

	store := &mockStore{}
	now := testStart()
	svc := newTestService(store, now)

	err := svc.SaveMetric("farm-1", "ndvi", 0.61, false, "")
	require.NoError(t, err)
	require.Len(t, store.savedMetrics, 1)

	saved := store.savedMetrics[0]
	assert.Equal(t, "NDVI", saved.MetricType)
	assert.Equal(t, "farm-1", saved.FarmID)
	assert.Equal(t, now, saved.Timestamp)
	assert.InDelta(t, 0.61, saved.Value, 1e-9)
}

func TestSaveMetricReturnsStoreError(t *testing.T) {
	t.Parallel()

	store := &mockStore{saveErr: errors.New("disk full")}
	svc := newTestService(store, testStart())

	err := svc.SaveMetric("farm-1", "NDVI", 0.61, true, "drop")
	require.Error(t, err)
	assert.Empty(t, store.savedMetrics)
}

func TestAnalyzeFarmTrendEmptyStoreProducesSyntheticReport(t *testing.T) {
	t.Parallel()

	svc := newTestService(&mockStore{}, testStart())

	report, err := svc.AnalyzeFarmTrend("farm-1", "ndvi", 90)
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, "farm-1", report.FarmID)
	assert.Equal(t, "NDVI", report.Metric)
	assert.True(t, report.Synthetic)
	assert.Len(t, report.TimeSeries, 12)
	assert.NotEmpty(t, report.Trend.Direction)
	assert.NotEmpty(t, report.Trend.Interpretation)
	assert.Equal(t, len(report.Anomalies.Detected), report.Anomalies.Count)
	assert.NotEmpty(t, report.Seasonal.ComparisonText)
	assert.InDelta(t, report.TimeSeries[11].Value, report.LatestValue, 1e-9)
}

func TestAnalyzeFarmTrendWithStoredDecline(t *testing.T) {
	t.Parallel()

	now := testStart()
	store := &mockStore{}
	for i := 0; i < 10; i++ {
		store.metrics = append(store.metrics, datastore.TemporalMetric{
			FarmID:     "farm-1",
			MetricType: "NDVI",
			Timestamp:  now.AddDate(0, 0, -70+i*7),
			Value:      0.8 - float64(i)*0.03,
		})
	}
	svc := newTestService(store, now)

	report, err := svc.AnalyzeFarmTrend("farm-1", "NDVI", 90)
	require.NoError(t, err)
	assert.False(t, report.Synthetic)
	assert.Equal(t, TrendDeclining, report.Trend.Direction)
	assert.Equal(t, ConfidenceHigh, report.Trend.Confidence)
	assert.InDelta(t, 0.53, report.LatestValue, 1e-9)
}

func TestAnalyzeFarmTrendZeroLookbackFailsAsNotFound(t *testing.T) {
	t.Parallel()

	// A non-positive lookback is replaced by the configured default, so
	// force an empty series by configuring a default too short for even
	// one weekly synthetic point.
	svc := newTestService(&mockStore{}, testStart())
	svc.cfg.LookbackDays = 3

	report, err := svc.AnalyzeFarmTrend("farm-1", "NDVI", 0)
	require.Error(t, err)
	assert.Nil(t, report)
	assert.True(t, apperrors.IsNotFound(err))
}
