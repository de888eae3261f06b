package temporal

import (
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/cropsense/cropsense-go/internal/conf"
	"github.com/cropsense/cropsense-go/internal/datastore"
	"github.com/cropsense/cropsense-go/internal/errors"
	"github.com/cropsense/cropsense-go/internal/logging"
	"github.com/cropsense/cropsense-go/internal/observability/metrics"
)

// Service composes the temporal analysis components over a datastore.
// Every analysis call is stateless beyond its inputs: concurrent calls,
// even for the same farm, operate on freshly fetched data.
type Service struct {
	ds      datastore.Interface
	cfg     conf.AnalysisSettings
	logger  *slog.Logger
	metrics *metrics.TemporalMetrics
	now     func() time.Time
}

// NewService creates a temporal analysis service.
func NewService(ds datastore.Interface, cfg conf.AnalysisSettings, temporalMetrics *metrics.TemporalMetrics) *Service {
	return &Service{
		ds:      ds,
		cfg:     cfg,
		logger:  logging.ForService("temporal"),
		metrics: temporalMetrics,
		now:     time.Now,
	}
}

// TrendReport is the JSON-serializable result of one analysis call.
type TrendReport struct {
	FarmID      string             `json:"farm_id"`
	Metric      string             `json:"metric"`
	TimeSeries  []SeriesEntry      `json:"time_series"`
	Trend       TrendResult        `json:"trend"`
	Anomalies   AnomalySummary     `json:"anomalies"`
	Seasonal    SeasonalComparison `json:"seasonal_comparison"`
	LatestValue float64            `json:"latest_value"`
	Synthetic   bool               `json:"synthetic"` // true when the series came from the fallback generator
}

// SeriesEntry is one observation in the report payload.
type SeriesEntry struct {
	Timestamp string  `json:"timestamp"` // ISO-8601
	Value     float64 `json:"value"`
}

// AnomalySummary wraps detected anomalies with their count.
type AnomalySummary struct {
	Count    int            `json:"count"`
	Detected []AnomalyEntry `json:"detected"`
}

// AnomalyEntry is one anomaly in the report payload. Deviation is
// rounded for presentation; its unit still depends on Type.
type AnomalyEntry struct {
	Date          string      `json:"date"` // ISO-8601
	Value         float64     `json:"value"`
	ExpectedValue float64     `json:"expected_value"`
	Deviation     float64     `json:"deviation"`
	Severity      Severity    `json:"severity"`
	Type          AnomalyType `json:"type"`
}

// AnalyzeFarmTrend runs the full analysis for one farm and metric:
// historical series, trend fit, anomaly detection and seasonal baseline
// comparison, merged into a single report.
//
// It fails only when neither real nor synthetic data exists; component
// failures degrade to the documented low-confidence outputs instead of
// propagating.
func (s *Service) AnalyzeFarmTrend(farmID, metricName string, lookbackDays int) (*TrendReport, error) {
	start := time.Now()
	metric := strings.ToUpper(metricName)
	if lookbackDays <= 0 {
		lookbackDays = s.cfg.LookbackDays
	}

	series := s.HistoricalTrend(farmID, metric, lookbackDays)
	if len(series) == 0 {
		// Unreachable with a sane lookback thanks to the synthetic
		// fallback, but the terminal condition must exist for the HTTP
		// layer to translate.
		if s.metrics != nil {
			s.metrics.RecordAnalysis(metric, "not_found")
		}
		return nil, errors.Newf("no time series data for farm %s metric %s", farmID, metric).
			Component("temporal").
			Category(errors.CategoryNotFound).
			Context("farm_id", farmID).
			Context("metric", metric).
			Build()
	}

	trend := EstimateTrend(series, metric, s.cfg.StableSlope)
	anomalies := DetectAnomalies(series, s.cfg.AnomalyThresholdStd, s.cfg.SuddenChangePct)

	latest := series[len(series)-1]
	seasonal := s.CompareSeasonal(map[string]float64{metric: latest.Value}, farmID, "", nil)

	report := &TrendReport{
		FarmID:      farmID,
		Metric:      metric,
		TimeSeries:  toSeriesEntries(series),
		Trend:       trend,
		Anomalies:   toAnomalySummary(anomalies),
		Seasonal:    seasonal,
		LatestValue: latest.Value,
		Synthetic:   latest.Synthetic(),
	}

	if s.metrics != nil {
		s.metrics.RecordAnalysis(metric, "success")
		s.metrics.RecordAnalysisDuration(metric, time.Since(start).Seconds())
		s.metrics.RecordAnomalies(metric, len(anomalies))
	}

	s.logger.Info("farm trend analyzed",
		"farm_id", farmID,
		"metric", metric,
		"points", len(series),
		"direction", trend.Direction,
		"anomalies", len(anomalies),
		"synthetic", report.Synthetic,
	)

	return report, nil
}

func toSeriesEntries(series []Point) []SeriesEntry {
	entries := make([]SeriesEntry, len(series))
	for i := range series {
		entries[i] = SeriesEntry{
			Timestamp: series[i].Timestamp.Format(time.RFC3339),
			Value:     series[i].Value,
		}
	}
	return entries
}

func toAnomalySummary(anomalies []Anomaly) AnomalySummary {
	summary := AnomalySummary{
		Count:    len(anomalies),
		Detected: make([]AnomalyEntry, len(anomalies)),
	}
	for i := range anomalies {
		summary.Detected[i] = AnomalyEntry{
			Date:          anomalies[i].Date.Format(time.RFC3339),
			Value:         anomalies[i].Value,
			ExpectedValue: anomalies[i].ExpectedValue,
			Deviation:     math.Round(anomalies[i].Deviation*100) / 100,
			Severity:      anomalies[i].Severity,
			Type:          anomalies[i].Type,
		}
	}
	return summary
}
