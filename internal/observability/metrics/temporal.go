// Package metrics provides Prometheus metric collectors for the
// application services.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// TemporalMetrics contains Prometheus metrics for temporal analysis
// operations.
type TemporalMetrics struct {
	analysisTotal     *prometheus.CounterVec
	analysisDuration  *prometheus.HistogramVec
	anomaliesDetected *prometheus.CounterVec
	syntheticSeries   *prometheus.CounterVec
}

// NewTemporalMetrics creates and registers temporal analysis metrics.
func NewTemporalMetrics(registry *prometheus.Registry) (*TemporalMetrics, error) {
	m := &TemporalMetrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *TemporalMetrics) initMetrics() {
	m.analysisTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "temporal_analysis_total",
			Help: "Total number of farm trend analyses",
		},
		[]string{"metric", "status"}, // status: success, not_found
	)

	m.analysisDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "temporal_analysis_duration_seconds",
			Help:    "Time taken to produce a trend report",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"metric"},
	)

	m.anomaliesDetected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "temporal_anomalies_detected_total",
			Help: "Total number of anomalies flagged across analyses",
		},
		[]string{"metric"},
	)

	m.syntheticSeries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "temporal_synthetic_series_total",
			Help: "Total number of series served from the synthetic fallback generator",
		},
		[]string{"metric"},
	)
}

// RecordAnalysis counts one analysis call with its outcome.
func (m *TemporalMetrics) RecordAnalysis(metric, status string) {
	m.analysisTotal.WithLabelValues(metric, status).Inc()
}

// RecordAnalysisDuration observes the duration of one analysis call.
func (m *TemporalMetrics) RecordAnalysisDuration(metric string, seconds float64) {
	m.analysisDuration.WithLabelValues(metric).Observe(seconds)
}

// RecordAnomalies counts anomalies flagged in one analysis call.
func (m *TemporalMetrics) RecordAnomalies(metric string, count int) {
	if count > 0 {
		m.anomaliesDetected.WithLabelValues(metric).Add(float64(count))
	}
}

// RecordSyntheticSeries counts a fallback series generation.
func (m *TemporalMetrics) RecordSyntheticSeries(metric string) {
	m.syntheticSeries.WithLabelValues(metric).Inc()
}

// Describe implements the prometheus.Collector interface.
func (m *TemporalMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.analysisTotal.Describe(ch)
	m.analysisDuration.Describe(ch)
	m.anomaliesDetected.Describe(ch)
	m.syntheticSeries.Describe(ch)
}

// Collect implements the prometheus.Collector interface.
func (m *TemporalMetrics) Collect(ch chan<- prometheus.Metric) {
	m.analysisTotal.Collect(ch)
	m.analysisDuration.Collect(ch)
	m.anomaliesDetected.Collect(ch)
	m.syntheticSeries.Collect(ch)
}
