package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// WeatherMetrics contains Prometheus metrics for weather service
// operations.
type WeatherMetrics struct {
	fetchesTotal  *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	cacheTotal    *prometheus.CounterVec
}

// NewWeatherMetrics creates and registers weather metrics.
func NewWeatherMetrics(registry *prometheus.Registry) (*WeatherMetrics, error) {
	m := &WeatherMetrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *WeatherMetrics) initMetrics() {
	m.fetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_fetches_total",
			Help: "Total number of weather data fetch operations",
		},
		[]string{"provider", "status"}, // status: success, error, fallback
	)

	m.fetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weather_fetch_duration_seconds",
			Help:    "Time taken to fetch weather data",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"provider"},
	)

	m.cacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_cache_requests_total",
			Help: "Weather cache lookups by outcome",
		},
		[]string{"outcome"}, // hit, miss
	)
}

// RecordFetch counts one provider fetch with its outcome.
func (m *WeatherMetrics) RecordFetch(provider, status string) {
	m.fetchesTotal.WithLabelValues(provider, status).Inc()
}

// RecordFetchDuration observes the duration of one provider fetch.
func (m *WeatherMetrics) RecordFetchDuration(provider string, seconds float64) {
	m.fetchDuration.WithLabelValues(provider).Observe(seconds)
}

// RecordCacheHit counts a cache hit.
func (m *WeatherMetrics) RecordCacheHit() {
	m.cacheTotal.WithLabelValues("hit").Inc()
}

// RecordCacheMiss counts a cache miss.
func (m *WeatherMetrics) RecordCacheMiss() {
	m.cacheTotal.WithLabelValues("miss").Inc()
}

// Describe implements the prometheus.Collector interface.
func (m *WeatherMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.fetchesTotal.Describe(ch)
	m.fetchDuration.Describe(ch)
	m.cacheTotal.Describe(ch)
}

// Collect implements the prometheus.Collector interface.
func (m *WeatherMetrics) Collect(ch chan<- prometheus.Metric) {
	m.fetchesTotal.Collect(ch)
	m.fetchDuration.Collect(ch)
	m.cacheTotal.Collect(ch)
}
