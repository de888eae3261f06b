// Package observability wires the application's Prometheus metrics into
// a single registry with one collector struct per service.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cropsense/cropsense-go/internal/errors"
	"github.com/cropsense/cropsense-go/internal/observability/metrics"
)

// Metrics holds all application metrics behind one registry.
type Metrics struct {
	registry *prometheus.Registry

	Temporal *metrics.TemporalMetrics
	Weather  *metrics.WeatherMetrics
}

// NewMetrics creates a registry with process and Go runtime collectors
// plus the per-service collectors.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	temporal, err := metrics.NewTemporalMetrics(registry)
	if err != nil {
		return nil, errors.New(err).
			Component("observability").
			Category(errors.CategoryConfiguration).
			Context("collector", "temporal").
			Build()
	}

	weather, err := metrics.NewWeatherMetrics(registry)
	if err != nil {
		return nil, errors.New(err).
			Component("observability").
			Category(errors.CategoryConfiguration).
			Context("collector", "weather").
			Build()
	}

	return &Metrics{
		registry: registry,
		Temporal: temporal,
		Weather:  weather,
	}, nil
}

// Handler exposes the registry for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
