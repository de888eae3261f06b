package api

import (
	"encoding/json"
	"io"
	"log"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cropsense/cropsense-go/internal/conf"
	"github.com/cropsense/cropsense-go/internal/datastore"
	"github.com/cropsense/cropsense-go/internal/errors"
	"github.com/cropsense/cropsense-go/internal/temporal"
	"github.com/cropsense/cropsense-go/internal/weather"
)

// mockDS is an in-memory datastore.Interface for handler tests.
type mockDS struct {
	farms    map[string]datastore.Farm
	metrics  []datastore.TemporalMetric
	analyses []datastore.SatelliteAnalysis
	weather  []datastore.HourlyWeather
}

func newMockDS() *mockDS {
	return &mockDS{farms: make(map[string]datastore.Farm)}
}

func (m *mockDS) Open() error  { return nil }
func (m *mockDS) Close() error { return nil }

func (m *mockDS) CreateFarm(farm *datastore.Farm) error {
	m.farms[farm.ID] = *farm
	return nil
}

func (m *mockDS) GetFarm(id string) (datastore.Farm, error) {
	farm, ok := m.farms[id]
	if !ok {
		return datastore.Farm{}, errors.Newf("farm not found: %s", id).
			Component("datastore").
			Category(errors.CategoryNotFound).
			Build()
	}
	return farm, nil
}

func (m *mockDS) GetFarms(userID string, limit int) ([]datastore.Farm, error) {
	var farms []datastore.Farm
	for _, farm := range m.farms {
		if userID == "" || farm.UserID == userID {
			farms = append(farms, farm)
		}
	}
	return farms, nil
}

func (m *mockDS) UpdateFarm(id string, updates map[string]any) (datastore.Farm, error) {
	farm, err := m.GetFarm(id)
	if err != nil {
		return datastore.Farm{}, err
	}
	if name, ok := updates["name"].(string); ok {
		farm.Name = name
	}
	if cropType, ok := updates["crop_type"].(string); ok {
		farm.CropType = cropType
	}
	m.farms[id] = farm
	return farm, nil
}

func (m *mockDS) DeleteFarm(id string) error {
	if _, ok := m.farms[id]; !ok {
		return errors.Newf("farm not found: %s", id).
			Component("datastore").
			Category(errors.CategoryNotFound).
			Build()
	}
	delete(m.farms, id)
	return nil
}

func (m *mockDS) GetTemporalMetrics(farmID, metricType string, since time.Time) ([]datastore.TemporalMetric, error) {
	var out []datastore.TemporalMetric
	for _, metric := range m.metrics {
		if metric.FarmID == farmID && metric.MetricType == metricType && !metric.Timestamp.Before(since) {
			out = append(out, metric)
		}
	}
	return out, nil
}

func (m *mockDS) SaveTemporalMetric(metric *datastore.TemporalMetric) error {
	m.metrics = append(m.metrics, *metric)
	return nil
}

func (m *mockDS) SaveAnalysis(analysis *datastore.SatelliteAnalysis) error {
	m.analyses = append(m.analyses, *analysis)
	return nil
}

func (m *mockDS) LatestAnalysis(farmID string) (*datastore.SatelliteAnalysis, error) {
	for i := range m.analyses {
		if m.analyses[i].FarmID == farmID {
			return &m.analyses[i], nil
		}
	}
	return nil, nil
}

func (m *mockDS) GetAnalyses(farmID string) ([]datastore.SatelliteAnalysis, error) {
	var out []datastore.SatelliteAnalysis
	for _, analysis := range m.analyses {
		if analysis.FarmID == farmID {
			out = append(out, analysis)
		}
	}
	return out, nil
}

func (m *mockDS) SaveHourlyWeather(w *datastore.HourlyWeather) error {
	m.weather = append(m.weather, *w)
	return nil
}

func (m *mockDS) GetHourlyWeather(farmID string, since time.Time) ([]datastore.HourlyWeather, error) {
	var out []datastore.HourlyWeather
	for _, observation := range m.weather {
		if observation.FarmID == farmID && !observation.Time.Before(since) {
			out = append(out, observation)
		}
	}
	return out, nil
}

// newTestController wires a controller with in-memory dependencies and
// registered routes, without file logging.
func newTestController(t *testing.T, ds datastore.Interface) *Controller {
	t.Helper()

	settings := &conf.Settings{}
	settings.Analysis = conf.AnalysisSettings{
		LookbackDays:        90,
		StableSlope:         0.001,
		AnomalyThresholdStd: 2.0,
		SuddenChangePct:     0.2,
		SeasonalSigmaFactor: 1.5,
	}

	e := echo.New()
	c := &Controller{
		Echo:      e,
		DS:        ds,
		Settings:  settings,
		Temporal:  temporal.NewService(ds, settings.Analysis, nil),
		Weather:   weather.NewService(&conf.WeatherSettings{Provider: "none"}, nil, ds, nil),
		logger:    log.New(io.Discard, "", 0),
		apiLogger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	c.Group = e.Group("/api/v2")
	c.initRoutes()
	return c
}

func doRequest(c *Controller, method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c.Echo.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthCheck(t *testing.T) {
	t.Parallel()

	c := newTestController(t, newMockDS())
	rec := doRequest(c, http.MethodGet, "/api/v2/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "connected", body["database_status"])
}

func TestErrorResponseCarriesCorrelationID(t *testing.T) {
	t.Parallel()

	resp := NewErrorResponse(nil, "something failed", http.StatusBadRequest)
	assert.Equal(t, "something failed", resp.Error)
	assert.Len(t, resp.CorrelationID, 8)
}
