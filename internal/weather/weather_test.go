package weather

import (
	"errors"
	"testing"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cropsense/cropsense-go/internal/conf"
)

// stubProvider returns canned responses and counts calls.
type stubProvider struct {
	current      *Data
	forecast     []ForecastDay
	err          error
	currentCalls int
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) FetchCurrent(lat, lon float64) (*Data, error) {
	p.currentCalls++
	if p.err != nil {
		return nil, p.err
	}
	return p.current, nil
}

func (p *stubProvider) FetchForecast(lat, lon float64, days int) ([]ForecastDay, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.forecast, nil
}

func newStubService(provider Provider) *Service {
	settings := &conf.WeatherSettings{Provider: "none", CacheTTL: 60}
	svc := NewService(settings, gocache.New(time.Hour, time.Hour), nil, nil)
	svc.provider = provider
	return svc
}

func TestCurrentCachesProviderResult(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		current: &Data{Temperature: 21.5, Humidity: 55, Description: "clear sky"},
	}
	svc := newStubService(provider)

	first := svc.Current(60.17, 24.94)
	second := svc.Current(60.17, 24.94)

	require.NotNil(t, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, provider.currentCalls)

	// A different location bypasses the cached entry.
	svc.Current(51.5, -0.12)
	assert.Equal(t, 2, provider.currentCalls)
}

func TestCurrentFallsBackOnProviderError(t *testing.T) {
	t.Parallel()

	svc := newStubService(&stubProvider{err: errors.New("timeout")})

	data := svc.Current(60.0, 24.94)
	require.NotNil(t, data)
	assert.True(t, data.Estimated)
	// base temperature 25 - 60*0.5 = -5, plus 5 variation
	assert.InDelta(t, 0.0, data.Temperature, 1e-9)
	assert.InDelta(t, 60, data.Humidity, 1e-9)
	assert.Contains(t, data.Description, "API unavailable")
}

func TestCurrentWithoutProviderUsesFallback(t *testing.T) {
	t.Parallel()

	settings := &conf.WeatherSettings{Provider: "none"}
	svc := NewService(settings, nil, nil, nil)

	data := svc.Current(10.0, 20.0)
	require.NotNil(t, data)
	assert.True(t, data.Estimated)
	assert.InDelta(t, 25.0, data.Temperature, 1e-9) // 25 - 5 + 5

	// Southern hemisphere mirrors the northern estimate.
	south := svc.Current(-10.0, 20.0)
	assert.InDelta(t, data.Temperature, south.Temperature, 1e-9)
}

func TestForecastFallbackCoversRequestedDays(t *testing.T) {
	t.Parallel()

	settings := &conf.WeatherSettings{Provider: "none"}
	svc := NewService(settings, nil, nil, nil)
	svc.now = func() time.Time {
		return time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	}

	forecast := svc.Forecast(40.0, -3.7, 5)
	require.Len(t, forecast, 5)
	assert.Equal(t, "2025-06-15", forecast[0].Date)
	assert.Equal(t, "2025-06-19", forecast[4].Date)
	for _, day := range forecast {
		assert.InDelta(t, 25-40*0.5-3, day.TempMin, 1e-9)
		assert.InDelta(t, 25-40*0.5+5, day.TempMax, 1e-9)
		assert.InDelta(t, 30, day.RainfallProb, 1e-9)
	}
}

func TestClearCacheForcesRefetch(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{current: &Data{Temperature: 18}}
	svc := newStubService(provider)

	svc.Current(60.17, 24.94)
	svc.ClearCache()
	svc.Current(60.17, 24.94)

	assert.Equal(t, 2, provider.currentCalls)
}
