// Package weather fetches current and forecast conditions for farm
// locations and correlates weather events with crop stress. Provider
// responses are cached; when no provider is configured or a fetch fails,
// latitude-based estimates keep the advisory pipeline functional.
package weather

import (
	"fmt"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/cropsense/cropsense-go/internal/conf"
	"github.com/cropsense/cropsense-go/internal/datastore"
	"github.com/cropsense/cropsense-go/internal/logging"
	"github.com/cropsense/cropsense-go/internal/observability/metrics"
)

// DefaultCacheTTL applies when the configured cache TTL is not positive.
const DefaultCacheTTL = time.Hour

// Data represents observed conditions at one location and time.
type Data struct {
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature"` // Celsius
	Humidity    float64   `json:"humidity"`    // percent
	Rainfall    float64   `json:"rainfall"`    // mm
	WindSpeed   float64   `json:"wind_speed"`  // m/s
	Pressure    float64   `json:"pressure"`    // hPa
	Description string    `json:"description"`
	Estimated   bool      `json:"estimated"` // true when generated by the fallback
}

// ForecastDay summarizes one forecast day.
type ForecastDay struct {
	Date           string  `json:"date"` // YYYY-MM-DD
	TempMin        float64 `json:"temp_min"`
	TempMax        float64 `json:"temp_max"`
	Humidity       float64 `json:"humidity"`
	RainfallProb   float64 `json:"rainfall_prob"` // percent
	RainfallAmount float64 `json:"rainfall_amount"`
	Description    string  `json:"description"`
}

// Provider fetches weather data from an external API.
type Provider interface {
	Name() string
	FetchCurrent(lat, lon float64) (*Data, error)
	FetchForecast(lat, lon float64, days int) ([]ForecastDay, error)
}

// Service handles weather data operations. The cache is injected so
// tests and callers control TTL and sharing; it replaces any ambient
// global state.
type Service struct {
	provider Provider
	cache    *gocache.Cache
	cacheTTL time.Duration
	db       datastore.Interface
	metrics  *metrics.WeatherMetrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a weather service for the configured provider. A
// provider setting of "none" or an empty API key leaves the provider nil
// and every lookup served by the fallback estimator.
func NewService(settings *conf.WeatherSettings, cache *gocache.Cache, db datastore.Interface, weatherMetrics *metrics.WeatherMetrics) *Service {
	var provider Provider
	if settings.Provider == "openweather" && settings.OpenWeather.APIKey != "" {
		provider = NewOpenWeatherProvider(settings.OpenWeather)
	}

	cacheTTL := time.Duration(settings.CacheTTL) * time.Minute
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	if cache == nil {
		cache = gocache.New(cacheTTL, 2*cacheTTL)
	}

	return &Service{
		provider: provider,
		cache:    cache,
		cacheTTL: cacheTTL,
		db:       db,
		metrics:  weatherMetrics,
		logger:   logging.ForService("weather"),
		now:      time.Now,
	}
}

// Current returns current conditions at the location, from cache when
// fresh. Provider errors degrade to the latitude-based estimate and are
// never surfaced; the advisory consumers prefer stale or estimated data
// over no data.
func (s *Service) Current(lat, lon float64) *Data {
	cacheKey := fmt.Sprintf("current_%f_%f", lat, lon)
	if cached, found := s.cache.Get(cacheKey); found {
		if data, ok := cached.(*Data); ok {
			s.recordCacheHit()
			return data
		}
	}
	s.recordCacheMiss()

	if s.provider == nil {
		return s.fallbackCurrent(lat)
	}

	start := time.Now()
	data, err := s.provider.FetchCurrent(lat, lon)
	if s.metrics != nil {
		s.metrics.RecordFetchDuration(s.provider.Name(), time.Since(start).Seconds())
	}
	if err != nil {
		s.recordFetch("error")
		s.logger.Error("failed to fetch current weather",
			"provider", s.provider.Name(), "lat", lat, "lon", lon, "error", err)
		return s.fallbackCurrent(lat)
	}
	s.recordFetch("success")

	s.logger.Info("fetched current weather",
		"lat", lat, "lon", lon,
		"temp_c", data.Temperature, "description", data.Description)

	s.cache.Set(cacheKey, data, s.cacheTTL)
	return data
}

// Forecast returns up to days daily forecast entries, from cache when
// fresh, falling back to estimates on provider absence or failure.
func (s *Service) Forecast(lat, lon float64, days int) []ForecastDay {
	if days <= 0 {
		days = 7
	}

	cacheKey := fmt.Sprintf("forecast_%f_%f_%d", lat, lon, days)
	if cached, found := s.cache.Get(cacheKey); found {
		if forecast, ok := cached.([]ForecastDay); ok {
			s.recordCacheHit()
			return forecast
		}
	}
	s.recordCacheMiss()

	if s.provider == nil {
		return s.fallbackForecast(lat, days)
	}

	start := time.Now()
	forecast, err := s.provider.FetchForecast(lat, lon, days)
	if s.metrics != nil {
		s.metrics.RecordFetchDuration(s.provider.Name(), time.Since(start).Seconds())
	}
	if err != nil {
		s.recordFetch("error")
		s.logger.Error("failed to fetch forecast",
			"provider", s.provider.Name(), "lat", lat, "lon", lon, "error", err)
		return s.fallbackForecast(lat, days)
	}
	s.recordFetch("success")

	s.logger.Info("fetched forecast", "lat", lat, "lon", lon, "days", len(forecast))

	s.cache.Set(cacheKey, forecast, s.cacheTTL)
	return forecast
}

// SaveObservation persists current conditions as an hourly observation
// for a farm.
func (s *Service) SaveObservation(farmID string, data *Data) error {
	if s.db == nil {
		return nil
	}
	observation := &datastore.HourlyWeather{
		FarmID:      farmID,
		Time:        data.Timestamp,
		Temperature: data.Temperature,
		Humidity:    data.Humidity,
		Rainfall:    data.Rainfall,
		WindSpeed:   data.WindSpeed,
		Pressure:    data.Pressure,
		WeatherDesc: data.Description,
	}
	if err := s.db.SaveHourlyWeather(observation); err != nil {
		s.logger.Error("failed to save weather observation",
			"farm_id", farmID, "error", err)
		return err
	}
	return nil
}

// History returns stored observations for a farm over the lookback window.
func (s *Service) History(farmID string, days int) ([]Data, error) {
	if s.db == nil {
		return nil, nil
	}
	records, err := s.db.GetHourlyWeather(farmID, s.now().AddDate(0, 0, -days))
	if err != nil {
		return nil, err
	}
	history := make([]Data, 0, len(records))
	for i := range records {
		record := &records[i]
		history = append(history, Data{
			Timestamp:   record.Time,
			Temperature: record.Temperature,
			Humidity:    record.Humidity,
			Rainfall:    record.Rainfall,
			WindSpeed:   record.WindSpeed,
			Pressure:    record.Pressure,
			Description: record.WeatherDesc,
		})
	}
	return history, nil
}

// ClearCache drops all cached weather entries.
func (s *Service) ClearCache() {
	s.cache.Flush()
	s.logger.Info("weather cache cleared")
}

// fallbackCurrent estimates conditions from latitude alone: cooler away
// from the equator, calm and dry otherwise.
func (s *Service) fallbackCurrent(lat float64) *Data {
	s.recordFetch("fallback")
	baseTemp := baseTemperature(lat)
	return &Data{
		Timestamp:   s.now(),
		Temperature: baseTemp + 5,
		Humidity:    60,
		Rainfall:    0,
		WindSpeed:   3.5,
		Pressure:    1013,
		Description: "Estimated conditions (API unavailable)",
		Estimated:   true,
	}
}

func (s *Service) fallbackForecast(lat float64, days int) []ForecastDay {
	s.recordFetch("fallback")
	baseTemp := baseTemperature(lat)

	forecast := make([]ForecastDay, 0, days)
	for i := 0; i < days; i++ {
		forecast = append(forecast, ForecastDay{
			Date:           s.now().AddDate(0, 0, i).Format("2006-01-02"),
			TempMin:        baseTemp - 3,
			TempMax:        baseTemp + 5,
			Humidity:       60,
			RainfallProb:   30,
			RainfallAmount: 0,
			Description:    "Estimated forecast (API unavailable)",
		})
	}
	return forecast
}

// baseTemperature is the latitude-only temperature estimate.
func baseTemperature(lat float64) float64 {
	if lat < 0 {
		lat = -lat
	}
	return 25 - lat*0.5
}

func (s *Service) recordFetch(status string) {
	if s.metrics == nil {
		return
	}
	provider := "fallback"
	if s.provider != nil {
		provider = s.provider.Name()
	}
	s.metrics.RecordFetch(provider, status)
}

func (s *Service) recordCacheHit() {
	if s.metrics != nil {
		s.metrics.RecordCacheHit()
	}
}

func (s *Service) recordCacheMiss() {
	if s.metrics != nil {
		s.metrics.RecordCacheMiss()
	}
}
