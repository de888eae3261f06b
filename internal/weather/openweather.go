package weather

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/cropsense/cropsense-go/internal/conf"
)

const (
	openWeatherRequestTimeout = 10 * time.Second
	openWeatherUserAgent      = "CropSense-Go"
)

// OpenWeatherProvider fetches conditions from the OpenWeather API.
type OpenWeatherProvider struct {
	apiKey           string
	endpoint         string
	forecastEndpoint string
	units            string
	client           *http.Client
}

// NewOpenWeatherProvider creates a provider from weather settings.
func NewOpenWeatherProvider(settings conf.OpenWeatherSettings) *OpenWeatherProvider {
	units := settings.Units
	if units == "" {
		units = "metric"
	}
	return &OpenWeatherProvider{
		apiKey:           settings.APIKey,
		endpoint:         settings.Endpoint,
		forecastEndpoint: settings.ForecastEndpoint,
		units:            units,
		client:           &http.Client{Timeout: openWeatherRequestTimeout},
	}
}

// Name implements the Provider interface.
func (p *OpenWeatherProvider) Name() string { return "openweather" }

// openWeatherCurrent is the current-weather response shape.
type openWeatherCurrent struct {
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp     float64 `json:"temp"`
		Pressure float64 `json:"pressure"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Rain struct {
		OneHour float64 `json:"1h"`
	} `json:"rain"`
	Dt int64 `json:"dt"`
}

// openWeatherForecast is the 5 day / 3 hour forecast response shape.
type openWeatherForecast struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp     float64 `json:"temp"`
			Humidity float64 `json:"humidity"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
		Rain struct {
			ThreeHours float64 `json:"3h"`
		} `json:"rain"`
	} `json:"list"`
}

// FetchCurrent implements the Provider interface.
func (p *OpenWeatherProvider) FetchCurrent(lat, lon float64) (*Data, error) {
	body, err := p.get(p.endpoint, lat, lon)
	if err != nil {
		return nil, err
	}

	var response openWeatherCurrent
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("error unmarshaling weather data: %w", err)
	}

	description := ""
	if len(response.Weather) > 0 {
		description = response.Weather[0].Description
	}

	return &Data{
		Timestamp:   time.Unix(response.Dt, 0),
		Temperature: response.Main.Temp,
		Humidity:    response.Main.Humidity,
		Rainfall:    response.Rain.OneHour,
		WindSpeed:   response.Wind.Speed,
		Pressure:    response.Main.Pressure,
		Description: description,
	}, nil
}

// FetchForecast implements the Provider interface. The 3-hourly entries
// are grouped into daily summaries: min/max temperature, mean humidity,
// summed rainfall and the most frequent description. Rain probability is
// a coarse estimate, 50% on days with any rain and 20% otherwise.
func (p *OpenWeatherProvider) FetchForecast(lat, lon float64, days int) ([]ForecastDay, error) {
	body, err := p.get(p.forecastEndpoint, lat, lon)
	if err != nil {
		return nil, err
	}

	var response openWeatherForecast
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("error unmarshaling forecast data: %w", err)
	}

	type dayAccumulator struct {
		temps        []float64
		humidity     []float64
		rain         float64
		descriptions map[string]int
	}

	daily := make(map[string]*dayAccumulator)
	for i := range response.List {
		entry := &response.List[i]
		date := time.Unix(entry.Dt, 0).Format("2006-01-02")

		day, ok := daily[date]
		if !ok {
			day = &dayAccumulator{descriptions: make(map[string]int)}
			daily[date] = day
		}
		day.temps = append(day.temps, entry.Main.Temp)
		day.humidity = append(day.humidity, entry.Main.Humidity)
		day.rain += entry.Rain.ThreeHours
		if len(entry.Weather) > 0 {
			day.descriptions[entry.Weather[0].Description]++
		}
	}

	dates := make([]string, 0, len(daily))
	for date := range daily {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	if len(dates) > days {
		dates = dates[:days]
	}

	forecast := make([]ForecastDay, 0, len(dates))
	for _, date := range dates {
		day := daily[date]

		tempMin, tempMax := day.temps[0], day.temps[0]
		for _, temp := range day.temps[1:] {
			if temp < tempMin {
				tempMin = temp
			}
			if temp > tempMax {
				tempMax = temp
			}
		}

		humiditySum := 0.0
		for _, h := range day.humidity {
			humiditySum += h
		}

		rainProb := 20.0
		if day.rain > 0 {
			rainProb = 50.0
		}

		forecast = append(forecast, ForecastDay{
			Date:           date,
			TempMin:        tempMin,
			TempMax:        tempMax,
			Humidity:       humiditySum / float64(len(day.humidity)),
			RainfallProb:   rainProb,
			RainfallAmount: day.rain,
			Description:    dominantDescription(day.descriptions),
		})
	}
	return forecast, nil
}

// dominantDescription returns the most frequent description, breaking
// ties alphabetically for determinism.
func dominantDescription(counts map[string]int) string {
	best := ""
	bestCount := 0
	for description, count := range counts {
		if count > bestCount || (count == bestCount && description < best) {
			best = description
			bestCount = count
		}
	}
	return best
}

func (p *OpenWeatherProvider) get(endpoint string, lat, lon float64) ([]byte, error) {
	requestURL := fmt.Sprintf("%s?lat=%s&lon=%s&appid=%s&units=%s",
		endpoint,
		url.QueryEscape(fmt.Sprintf("%f", lat)),
		url.QueryEscape(fmt.Sprintf("%f", lon)),
		url.QueryEscape(p.apiKey),
		url.QueryEscape(p.units),
	)

	req, err := http.NewRequest(http.MethodGet, requestURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("User-Agent", openWeatherUserAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching weather data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-200 response: %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
