// internal/api/v2/weather.go
package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// initWeatherRoutes registers the weather endpoints.
func (c *Controller) initWeatherRoutes() {
	c.Group.GET("/weather/current", c.GetCurrentWeather)
	c.Group.GET("/weather/forecast", c.GetWeatherForecast)
}

// parseCoordinates extracts and validates lat/lon query parameters.
func parseCoordinates(ctx echo.Context) (lat, lon float64, err error) {
	lat, err = strconv.ParseFloat(ctx.QueryParam("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		return 0, 0, fmt.Errorf("invalid latitude: %q", ctx.QueryParam("lat"))
	}
	lon, err = strconv.ParseFloat(ctx.QueryParam("lon"), 64)
	if err != nil || lon < -180 || lon > 180 {
		return 0, 0, fmt.Errorf("invalid longitude: %q", ctx.QueryParam("lon"))
	}
	return lat, lon, nil
}

// GetCurrentWeather returns current conditions at a location. Results
// are cached and degrade to estimates; this endpoint never fails on
// provider errors.
func (c *Controller) GetCurrentWeather(ctx echo.Context) error {
	lat, lon, err := parseCoordinates(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "lat and lon must be valid coordinates", http.StatusBadRequest)
	}

	return ctx.JSON(http.StatusOK, c.Weather.Current(lat, lon))
}

// GetWeatherForecast returns the daily forecast for a location.
func (c *Controller) GetWeatherForecast(ctx echo.Context) error {
	lat, lon, err := parseCoordinates(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "lat and lon must be valid coordinates", http.StatusBadRequest)
	}

	days := 7
	if daysParam := ctx.QueryParam("days"); daysParam != "" {
		parsed, err := strconv.Atoi(daysParam)
		if err != nil || parsed <= 0 || parsed > 7 {
			return c.HandleError(ctx, fmt.Errorf("invalid days value: %s", daysParam),
				"days must be between 1 and 7", http.StatusBadRequest)
		}
		days = parsed
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"forecast": c.Weather.Forecast(lat, lon, days),
	})
}
