// internal/api/v2/analysis.go
package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/cropsense/cropsense-go/internal/spectral"
	"github.com/cropsense/cropsense-go/internal/temporal"
	"github.com/cropsense/cropsense-go/internal/weather"
)

// initAnalysisRoutes registers the temporal and spectral analysis endpoints.
func (c *Controller) initAnalysisRoutes() {
	c.Group.GET("/analysis/trends/:farm_id", c.GetFarmTrends)
	c.Group.POST("/analysis/metrics", c.SaveMetric)
	c.Group.POST("/analysis/seasonal/:farm_id", c.CompareSeasonal)
	c.Group.POST("/analysis/indices", c.ComputeIndices)
	c.Group.GET("/analysis/stress/:farm_id", c.AnalyzeStress)
}

// GetFarmTrends returns the full trend report for one farm and metric.
// Query parameters: metric (default NDVI) and days (default from settings).
func (c *Controller) GetFarmTrends(ctx echo.Context) error {
	farmID := ctx.Param("farm_id")
	if farmID == "" {
		return c.HandleError(ctx, fmt.Errorf("missing farm ID"), "Farm ID is required", http.StatusBadRequest)
	}

	metric := ctx.QueryParam("metric")
	if metric == "" {
		metric = "NDVI"
	}

	days := 0
	if daysParam := ctx.QueryParam("days"); daysParam != "" {
		parsed, err := strconv.Atoi(daysParam)
		if err != nil || parsed <= 0 {
			return c.HandleError(ctx, fmt.Errorf("invalid days value: %s", daysParam),
				"days must be a positive integer", http.StatusBadRequest)
		}
		days = parsed
	}

	report, err := c.Temporal.AnalyzeFarmTrend(farmID, metric, days)
	if err != nil {
		return c.HandleCategorizedError(ctx, err, "Failed to analyze farm trend")
	}

	return ctx.JSON(http.StatusOK, report)
}

// saveMetricRequest is the payload for storing one metric observation.
type saveMetricRequest struct {
	FarmID      string  `json:"farm_id"`
	MetricType  string  `json:"metric_type"`
	Value       float64 `json:"value"`
	IsAnomaly   bool    `json:"is_anomaly"`
	AnomalyType string  `json:"anomaly_type"`
}

// SaveMetric stores a single metric observation for later trend analysis.
func (c *Controller) SaveMetric(ctx echo.Context) error {
	var req saveMetricRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}
	if req.FarmID == "" || req.MetricType == "" {
		return c.HandleError(ctx, fmt.Errorf("missing required fields"),
			"farm_id and metric_type are required", http.StatusBadRequest)
	}

	if err := c.Temporal.SaveMetric(req.FarmID, req.MetricType, req.Value, req.IsAnomaly, req.AnomalyType); err != nil {
		return c.HandleCategorizedError(ctx, err, "Failed to save metric")
	}

	return ctx.JSON(http.StatusCreated, map[string]any{
		"status":  "saved",
		"farm_id": req.FarmID,
	})
}

// seasonalRequest carries the current index readings to compare against
// the farm's seasonal baseline.
type seasonalRequest struct {
	CropType string             `json:"crop_type"`
	Indices  map[string]float64 `json:"indices"`
}

// CompareSeasonal compares posted index values against the farm's
// seasonal history.
func (c *Controller) CompareSeasonal(ctx echo.Context) error {
	farmID := ctx.Param("farm_id")
	if farmID == "" {
		return c.HandleError(ctx, fmt.Errorf("missing farm ID"), "Farm ID is required", http.StatusBadRequest)
	}

	var req seasonalRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}
	if len(req.Indices) == 0 {
		return c.HandleError(ctx, fmt.Errorf("no index values provided"),
			"at least one index value is required", http.StatusBadRequest)
	}

	comparison := c.Temporal.CompareSeasonal(req.Indices, farmID, req.CropType, nil)
	return ctx.JSON(http.StatusOK, comparison)
}

// indicesRequest carries per-band reflectance means.
type indicesRequest struct {
	Bands spectral.BandMeans `json:"bands"`
}

// indicesResponse returns computed indices with the derived health report.
type indicesResponse struct {
	Indices spectral.Indices      `json:"indices"`
	Health  spectral.HealthReport `json:"health"`
}

// ComputeIndices derives vegetation indices and a health classification
// from posted band means.
func (c *Controller) ComputeIndices(ctx echo.Context) error {
	var req indicesRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}

	indices := spectral.Compute(req.Bands)
	return ctx.JSON(http.StatusOK, indicesResponse{
		Indices: indices,
		Health:  spectral.AnalyzeHealth(indices),
	})
}

// AnalyzeStress correlates stored weather history with the farm's NDVI
// trend and reports the likely stress cause.
func (c *Controller) AnalyzeStress(ctx echo.Context) error {
	farmID := ctx.Param("farm_id")
	if farmID == "" {
		return c.HandleError(ctx, fmt.Errorf("missing farm ID"), "Farm ID is required", http.StatusBadRequest)
	}

	days := 30
	if daysParam := ctx.QueryParam("days"); daysParam != "" {
		parsed, err := strconv.Atoi(daysParam)
		if err != nil || parsed <= 0 {
			return c.HandleError(ctx, fmt.Errorf("invalid days value: %s", daysParam),
				"days must be a positive integer", http.StatusBadRequest)
		}
		days = parsed
	}

	history, err := c.Weather.History(farmID, days)
	if err != nil {
		return c.HandleCategorizedError(ctx, err, "Failed to load weather history")
	}

	var trend []temporal.Point
	if c.Temporal != nil {
		trend = c.Temporal.HistoricalTrend(farmID, "NDVI", days)
	}

	correlation := weather.AnalyzeStressCorrelation(history, trend)
	return ctx.JSON(http.StatusOK, correlation)
}
