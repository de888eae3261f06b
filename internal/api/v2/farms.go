// internal/api/v2/farms.go
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/cropsense/cropsense-go/internal/datastore"
)

// initFarmRoutes registers the farm management endpoints.
func (c *Controller) initFarmRoutes() {
	c.Group.GET("/farms", c.ListFarms)
	c.Group.POST("/farms", c.CreateFarm)
	c.Group.GET("/farms/:id", c.GetFarm)
	c.Group.PUT("/farms/:id", c.UpdateFarm)
	c.Group.DELETE("/farms/:id", c.DeleteFarm)
	c.Group.GET("/farms/:id/latest-analysis", c.GetLatestAnalysis)
	c.Group.GET("/farms/:id/stats", c.GetFarmStats)
}

// farmRequest is the payload for creating or updating a farm.
type farmRequest struct {
	UserID          string  `json:"user_id"`
	Name            string  `json:"name"`
	CropType        string  `json:"crop_type"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	AreaHectares    float64 `json:"area_hectares"`
	LocationAddress string  `json:"location_address"`
}

// ListFarms returns farms, optionally filtered by user and limited.
func (c *Controller) ListFarms(ctx echo.Context) error {
	userID := ctx.QueryParam("user_id")

	farms, err := c.DS.GetFarms(userID, 0)
	if err != nil {
		return c.HandleCategorizedError(ctx, err, "Failed to list farms")
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"farms": farms,
		"count": len(farms),
	})
}

// CreateFarm registers a new farm.
func (c *Controller) CreateFarm(ctx echo.Context) error {
	var req farmRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}
	if req.Name == "" || req.CropType == "" {
		return c.HandleError(ctx, fmt.Errorf("missing required fields"),
			"name and crop_type are required", http.StatusBadRequest)
	}

	now := time.Now()
	farm := &datastore.Farm{
		ID:              uuid.NewString(),
		UserID:          req.UserID,
		Name:            req.Name,
		CropType:        req.CropType,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		AreaHectares:    req.AreaHectares,
		LocationAddress: req.LocationAddress,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := c.DS.CreateFarm(farm); err != nil {
		return c.HandleCategorizedError(ctx, err, "Failed to create farm")
	}

	return ctx.JSON(http.StatusCreated, farm)
}

// GetFarm returns one farm by ID.
func (c *Controller) GetFarm(ctx echo.Context) error {
	farm, err := c.DS.GetFarm(ctx.Param("id"))
	if err != nil {
		return c.HandleCategorizedError(ctx, err, "Failed to get farm")
	}
	return ctx.JSON(http.StatusOK, farm)
}

// UpdateFarm applies a partial update to a farm.
func (c *Controller) UpdateFarm(ctx echo.Context) error {
	var req map[string]any
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}

	// Only whitelisted columns may be updated.
	updates := make(map[string]any)
	for key, column := range map[string]string{
		"name":             "name",
		"crop_type":        "crop_type",
		"latitude":         "latitude",
		"longitude":        "longitude",
		"area_hectares":    "area_hectares",
		"location_address": "location_address",
	} {
		if value, ok := req[key]; ok {
			updates[column] = value
		}
	}
	if len(updates) == 0 {
		return c.HandleError(ctx, fmt.Errorf("no updatable fields provided"),
			"request contains no updatable fields", http.StatusBadRequest)
	}
	updates["updated_at"] = time.Now()

	farm, err := c.DS.UpdateFarm(ctx.Param("id"), updates)
	if err != nil {
		return c.HandleCategorizedError(ctx, err, "Failed to update farm")
	}
	return ctx.JSON(http.StatusOK, farm)
}

// DeleteFarm removes a farm.
func (c *Controller) DeleteFarm(ctx echo.Context) error {
	if err := c.DS.DeleteFarm(ctx.Param("id")); err != nil {
		return c.HandleCategorizedError(ctx, err, "Failed to delete farm")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// GetLatestAnalysis returns the most recent satellite analysis summary
// for a farm, or 404 when none exists.
func (c *Controller) GetLatestAnalysis(ctx echo.Context) error {
	farmID := ctx.Param("id")

	analysis, err := c.DS.LatestAnalysis(farmID)
	if err != nil {
		return c.HandleCategorizedError(ctx, err, "Failed to get latest analysis")
	}
	if analysis == nil {
		return c.HandleError(ctx, fmt.Errorf("no analysis for farm %s", farmID),
			"No analysis found for farm", http.StatusNotFound)
	}
	return ctx.JSON(http.StatusOK, analysis)
}

// farmStats summarizes a farm's stored analyses.
type farmStats struct {
	FarmID             string  `json:"farm_id"`
	TotalAnalyses      int     `json:"total_analyses"`
	AverageHealthScore float64 `json:"average_health_score"`
	AverageNDVI        float64 `json:"average_ndvi"`
	LatestCategory     string  `json:"latest_category,omitempty"`
	FirstAnalyzedAt    string  `json:"first_analyzed_at,omitempty"`
	LastAnalyzedAt     string  `json:"last_analyzed_at,omitempty"`
}

// GetFarmStats aggregates the farm's analysis history.
func (c *Controller) GetFarmStats(ctx echo.Context) error {
	farmID := ctx.Param("id")

	analyses, err := c.DS.GetAnalyses(farmID)
	if err != nil {
		return c.HandleCategorizedError(ctx, err, "Failed to get farm stats")
	}

	stats := farmStats{FarmID: farmID, TotalAnalyses: len(analyses)}
	if len(analyses) > 0 {
		var scoreSum, ndviSum float64
		for i := range analyses {
			scoreSum += analyses[i].HealthScore
			ndviSum += analyses[i].NDVIMean
		}
		stats.AverageHealthScore = scoreSum / float64(len(analyses))
		stats.AverageNDVI = ndviSum / float64(len(analyses))

		// GetAnalyses returns newest first.
		stats.LatestCategory = analyses[0].HealthCategory
		stats.LastAnalyzedAt = analyses[0].AnalyzedAt.Format(time.RFC3339)
		stats.FirstAnalyzedAt = analyses[len(analyses)-1].AnalyzedAt.Format(time.RFC3339)
	}

	return ctx.JSON(http.StatusOK, stats)
}
