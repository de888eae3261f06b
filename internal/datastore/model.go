// model.go this code defines the data model for the application
package datastore

import "time"

// Farm represents a monitored field with its crop and location.
type Farm struct {
	ID              string  `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID          string  `gorm:"index:idx_farms_user" json:"user_id"`
	Name            string  `gorm:"type:varchar(255);not null" json:"name"`
	CropType        string  `gorm:"type:varchar(100);not null" json:"crop_type"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	AreaHectares    float64 `json:"area_hectares"`
	LocationAddress string  `gorm:"type:varchar(255)" json:"location_address"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TemporalMetric represents a single stored observation of a spectral
// metric for a farm. One row per (farm, metric, timestamp).
type TemporalMetric struct {
	ID          uint      `gorm:"primaryKey"`
	FarmID      string    `gorm:"index:idx_temporal_farm_metric_ts;type:varchar(36);not null"`
	MetricType  string    `gorm:"index:idx_temporal_farm_metric_ts;type:varchar(20);not null"` // normalized upper case, e.g. NDVI
	Timestamp   time.Time `gorm:"index:idx_temporal_farm_metric_ts;not null"`
	Value       float64   `gorm:"not null"`
	IsAnomaly   bool
	AnomalyType string `gorm:"type:varchar(20)"` // spike, drop, sudden_spike, sudden_drop
}

// SatelliteAnalysis represents a persisted per-farm analysis summary
// derived from one multispectral capture.
type SatelliteAnalysis struct {
	ID             string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	FarmID         string    `gorm:"index:idx_analysis_farm_date" json:"farm_id"`
	AnalyzedAt     time.Time `gorm:"index:idx_analysis_farm_date" json:"analyzed_at"`
	NDVIMean       float64   `json:"ndvi_mean"`
	EVIMean        float64   `json:"evi_mean"`
	SAVIMean       float64   `json:"savi_mean"`
	HealthScore    float64   `json:"health_score"`
	HealthCategory string    `gorm:"type:varchar(20)" json:"health_category"` // Excellent .. Very Poor
}

// HourlyWeather represents weather observations stored alongside farm
// metrics for stress correlation.
type HourlyWeather struct {
	ID          uint      `gorm:"primaryKey"`
	FarmID      string    `gorm:"index:idx_weather_farm_time;type:varchar(36)"`
	Time        time.Time `gorm:"index:idx_weather_farm_time"`
	Temperature float64
	Humidity    float64
	Rainfall    float64
	WindSpeed   float64
	Pressure    float64
	WeatherDesc string `gorm:"type:varchar(100)"`
}
