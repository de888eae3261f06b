// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cropsense/cropsense-go/internal/conf"
	"github.com/cropsense/cropsense-go/internal/errors"
)

// Interface abstracts the underlying database implementation and defines
// the operations the rest of the application may perform.
type Interface interface {
	Open() error
	Close() error

	// farms
	CreateFarm(farm *Farm) error
	GetFarm(id string) (Farm, error)
	GetFarms(userID string, limit int) ([]Farm, error)
	UpdateFarm(id string, updates map[string]any) (Farm, error)
	DeleteFarm(id string) error

	// temporal metrics
	GetTemporalMetrics(farmID, metricType string, since time.Time) ([]TemporalMetric, error)
	SaveTemporalMetric(metric *TemporalMetric) error

	// satellite analysis records
	SaveAnalysis(analysis *SatelliteAnalysis) error
	LatestAnalysis(farmID string) (*SatelliteAnalysis, error)
	GetAnalyses(farmID string) ([]SatelliteAnalysis, error)

	// weather observations
	SaveHourlyWeather(weather *HourlyWeather) error
	GetHourlyWeather(farmID string, since time.Time) ([]HourlyWeather, error)
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB *gorm.DB // GORM database instance
}

// New creates a new datastore instance for the backend selected in settings.
func New(settings *conf.Settings) Interface {
	switch {
	case settings.Output.SQLite.Enabled:
		return &SQLiteStore{
			Settings: settings,
		}
	case settings.Output.MySQL.Enabled:
		return &MySQLStore{
			Settings: settings,
		}
	default:
		return nil
	}
}

// CreateFarm inserts a new farm record.
func (ds *DataStore) CreateFarm(farm *Farm) error {
	if err := ds.DB.Create(farm).Error; err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "create_farm").
			Build()
	}
	return nil
}

// GetFarm retrieves a farm by its identifier.
func (ds *DataStore) GetFarm(id string) (Farm, error) {
	var farm Farm
	if err := ds.DB.First(&farm, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Farm{}, errors.Newf("farm not found: %s", id).
				Component("datastore").
				Category(errors.CategoryNotFound).
				Context("farm_id", id).
				Build()
		}
		return Farm{}, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "get_farm").
			Build()
	}
	return farm, nil
}

// GetFarms retrieves farms newest first, optionally filtered by user.
func (ds *DataStore) GetFarms(userID string, limit int) ([]Farm, error) {
	var farms []Farm
	query := ds.DB.Order("created_at DESC")
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&farms).Error; err != nil {
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "get_farms").
			Build()
	}
	return farms, nil
}

// UpdateFarm applies a partial update and returns the updated record.
func (ds *DataStore) UpdateFarm(id string, updates map[string]any) (Farm, error) {
	farm, err := ds.GetFarm(id)
	if err != nil {
		return Farm{}, err
	}
	if err := ds.DB.Model(&farm).Updates(updates).Error; err != nil {
		return Farm{}, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "update_farm").
			Context("farm_id", id).
			Build()
	}
	return ds.GetFarm(id)
}

// DeleteFarm removes a farm by its identifier.
func (ds *DataStore) DeleteFarm(id string) error {
	result := ds.DB.Delete(&Farm{}, "id = ?", id)
	if result.Error != nil {
		return errors.New(result.Error).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "delete_farm").
			Build()
	}
	if result.RowsAffected == 0 {
		return errors.Newf("farm not found: %s", id).
			Component("datastore").
			Category(errors.CategoryNotFound).
			Context("farm_id", id).
			Build()
	}
	return nil
}

// GetTemporalMetrics retrieves stored metric observations for a farm,
// filtered by normalized metric type and cutoff time, ascending by time.
func (ds *DataStore) GetTemporalMetrics(farmID, metricType string, since time.Time) ([]TemporalMetric, error) {
	var metrics []TemporalMetric
	err := ds.DB.
		Where("farm_id = ? AND metric_type = ? AND timestamp >= ?", farmID, metricType, since).
		Order("timestamp ASC").
		Find(&metrics).Error
	if err != nil {
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "get_temporal_metrics").
			Context("farm_id", farmID).
			Context("metric_type", metricType).
			Build()
	}
	return metrics, nil
}

// SaveTemporalMetric inserts a single metric observation.
func (ds *DataStore) SaveTemporalMetric(metric *TemporalMetric) error {
	if err := ds.DB.Create(metric).Error; err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "save_temporal_metric").
			Context("farm_id", metric.FarmID).
			Build()
	}
	return nil
}

// SaveAnalysis inserts a satellite analysis summary.
func (ds *DataStore) SaveAnalysis(analysis *SatelliteAnalysis) error {
	if err := ds.DB.Create(analysis).Error; err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "save_analysis").
			Build()
	}
	return nil
}

// LatestAnalysis returns the most recent analysis for a farm, or nil when
// the farm has none.
func (ds *DataStore) LatestAnalysis(farmID string) (*SatelliteAnalysis, error) {
	var analysis SatelliteAnalysis
	err := ds.DB.
		Where("farm_id = ?", farmID).
		Order("analyzed_at DESC").
		First(&analysis).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "latest_analysis").
			Build()
	}
	return &analysis, nil
}

// GetAnalyses returns all analyses for a farm, newest first.
func (ds *DataStore) GetAnalyses(farmID string) ([]SatelliteAnalysis, error) {
	var analyses []SatelliteAnalysis
	err := ds.DB.
		Where("farm_id = ?", farmID).
		Order("analyzed_at DESC").
		Find(&analyses).Error
	if err != nil {
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "get_analyses").
			Build()
	}
	return analyses, nil
}

// SaveHourlyWeather saves an hourly weather observation.
func (ds *DataStore) SaveHourlyWeather(weather *HourlyWeather) error {
	if err := ds.DB.Create(weather).Error; err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "save_hourly_weather").
			Build()
	}
	return nil
}

// GetHourlyWeather retrieves weather observations for a farm since the
// given time, ascending.
func (ds *DataStore) GetHourlyWeather(farmID string, since time.Time) ([]HourlyWeather, error) {
	var weather []HourlyWeather
	err := ds.DB.
		Where("farm_id = ? AND time >= ?", farmID, since).
		Order("time ASC").
		Find(&weather).Error
	if err != nil {
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "get_hourly_weather").
			Build()
	}
	return weather, nil
}

// performAutoMigration runs gorm automigration for all models.
func performAutoMigration(db *gorm.DB, debug bool, dbType, connectionInfo string) error {
	if err := db.AutoMigrate(&Farm{}, &TemporalMetric{}, &SatelliteAnalysis{}, &HourlyWeather{}); err != nil {
		return fmt.Errorf("failed to auto-migrate %s database: %w", dbType, err)
	}

	if debug {
		log.Printf("%s database connection initialized: %s", dbType, connectionInfo)
	}

	return nil
}

// createGormLogger builds the logger gorm uses for slow query warnings.
func createGormLogger() logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)
}
