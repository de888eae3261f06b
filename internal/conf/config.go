// config.go: settings struct and functions to load and access the
// CropSense configuration.
package conf

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Settings contains all runtime configuration for the application.
type Settings struct {
	Debug bool // true to enable debug log output

	Main struct {
		Name string // node name, used to identify this instance
	}

	Output OutputSettings // database backends

	HTTP struct {
		Host string // address the API server binds to
		Port string // port the API server listens on
	}

	Analysis AnalysisSettings // temporal analysis policy
	Weather  WeatherSettings  // weather provider settings
}

// OutputSettings selects and configures the database backend.
type OutputSettings struct {
	SQLite struct {
		Enabled bool   // true to enable SQLite output
		Path    string // path to the SQLite database file
	}
	MySQL struct {
		Enabled  bool   // true to enable MySQL output
		Username string // MySQL username
		Password string // MySQL password
		Database string // MySQL database name
		Host     string // MySQL host
		Port     string // MySQL port
	}
}

// AnalysisSettings holds the temporal analysis policy constants. These are
// policy values, not laws of nature; the defaults match the documented
// behavior of the analysis core.
type AnalysisSettings struct {
	LookbackDays        int     // default lookback window in days for trend analysis
	StableSlope         float64 // |slope| below this (value-units/day) classifies as stable
	AnomalyThresholdStd float64 // z-score threshold for the global anomaly method
	SuddenChangePct     float64 // fractional change threshold for the rate-of-change method
	SeasonalSigmaFactor float64 // readings within this many stds of the seasonal mean are normal
}

// WeatherSettings configures the OpenWeather client.
type WeatherSettings struct {
	Provider string // weather provider, "openweather" or "none"
	CacheTTL int    // cache time to live in minutes

	OpenWeather OpenWeatherSettings
}

// OpenWeatherSettings holds the OpenWeather API client configuration.
type OpenWeatherSettings struct {
	APIKey           string // OpenWeather API key
	Endpoint         string // current weather endpoint
	ForecastEndpoint string // 5 day / 3 hour forecast endpoint
	Units            string // metric or imperial
}

var (
	settingsInstance *Settings
	once             sync.Once
	settingsMutex    sync.RWMutex
)

// Load reads the configuration into the package-level Settings instance.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	initViper()

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper sets up viper: defaults, environment overrides and the optional
// config file. A missing config file is not an error, defaults apply.
func initViper() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths := configPaths()
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	viper.SetEnvPrefix("cropsense")
	viper.AutomaticEnv()

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			log.Printf("error reading config file: %v, using defaults", err)
		}
	}
}

// configPaths returns the directories searched for config.yaml, in order.
func configPaths() []string {
	paths := []string{"."}
	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(homeDir, ".config", "cropsense"))
	}
	paths = append(paths, "/etc/cropsense")
	return paths
}

// Setting returns the package-level Settings instance, loading it on first
// use. Load failures at this point fall back to defaults.
func Setting() *Settings {
	once.Do(func() {
		if settingsInstance == nil {
			if _, err := Load(); err != nil {
				log.Printf("error loading settings: %v", err)
				settingsInstance = defaultSettings()
			}
		}
	})
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// SaveYAMLConfig writes the settings to configPath as YAML. The write goes
// through a temporary file and a rename so a crash cannot leave a truncated
// config behind. Comments in an existing file are not preserved.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	yamlData, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(configPath), "config-*.yaml")
	if err != nil {
		return fmt.Errorf("error creating temporary file: %w", err)
	}
	tempFileName := tempFile.Name()
	defer os.Remove(tempFileName)

	if _, err := tempFile.Write(yamlData); err != nil {
		tempFile.Close()
		return fmt.Errorf("error writing to temporary file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("error closing temporary file: %w", err)
	}

	if err := os.Rename(tempFileName, configPath); err != nil {
		return fmt.Errorf("error replacing config file: %w", err)
	}
	return nil
}

// SetTestSettings replaces the package settings instance. Tests only.
func SetTestSettings(settings *Settings) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()
	once.Do(func() {})
	settingsInstance = settings
}
