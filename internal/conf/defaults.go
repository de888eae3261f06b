// defaults.go: default configuration values applied before any config file
// or environment overrides.
package conf

import (
	"github.com/spf13/viper"
)

// setDefaultConfig registers the default value of every setting with viper.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	// Main settings
	viper.SetDefault("main.name", "CropSense")

	// Database settings
	viper.SetDefault("output.sqlite.enabled", true)
	viper.SetDefault("output.sqlite.path", "cropsense.db")
	viper.SetDefault("output.mysql.enabled", false)
	viper.SetDefault("output.mysql.username", "cropsense")
	viper.SetDefault("output.mysql.password", "secret")
	viper.SetDefault("output.mysql.database", "cropsense")
	viper.SetDefault("output.mysql.host", "localhost")
	viper.SetDefault("output.mysql.port", "3306")

	// HTTP server settings
	viper.SetDefault("http.host", "0.0.0.0")
	viper.SetDefault("http.port", "8080")

	// Temporal analysis policy
	viper.SetDefault("analysis.lookbackdays", 90)
	viper.SetDefault("analysis.stableslope", 0.001)
	viper.SetDefault("analysis.anomalythresholdstd", 2.0)
	viper.SetDefault("analysis.suddenchangepct", 0.2)
	viper.SetDefault("analysis.seasonalsigmafactor", 1.5)

	// Weather settings
	viper.SetDefault("weather.provider", "openweather")
	viper.SetDefault("weather.cachettl", 60)
	viper.SetDefault("weather.openweather.apikey", "")
	viper.SetDefault("weather.openweather.endpoint", "https://api.openweathermap.org/data/2.5/weather")
	viper.SetDefault("weather.openweather.forecastendpoint", "https://api.openweathermap.org/data/2.5/forecast")
	viper.SetDefault("weather.openweather.units", "metric")
}

// defaultSettings builds a Settings struct carrying only the defaults.
func defaultSettings() *Settings {
	setDefaultConfig()
	settings := &Settings{}
	if err := viper.Unmarshal(settings); err != nil {
		// Defaults are statically known good; an unmarshal failure here
		// means the struct and the default keys have drifted apart.
		panic(err)
	}
	return settings
}
