package conf

import (
	"fmt"
)

// ValidateSettings checks the loaded configuration for values that would
// put the service into an unusable state.
func ValidateSettings(settings *Settings) error {
	if !settings.Output.SQLite.Enabled && !settings.Output.MySQL.Enabled {
		return fmt.Errorf("no database backend enabled, enable output.sqlite or output.mysql")
	}
	if settings.Output.SQLite.Enabled && settings.Output.SQLite.Path == "" {
		return fmt.Errorf("output.sqlite.path must not be empty")
	}
	if settings.Analysis.LookbackDays <= 0 {
		return fmt.Errorf("analysis.lookbackdays must be positive, got %d", settings.Analysis.LookbackDays)
	}
	if settings.Analysis.AnomalyThresholdStd <= 0 {
		return fmt.Errorf("analysis.anomalythresholdstd must be positive, got %f", settings.Analysis.AnomalyThresholdStd)
	}
	if settings.Analysis.SuddenChangePct <= 0 {
		return fmt.Errorf("analysis.suddenchangepct must be positive, got %f", settings.Analysis.SuddenChangePct)
	}
	if settings.Analysis.SeasonalSigmaFactor <= 0 {
		return fmt.Errorf("analysis.seasonalsigmafactor must be positive, got %f", settings.Analysis.SeasonalSigmaFactor)
	}
	switch settings.Weather.Provider {
	case "openweather", "none":
	default:
		return fmt.Errorf("unknown weather provider: %s", settings.Weather.Provider)
	}
	return nil
}
