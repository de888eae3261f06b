package spectral

import "slices"

// Health categories ordered from best to worst.
const (
	HealthExcellent = "Excellent"
	HealthGood      = "Good"
	HealthFair      = "Fair"
	HealthPoor      = "Poor"
	HealthVeryPoor  = "Very Poor"
)

// Stress indicator labels. Recommendations key off these strings.
const (
	StressLowVigor       = "Low vegetation vigor"
	StressWater          = "Water stress detected"
	StressLowChlorophyll = "Low chlorophyll content"
	StressLowLeafDensity = "Low leaf density"
)

// HealthReport classifies overall crop condition from index values.
type HealthReport struct {
	OverallHealth    string   `json:"overall_health"`
	VigorLevel       string   `json:"vigor_level"`
	HealthScore      float64  `json:"health_score"`
	StressIndicators []string `json:"stress_indicators"`
	Recommendations  []string `json:"recommendations"`
}

// AnalyzeHealth grades crop health from computed indices. The headline
// classification is NDVI-banded; the remaining indices contribute stress
// indicators and the recommendations derived from them.
func AnalyzeHealth(idx Indices) HealthReport {
	report := HealthReport{
		StressIndicators: []string{},
		Recommendations:  []string{},
	}

	switch {
	case idx.NDVI > 0.6:
		report.OverallHealth = HealthExcellent
		report.VigorLevel = "High"
		report.HealthScore = 0.9
	case idx.NDVI > 0.4:
		report.OverallHealth = HealthGood
		report.VigorLevel = "Moderate-High"
		report.HealthScore = 0.7
	case idx.NDVI > 0.2:
		report.OverallHealth = HealthFair
		report.VigorLevel = "Moderate"
		report.HealthScore = 0.5
	case idx.NDVI > 0.1:
		report.OverallHealth = HealthPoor
		report.VigorLevel = "Low"
		report.HealthScore = 0.3
	default:
		report.OverallHealth = HealthVeryPoor
		report.VigorLevel = "Very Low"
		report.HealthScore = 0.1
	}

	if idx.NDVI < 0.3 {
		report.StressIndicators = append(report.StressIndicators, StressLowVigor)
	}
	if idx.NDMI < 0.1 {
		report.StressIndicators = append(report.StressIndicators, StressWater)
	}
	if idx.EVI < 0.2 {
		report.StressIndicators = append(report.StressIndicators, StressLowChlorophyll)
	}
	if idx.LAI < 1.0 {
		report.StressIndicators = append(report.StressIndicators, StressLowLeafDensity)
	}

	if slices.Contains(report.StressIndicators, StressWater) {
		report.Recommendations = append(report.Recommendations, "Increase irrigation frequency")
	}
	if slices.Contains(report.StressIndicators, StressLowVigor) {
		report.Recommendations = append(report.Recommendations, "Consider fertilizer application")
	}
	if slices.Contains(report.StressIndicators, StressLowChlorophyll) {
		report.Recommendations = append(report.Recommendations, "Monitor for nutrient deficiency")
	}
	if len(report.StressIndicators) == 0 {
		report.Recommendations = append(report.Recommendations, "Continue current management practices")
	}

	return report
}
