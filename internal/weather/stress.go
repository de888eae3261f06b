package weather

import (
	"time"

	"github.com/cropsense/cropsense-go/internal/temporal"
)

// Weather event thresholds used by the stress correlation analysis.
const (
	heatStressTemp      = 35.0 // Celsius
	waterStressTemp     = 30.0
	waterStressHumidity = 40.0 // percent, below this
	waterStressRainfall = 1.0  // mm, below this
	heavyRainfall       = 50.0 // mm
	damagingWindSpeed   = 15.0 // m/s
	vigorDropFraction   = 0.1  // >10% NDVI decrease counts as a drop
)

// Stress cause labels.
const (
	CauseInsufficientData = "insufficient_data"
	CauseNoStress         = "no_stress_detected"
	CauseUnknown          = "unknown"
	CauseHeatStress       = "heat_stress"
	CauseWaterStress      = "water_stress"
	CauseHeavyRain        = "heavy_rain"
	CauseWindDamage       = "wind_damage"
)

// causeOrder fixes the tie-break priority when causes score equally.
var causeOrder = []string{CauseHeatStress, CauseWaterStress, CauseHeavyRain, CauseWindDamage}

var causeDescriptions = map[string]string{
	CauseHeatStress:  "High temperatures (>35°C) detected before NDVI drop",
	CauseWaterStress: "Hot, dry conditions with low rainfall preceded stress",
	CauseHeavyRain:   "Heavy rainfall events may have caused waterlogging",
	CauseWindDamage:  "Strong winds detected, possible physical crop damage",
}

// NDVIDrop is one detected vigor drop in the trend.
type NDVIDrop struct {
	Date           time.Time `json:"date"`
	DropPercentage float64   `json:"drop_percentage"`
	NDVIValue      float64   `json:"ndvi_value"`
}

// StressCorrelation attributes detected NDVI drops to the weather events
// that preceded them.
type StressCorrelation struct {
	LikelyCause       string         `json:"likely_cause"`
	Confidence        float64        `json:"confidence"`
	Details           string         `json:"details"`
	NDVIDropsCount    int            `json:"ndvi_drops_count,omitempty"`
	CorrelationCounts map[string]int `json:"correlation_counts,omitempty"`
}

// AnalyzeStressCorrelation looks for weather events one to seven days
// before each NDVI drop of more than ten percent and votes the most
// frequent event type as the likely cause. Confidence is the winning
// share of all correlated events.
func AnalyzeStressCorrelation(history []Data, ndviTrend []temporal.Point) StressCorrelation {
	if len(history) == 0 || len(ndviTrend) == 0 {
		return StressCorrelation{
			LikelyCause: CauseInsufficientData,
			Confidence:  0,
			Details:     "Not enough data for correlation analysis",
		}
	}

	var drops []NDVIDrop
	for i := 1; i < len(ndviTrend); i++ {
		prev := ndviTrend[i-1].Value
		curr := ndviTrend[i].Value
		if prev > 0 && (prev-curr)/prev > vigorDropFraction {
			drops = append(drops, NDVIDrop{
				Date:           ndviTrend[i].Timestamp,
				DropPercentage: (prev - curr) / prev * 100,
				NDVIValue:      curr,
			})
		}
	}

	if len(drops) == 0 {
		return StressCorrelation{
			LikelyCause: CauseNoStress,
			Confidence:  0.9,
			Details:     "NDVI trend is stable with no significant drops",
		}
	}

	correlations := map[string]int{
		CauseHeatStress:  0,
		CauseWaterStress: 0,
		CauseHeavyRain:   0,
		CauseWindDamage:  0,
	}

	for _, drop := range drops {
		for i := range history {
			observation := &history[i]
			daysBefore := int(drop.Date.Sub(observation.Timestamp).Hours() / 24)
			if daysBefore < 1 || daysBefore > 7 {
				continue
			}

			if observation.Temperature > heatStressTemp {
				correlations[CauseHeatStress]++
			}
			if observation.Temperature > waterStressTemp &&
				observation.Humidity < waterStressHumidity &&
				observation.Rainfall < waterStressRainfall {
				correlations[CauseWaterStress]++
			}
			if observation.Rainfall > heavyRainfall {
				correlations[CauseHeavyRain]++
			}
			if observation.WindSpeed > damagingWindSpeed {
				correlations[CauseWindDamage]++
			}
		}
	}

	total := 0
	for _, count := range correlations {
		total += count
	}
	if total == 0 {
		return StressCorrelation{
			LikelyCause:    CauseUnknown,
			Confidence:     0.3,
			Details:        "NDVI drop detected but no clear weather correlation found",
			NDVIDropsCount: len(drops),
		}
	}

	likelyCause := causeOrder[0]
	for _, cause := range causeOrder[1:] {
		if correlations[cause] > correlations[likelyCause] {
			likelyCause = cause
		}
	}

	return StressCorrelation{
		LikelyCause:       likelyCause,
		Confidence:        float64(correlations[likelyCause]) / float64(total),
		Details:           causeDescriptions[likelyCause],
		NDVIDropsCount:    len(drops),
		CorrelationCounts: correlations,
	}
}
