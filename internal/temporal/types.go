// Package temporal implements historical pattern analysis for crop health
// metrics: trend estimation, anomaly detection and seasonal baseline
// comparison over per-farm time series.
package temporal

import (
	"time"
)

// Point is a single observation in a time series. Within one series
// timestamps are unique and ascending; spacing is not calendar-regular.
type Point struct {
	Timestamp time.Time      `json:"timestamp"`
	Value     float64        `json:"value"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Synthetic reports whether the point was produced by the fallback
// generator rather than read from the datastore.
func (p *Point) Synthetic() bool {
	if p.Metadata == nil {
		return false
	}
	synthetic, _ := p.Metadata["synthetic"].(bool)
	return synthetic
}

// TrendDirection classifies the slope of a fitted trend.
type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendDeclining TrendDirection = "declining"
	TrendStable    TrendDirection = "stable"
	TrendUnknown   TrendDirection = "unknown"
)

// Confidence grades how much a derived statistic should be trusted.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// TrendResult describes the direction and rate of a fitted linear trend.
type TrendResult struct {
	Direction      TrendDirection `json:"direction"`
	RatePerWeek    float64        `json:"rate_per_week"` // value units per week, rounded to 4 decimals
	Confidence     Confidence     `json:"confidence"`
	Interpretation string         `json:"interpretation"`
}

// Severity grades a detected anomaly.
type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// AnomalyType labels how an anomaly was detected and in which direction.
type AnomalyType string

const (
	AnomalySpike       AnomalyType = "spike"
	AnomalyDrop        AnomalyType = "drop"
	AnomalySuddenSpike AnomalyType = "sudden_spike"
	AnomalySuddenDrop  AnomalyType = "sudden_drop"
)

// Anomaly is a flagged observation. Deviation carries different units
// depending on Type: standard deviations for spike/drop, percent change
// for sudden_spike/sudden_drop. Callers must check Type before comparing
// deviations across anomalies.
type Anomaly struct {
	Date          time.Time   `json:"date"`
	Value         float64     `json:"value"`
	ExpectedValue float64     `json:"expected_value"`
	Deviation     float64     `json:"deviation"`
	Severity      Severity    `json:"severity"`
	Type          AnomalyType `json:"type"`
}

// IndexComparison holds per-index seasonal baseline statistics.
type IndexComparison struct {
	CurrentValue        float64 `json:"current_value"`
	HistoricalMean      float64 `json:"historical_mean"`
	HistoricalStd       float64 `json:"historical_std"`
	Deviation           float64 `json:"deviation"`
	DeviationPercentage float64 `json:"deviation_percentage"`
	IsNormal            bool    `json:"is_normal"`
}

// SeasonalComparison compares current readings against the historical
// baseline of the same season.
type SeasonalComparison struct {
	ComparisonText      string                     `json:"comparison_text"`
	IsNormal            bool                       `json:"is_normal"`
	DeviationPercentage float64                    `json:"deviation_percentage"`
	Confidence          Confidence                 `json:"confidence"`
	BaselinePeriod      string                     `json:"baseline_period,omitempty"`
	DetailedResults     map[string]IndexComparison `json:"detailed_results,omitempty"`
}
