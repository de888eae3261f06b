package temporal

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

const (
	// DefaultAnomalyThresholdStd is the z-score magnitude beyond which the
	// global method flags a point.
	DefaultAnomalyThresholdStd = 2.0

	// DefaultSuddenChangePct is the fractional change between adjacent
	// points beyond which the rate-of-change method flags a point.
	DefaultSuddenChangePct = 0.2

	// suddenChangeEpsilon guards the relative change division when the
	// previous value is zero.
	suddenChangeEpsilon = 1e-6

	// dedupWindowSeconds is the distance, in seconds, within which a
	// rate-of-change candidate is considered a duplicate of an anomaly
	// the global method already flagged.
	dedupWindowSeconds = 86400
)

// DetectAnomalies flags statistically anomalous points in a series using
// two independent methods: global z-score deviation and local rate of
// change. The result lists all global anomalies in chronological order
// followed by the surviving rate-of-change anomalies in chronological
// order. Fewer than three points yields no anomalies.
//
// Deviation units differ between the two methods (standard deviations vs
// percent change); see the Anomaly type.
func DetectAnomalies(series []Point, thresholdStd, suddenChangePct float64) []Anomaly {
	if thresholdStd <= 0 {
		thresholdStd = DefaultAnomalyThresholdStd
	}
	if suddenChangePct <= 0 {
		suddenChangePct = DefaultSuddenChangePct
	}

	if len(series) < 3 {
		return nil
	}

	values := make([]float64, len(series))
	for i := range series {
		values[i] = series[i].Value
	}

	mean := stat.Mean(values, nil)
	std := stat.PopStdDev(values, nil)

	var anomalies []Anomaly

	// Global method. A perfectly flat series has no anomalies.
	if std > 0 {
		for i := range series {
			z := (values[i] - mean) / std
			if math.Abs(z) <= thresholdStd {
				continue
			}

			severity := SeverityMinor
			switch {
			case math.Abs(z) > 3:
				severity = SeveritySevere
			case math.Abs(z) > 2.5:
				severity = SeverityModerate
			}

			anomalyType := AnomalyDrop
			if z > 0 {
				anomalyType = AnomalySpike
			}

			anomalies = append(anomalies, Anomaly{
				Date:          series[i].Timestamp,
				Value:         values[i],
				ExpectedValue: mean,
				Deviation:     math.Abs(z),
				Severity:      severity,
				Type:          anomalyType,
			})
		}
	}

	globalCount := len(anomalies)

	// Rate-of-change method. Skips candidates within a day of an anomaly
	// the global method already flagged, so one event is not reported
	// under two labels.
	for i := 1; i < len(series); i++ {
		change := math.Abs(values[i] - values[i-1])
		relativeChange := change / (values[i-1] + suddenChangeEpsilon)
		if relativeChange <= suddenChangePct {
			continue
		}

		alreadyFlagged := false
		for j := 0; j < globalCount; j++ {
			if math.Abs(anomalies[j].Date.Sub(series[i].Timestamp).Seconds()) < dedupWindowSeconds {
				alreadyFlagged = true
				break
			}
		}
		if alreadyFlagged {
			continue
		}

		severity := SeverityMinor
		if relativeChange > 0.3 {
			severity = SeverityModerate
		}

		anomalyType := AnomalySuddenDrop
		if values[i] > values[i-1] {
			anomalyType = AnomalySuddenSpike
		}

		anomalies = append(anomalies, Anomaly{
			Date:          series[i].Timestamp,
			Value:         values[i],
			ExpectedValue: values[i-1],
			Deviation:     relativeChange * 100, // percent, not standard deviations
			Severity:      severity,
			Type:          anomalyType,
		})
	}

	return anomalies
}
