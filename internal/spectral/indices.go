// Package spectral computes vegetation indices from per-band reflectance
// means and classifies crop health from them. All functions are pure;
// callers feed band statistics extracted upstream from imagery.
package spectral

import (
	"math"
)

// epsilon guards normalized-difference divisions against zero denominators.
const epsilon = 1e-8

// BandMeans holds mean surface reflectance per band, Sentinel-2 naming:
// B02 blue, B03 green, B04 red, B08 NIR, B11 SWIR1.
type BandMeans struct {
	Blue  float64 `json:"blue"`
	Green float64 `json:"green"`
	Red   float64 `json:"red"`
	NIR   float64 `json:"nir"`
	SWIR  float64 `json:"swir"`
}

// Indices holds the computed vegetation indices. NBR shares the NDMI
// band pair; with single-date imagery they coincide.
type Indices struct {
	NDVI  float64 `json:"ndvi"`
	EVI   float64 `json:"evi"`
	SAVI  float64 `json:"savi"`
	OSAVI float64 `json:"osavi"`
	GNDVI float64 `json:"gndvi"`
	CIG   float64 `json:"cig"`
	LAI   float64 `json:"lai"`
	NDWI  float64 `json:"ndwi"`
	NDMI  float64 `json:"ndmi"`
	NBR   float64 `json:"nbr"`
}

// Compute derives all vegetation indices from band means.
func Compute(b BandMeans) Indices {
	idx := Indices{
		NDVI:  (b.NIR - b.Red) / (b.NIR + b.Red + epsilon),
		EVI:   2.5 * (b.NIR - b.Red) / (b.NIR + 6*b.Red - 7.5*b.Blue + 1 + epsilon),
		OSAVI: (b.NIR - b.Red) / (b.NIR + b.Red + 0.16 + epsilon),
		GNDVI: (b.NIR - b.Green) / (b.NIR + b.Green + epsilon),
		NDWI:  (b.Green - b.NIR) / (b.Green + b.NIR + epsilon),
		NDMI:  (b.NIR - b.SWIR) / (b.NIR + b.SWIR + epsilon),
	}
	idx.NBR = idx.NDMI

	// Soil adjusted index with the canonical L=0.5 correction.
	const soilFactor = 0.5
	idx.SAVI = (b.NIR - b.Red) / (b.NIR + b.Red + soilFactor + epsilon) * (1 + soilFactor)

	if b.Green != 0 {
		idx.CIG = b.NIR/b.Green - 1
	}

	idx.LAI = leafAreaIndex(idx.SAVI)

	return idx
}

// leafAreaIndex applies the empirical SAVI-based LAI estimate, clamped
// to the realistic 0..10 range. A SAVI at or above 0.69 degenerates the
// logarithm and clamps to zero.
func leafAreaIndex(savi float64) float64 {
	ratio := (0.69 - savi) / 0.59
	if ratio <= 0 {
		return 0
	}
	lai := math.Log(ratio) / 0.91
	return clamp(lai, 0, 10)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
