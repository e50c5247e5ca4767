package analysis

import "github.com/kailas-cloud/propdex/internal/domain/location"

// Predictions holds projected relative value changes over one, three and
// five year horizons, e.g. 0.05 for +5%.
type Predictions struct {
	OneYear   float64 `json:"1_year"`
	ThreeYear float64 `json:"3_year"`
	FiveYear  float64 `json:"5_year"`
}

// PredictValueChanges extrapolates the recent trend adjusted by the
// demand-supply imbalance. Longer horizons compound the short one and are
// clamped to progressively wider bands.
func PredictValueChanges(attrs location.Attributes) Predictions {
	trend := floatOr(attrs.PriceTrend1Y, 0)
	demand := floatOr(attrs.DemandScore, 50)
	supply := floatOr(attrs.SupplyScore, 50)

	oneYear := clampRange(trend+(demand-supply)/100*0.05, -0.3, 0.5)
	threeYear := clampRange(oneYear*2.5+0.02, -0.4, 0.8)
	fiveYear := clampRange(threeYear*1.8+0.03, -0.5, 1.2)
	return Predictions{OneYear: oneYear, ThreeYear: threeYear, FiveYear: fiveYear}
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
