package model

import (
	"fmt"

	"github.com/kailas-cloud/propdex/internal/domain"
	"github.com/kailas-cloud/propdex/internal/domain/feature"
)

// HeuristicUncertainty is the relative uncertainty the fallback reports.
const HeuristicUncertainty = 0.15

var (
	idxSqft      = feature.Index(feature.Sqft)
	idxAge       = feature.Index(feature.Age)
	idxSchool    = feature.Index(feature.School)
	idxCrimeInv  = feature.Index(feature.CrimeInv)
	idxAreaPrice = feature.Index(feature.AreaPrice)
)

// heuristicValue is the price-per-sqft surface with age, school and safety
// adjustments. The synthetic training population is drawn from the same
// surface.
func heuristicValue(sqft, age, school, crimeInv, areaPrice float64) float64 {
	base := areaPrice * sqft
	ageAdj := 1 - age/100
	if ageAdj < 0.8 {
		ageAdj = 0.8
	}
	schoolAdj := 0.9 + school*0.2
	safetyAdj := 0.9 + crimeInv*0.2
	return base * ageAdj * schoolAdj * safetyAdj
}

// Heuristic is the deterministic fallback artifact used when no forest has
// been trained.
type Heuristic struct {
	version string
}

// NewHeuristic creates the fallback artifact.
func NewHeuristic(version string) *Heuristic {
	return &Heuristic{version: version}
}

// Version identifies the artifact.
func (h *Heuristic) Version() string { return h.version }

// Predict evaluates the heuristic surface; uncertainty is a fixed fraction
// of the value.
func (h *Heuristic) Predict(features []float64) (float64, float64, error) {
	if len(features) != feature.Dim {
		return 0, 0, domain.NewComputation("predict",
			fmt.Sprintf("input has %d features, model expects %d", len(features), feature.Dim))
	}
	value := heuristicValue(
		features[idxSqft],
		features[idxAge],
		features[idxSchool],
		features[idxCrimeInv],
		features[idxAreaPrice],
	)
	return value, value * HeuristicUncertainty, nil
}
