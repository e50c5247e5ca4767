package explain

import (
	"fmt"

	"github.com/kailas-cloud/propdex/internal/domain/feature"
	"github.com/kailas-cloud/propdex/internal/domain/score"
)

type featureLabel struct {
	label string
	unit  string
}

var featureLabels = map[string]featureLabel{
	feature.Sqft:           {"Property size", "sq ft"},
	feature.Beds:           {"Number of bedrooms", "bedrooms"},
	feature.Baths:          {"Number of bathrooms", "bathrooms"},
	feature.Age:            {"Property age", "years old"},
	feature.LotSize:        {"Lot size", "acres"},
	feature.School:         {"School quality", "rating"},
	feature.CrimeInv:       {"Safety level", "safety score"},
	feature.FloodInv:       {"Flood risk protection", "risk score"},
	feature.HospitalAccess: {"Hospital accessibility", "access score"},
	feature.EmployerAccess: {"Employment accessibility", "access score"},
	feature.AreaPrice:      {"Area price level", "$/sq ft"},
}

// DescribeValueImpact renders the standard impact line for a valuation
// attribution.
func DescribeValueImpact(featureName string, attribution, featureValue float64) string {
	fl, ok := featureLabels[featureName]
	if !ok {
		fl = featureLabel{featureName, "value"}
	}
	impact := "increases"
	abs := attribution
	if attribution < 0 {
		impact = "decreases"
		abs = -attribution
	}
	return fmt.Sprintf("%s (%.2f %s) %s property value by $%.0f", fl.label, featureValue, fl.unit, impact, abs)
}

var componentLabels = map[string]string{
	score.ComponentValue:         "Price attractiveness",
	score.ComponentSchool:        "School quality",
	score.ComponentSafety:        "Neighborhood safety",
	score.ComponentEnvironment:   "Environmental resilience",
	score.ComponentAccessibility: "Employment accessibility",
}

// QualityWord maps a 0-100 component score to its quality band.
func QualityWord(componentScore float64) string {
	switch {
	case componentScore >= 80:
		return "excellent"
	case componentScore >= 60:
		return "good"
	case componentScore >= 40:
		return "fair"
	default:
		return "poor"
	}
}

// DescribeComponent renders the standard line for a beneficiary score
// component; defaulted components state that a neutral fallback was applied.
func DescribeComponent(component string, componentScore float64, defaulted bool) string {
	label, ok := componentLabels[component]
	if !ok {
		label = component
	}
	s := fmt.Sprintf("%s is %s (%.0f/100)", label, QualityWord(componentScore), componentScore)
	if defaulted {
		s += " (neutral default applied)"
	}
	return s
}
