package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/kailas-cloud/propdex/internal/domain/location"
)

// Severity and impact labels used by risk factors and opportunities.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// RiskFactor is a concrete concern surfaced by the analysis.
type RiskFactor struct {
	Factor      string  `json:"factor"`
	Severity    string  `json:"severity"`
	Description string  `json:"description"`
	ImpactScore float64 `json:"impact_score"`
}

// Opportunity is a concrete upside surfaced by the analysis.
type Opportunity struct {
	Opportunity     string  `json:"opportunity"`
	PotentialImpact string  `json:"potential_impact"`
	Description     string  `json:"description"`
	Confidence      float64 `json:"confidence"`
}

const (
	crimeRiskThreshold      = 50.0
	crimeRiskHighThreshold  = 30.0
	disasterRiskThreshold   = 60.0
	singleRiskThreshold     = 0.3
	decliningTrendThreshold = -0.05
	risingTrendThreshold    = 0.05
	facilityUpsideThreshold = 80.0
	demandSupplyThreshold   = 1.5
)

// IdentifyRisks derives the risk factor list from the attributes and the
// suitability sub-scores.
func IdentifyRisks(attrs location.Attributes, s Suitability) []RiskFactor {
	var risks []RiskFactor

	if s.Safety < crimeRiskThreshold {
		severity := SeverityMedium
		if s.Safety < crimeRiskHighThreshold {
			severity = SeverityHigh
		}
		risks = append(risks, RiskFactor{
			Factor:      "High Crime Rate",
			Severity:    severity,
			Description: fmt.Sprintf("Crime rate is above average with safety score of %.1f", s.Safety),
			ImpactScore: 100 - s.Safety,
		})
	}

	if s.Disaster < disasterRiskThreshold {
		kinds := location.RiskKinds()
		probs := attrs.RiskProbabilities()
		var elevated []string
		for i, p := range probs {
			if p > singleRiskThreshold {
				elevated = append(elevated, kinds[i])
			}
		}
		if len(elevated) > 0 {
			severity := SeverityMedium
			if len(elevated) > 2 {
				severity = SeverityHigh
			}
			risks = append(risks, RiskFactor{
				Factor:      "Natural Disaster Risk",
				Severity:    severity,
				Description: "High risk for: " + strings.Join(elevated, ", "),
				ImpactScore: 100 - s.Disaster,
			})
		}
	}

	trend := floatOr(attrs.PriceTrend1Y, 0)
	if trend < decliningTrendThreshold {
		risks = append(risks, RiskFactor{
			Factor:      "Declining Property Values",
			Severity:    SeverityMedium,
			Description: fmt.Sprintf("Property values have declined %.1f%% in the past year", math.Abs(trend*100)),
			ImpactScore: math.Abs(trend) * 100,
		})
	}

	return risks
}

// IdentifyOpportunities derives the opportunity list from the attributes and
// the suitability sub-scores.
func IdentifyOpportunities(attrs location.Attributes, s Suitability) []Opportunity {
	var opps []Opportunity

	if s.Facility > facilityUpsideThreshold {
		opps = append(opps, Opportunity{
			Opportunity:     "Excellent Facility Access",
			PotentialImpact: SeverityHigh,
			Description:     "Outstanding access to schools, hospitals, and amenities",
			Confidence:      0.9,
		})
	}

	trend := floatOr(attrs.PriceTrend1Y, 0)
	if trend > risingTrendThreshold {
		opps = append(opps, Opportunity{
			Opportunity:     "Rising Property Values",
			PotentialImpact: SeverityHigh,
			Description:     fmt.Sprintf("Property values increased %.1f%% in the past year", trend*100),
			Confidence:      0.8,
		})
	}

	demand := floatOr(attrs.DemandScore, 50)
	supply := floatOr(attrs.SupplyScore, 50)
	if supply < 1 {
		supply = 1
	}
	if demand/supply > demandSupplyThreshold {
		opps = append(opps, Opportunity{
			Opportunity:     "Favorable Market Dynamics",
			PotentialImpact: SeverityMedium,
			Description:     "High demand with limited supply suggests good investment potential",
			Confidence:      0.7,
		})
	}

	return opps
}
