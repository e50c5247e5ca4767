package analysis

import (
	"strings"
	"time"

	"github.com/kailas-cloud/propdex/internal/domain/explain"
	"github.com/kailas-cloud/propdex/internal/domain/recommend"
	"github.com/kailas-cloud/propdex/internal/domain/score"
	"github.com/kailas-cloud/propdex/internal/domain/valuation"
)

// Summary is the human-readable digest of the explanations.
type Summary struct {
	ValueDrivers       string `json:"value_drivers,omitempty"`
	BeneficiaryDrivers string `json:"beneficiary_drivers,omitempty"`
	InvestmentOutlook  string `json:"investment_outlook"`
}

// Outlook bands over the beneficiary overall score.
const (
	strongOutlookScore   = 75.0
	moderateOutlookScore = 60.0
	mixedOutlookScore    = 45.0
)

const summaryDrivers = 3

// BuildSummary digests the explanations into one-line driver summaries and
// an outlook phrase for the beneficiary overall score.
func BuildSummary(valueExp, beneficiaryExp *explain.Explanation, overallScore float64) Summary {
	var s Summary

	if valueExp != nil {
		if drivers := attributionNames(valueExp.Positive(), summaryDrivers); len(drivers) > 0 {
			s.ValueDrivers = "Property value is primarily driven by: " + strings.Join(drivers, ", ")
		}
	}
	if beneficiaryExp != nil {
		if drivers := attributionNames(beneficiaryExp.Ranked(), summaryDrivers); len(drivers) > 0 {
			s.BeneficiaryDrivers = "Investment attractiveness is mainly influenced by: " + strings.Join(drivers, ", ")
		}
	}

	switch {
	case overallScore >= strongOutlookScore:
		s.InvestmentOutlook = "Strong investment potential with favorable characteristics"
	case overallScore >= moderateOutlookScore:
		s.InvestmentOutlook = "Moderate investment potential with some positive factors"
	case overallScore >= mixedOutlookScore:
		s.InvestmentOutlook = "Mixed investment signals requiring careful consideration"
	default:
		s.InvestmentOutlook = "Limited investment potential with significant challenges"
	}
	return s
}

func attributionNames(attrs []explain.Attribution, limit int) []string {
	if len(attrs) > limit {
		attrs = attrs[:limit]
	}
	names := make([]string, 0, len(attrs))
	for _, a := range attrs {
		names = append(names, a.Feature)
	}
	return names
}

// Result is the assembled output of one comprehensive analysis. Optional
// stages leave their pointers nil; Trace records what ran, was skipped or
// degraded.
type Result struct {
	AnalysisID string
	PropertyID string

	Verdict     Verdict
	Confidence  float64
	Suitability Suitability
	Predictions Predictions

	Valuation   *valuation.Result
	Beneficiary *score.Result

	RiskFactors   []RiskFactor
	Opportunities []Opportunity

	Recommendations []recommend.Recommendation

	ValuationExplanation   *explain.Explanation
	BeneficiaryExplanation *explain.Explanation
	Summary                Summary

	MarketInsight string

	Trace        Trace
	ModelVersion string
	GeneratedAt  time.Time
	ElapsedMS    int64
}
