package propdex

import (
	"context"
	"fmt"
	"time"

	domanl "github.com/kailas-cloud/propdex/internal/domain/analysis"
	"github.com/kailas-cloud/propdex/internal/domain/score"
)

// RiskTolerance shifts the buy/avoid thresholds of the verdict.
type RiskTolerance string

const (
	RiskLow    RiskTolerance = "low"
	RiskMedium RiskTolerance = "medium"
	RiskHigh   RiskTolerance = "high"
)

// Verdict is the investment call of an analysis.
type Verdict string

const (
	VerdictBuy   Verdict = "buy"
	VerdictHold  Verdict = "hold"
	VerdictAvoid Verdict = "avoid"
)

// Suitability holds the 0-100 sub-scores of the analyzed location.
type Suitability struct {
	Facility float64
	Safety   float64
	Market   float64
	Disaster float64
	Overall  float64
}

// Predictions holds the projected value change per horizon, in percent.
type Predictions struct {
	OneYear   float64
	ThreeYear float64
	FiveYear  float64
}

// RiskFactor is one identified risk with its severity and impact.
type RiskFactor struct {
	Factor      string
	Severity    string
	Description string
	ImpactScore float64
}

// Opportunity is one identified upside with its expected impact.
type Opportunity struct {
	Opportunity     string
	PotentialImpact string
	Description     string
	Confidence      float64
}

// Summary is the human-readable digest of the explanations.
type Summary struct {
	ValueDrivers       string
	BeneficiaryDrivers string
	InvestmentOutlook  string
}

// StageNote records how one pipeline stage finished.
type StageNote struct {
	Stage  string
	Status string
	Note   string
}

// Analysis is the assembled output of one comprehensive run. Skipped stages
// leave their pointers nil; Stages records what ran, was skipped or
// degraded.
type Analysis struct {
	AnalysisID string
	PropertyID string

	Verdict     Verdict
	Confidence  float64
	Suitability Suitability
	Predictions Predictions

	Valuation   *Valuation
	Beneficiary *Score

	RiskFactors   []RiskFactor
	Opportunities []Opportunity

	Recommendations []Recommendation

	ValuationExplanation   *Explanation
	BeneficiaryExplanation *Explanation
	Summary                Summary

	Stages       []StageNote
	ModelVersion string
	GeneratedAt  time.Time
	ElapsedMS    int64
}

// AnalysisService runs the full analysis pipeline over one property.
type AnalysisService struct {
	svc      analysisUseCase
	defaults score.Weights
	obs      *observer
}

// Run analyzes a property end to end: valuation, beneficiary score,
// suitability, verdict, similar properties and explanations. Stages can be
// skipped per run via options; the property does not have to be catalogued.
func (s *AnalysisService) Run(ctx context.Context, p Property, opts ...AnalysisOption) (_ Analysis, err error) {
	start := time.Now()
	defer func() { s.obs.observe("analysis.run", start, err) }()

	var cfg analysisConfig
	for _, o := range opts {
		o.applyAnalysis(&cfg)
	}

	rec, err := toInternalRecord(p)
	if err != nil {
		return Analysis{}, fmt.Errorf("analyze property: %w", err)
	}
	flags := domanl.Flags{
		Valuation:       !cfg.skipValuation,
		Score:           !cfg.skipScore,
		Recommendations: !cfg.skipRecommendations,
		Explanations:    !cfg.skipExplanations,
	}
	req, err := domanl.NewRequest(
		rec, domanl.RiskTolerance(cfg.tolerance), s.defaults, cfg.weights,
		flags, cfg.maxRecommendations, cfg.radiusKM,
	)
	if err != nil {
		return Analysis{}, fmt.Errorf("analyze property: %w", err)
	}
	res, err := s.svc.Analyze(ctx, req)
	if err != nil {
		return Analysis{}, fmt.Errorf("analyze property: %w", err)
	}
	return fromInternalAnalysis(res), nil
}

func fromInternalAnalysis(res domanl.Result) Analysis {
	a := Analysis{
		AnalysisID: res.AnalysisID,
		PropertyID: res.PropertyID,
		Verdict:    Verdict(res.Verdict),
		Confidence: res.Confidence,
		Suitability: Suitability{
			Facility: res.Suitability.Facility,
			Safety:   res.Suitability.Safety,
			Market:   res.Suitability.Market,
			Disaster: res.Suitability.Disaster,
			Overall:  res.Suitability.Overall,
		},
		Predictions: Predictions{
			OneYear:   res.Predictions.OneYear,
			ThreeYear: res.Predictions.ThreeYear,
			FiveYear:  res.Predictions.FiveYear,
		},
		Recommendations: fromInternalRecommendations(res.Recommendations),
		Summary: Summary{
			ValueDrivers:       res.Summary.ValueDrivers,
			BeneficiaryDrivers: res.Summary.BeneficiaryDrivers,
			InvestmentOutlook:  res.Summary.InvestmentOutlook,
		},
		ModelVersion: res.ModelVersion,
		GeneratedAt:  res.GeneratedAt,
		ElapsedMS:    res.ElapsedMS,
	}
	if res.Valuation != nil {
		v := fromInternalValuation(*res.Valuation)
		a.Valuation = &v
	}
	if res.Beneficiary != nil {
		sc := fromInternalScore(*res.Beneficiary, res.ModelVersion)
		a.Beneficiary = &sc
	}
	for _, r := range res.RiskFactors {
		a.RiskFactors = append(a.RiskFactors, RiskFactor{
			Factor:      r.Factor,
			Severity:    r.Severity,
			Description: r.Description,
			ImpactScore: r.ImpactScore,
		})
	}
	for _, o := range res.Opportunities {
		a.Opportunities = append(a.Opportunities, Opportunity{
			Opportunity:     o.Opportunity,
			PotentialImpact: o.PotentialImpact,
			Description:     o.Description,
			Confidence:      o.Confidence,
		})
	}
	if res.ValuationExplanation != nil {
		e := fromInternalExplanation(*res.ValuationExplanation)
		a.ValuationExplanation = &e
	}
	if res.BeneficiaryExplanation != nil {
		e := fromInternalExplanation(*res.BeneficiaryExplanation)
		a.BeneficiaryExplanation = &e
	}
	for _, ev := range res.Trace {
		a.Stages = append(a.Stages, StageNote{
			Stage:  string(ev.Stage),
			Status: string(ev.Status),
			Note:   ev.Note,
		})
	}
	return a
}
