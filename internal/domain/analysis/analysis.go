// Package analysis models the composite analysis request and result: the
// orchestrated combination of valuation, scoring, recommendations and
// explanations plus the deterministic market narratives derived from them.
package analysis

import (
	"fmt"

	"github.com/kailas-cloud/propdex/internal/domain"
	"github.com/kailas-cloud/propdex/internal/domain/property"
	"github.com/kailas-cloud/propdex/internal/domain/recommend"
	"github.com/kailas-cloud/propdex/internal/domain/score"
)

// RiskTolerance shifts the verdict thresholds.
type RiskTolerance string

const (
	// RiskLow demands stronger scores before a buy verdict.
	RiskLow RiskTolerance = "low"
	// RiskMedium is the default tolerance.
	RiskMedium RiskTolerance = "medium"
	// RiskHigh accepts weaker scores.
	RiskHigh RiskTolerance = "high"
)

// IsValid checks if the tolerance is supported.
func (r RiskTolerance) IsValid() bool {
	return r == RiskLow || r == RiskMedium || r == RiskHigh
}

// Thresholds returns the buy and avoid cut-offs for the combined score.
func (r RiskTolerance) Thresholds() (buy, avoid float64) {
	switch r {
	case RiskLow:
		return 75, 50
	case RiskHigh:
		return 60, 35
	default:
		return 70, 45
	}
}

// Flags gate the optional pipeline stages.
type Flags struct {
	Valuation       bool
	Score           bool
	Recommendations bool
	Explanations    bool
	MarketInsight   bool
}

// DefaultFlags enables every stage except the externally generated market
// insight narrative.
func DefaultFlags() Flags {
	return Flags{Valuation: true, Score: true, Recommendations: true, Explanations: true}
}

// Request is a validated comprehensive-analysis request.
type Request struct {
	record             property.Record
	tolerance          RiskTolerance
	weights            score.Weights
	flags              Flags
	maxRecommendations int
	radiusKM           float64
}

// NewRequest validates and creates a Request. Custom weights overlay the base
// weight vector; a zero base falls back to the documented defaults. Defaults:
// tolerance=medium, maxRecommendations=10, radius=10km.
func NewRequest(
	record property.Record,
	tolerance RiskTolerance,
	base score.Weights,
	customWeights map[string]float64,
	flags Flags,
	maxRecommendations int,
	radiusKM float64,
) (Request, error) {
	if tolerance == "" {
		tolerance = RiskMedium
	}
	if !tolerance.IsValid() {
		return Request{}, domain.NewValidation("risk_tolerance", fmt.Sprintf("unknown tolerance %q", tolerance))
	}
	if base.Total() == 0 {
		base = score.DefaultWeights()
	}
	weights, err := base.Overlay(customWeights)
	if err != nil {
		return Request{}, err
	}
	if maxRecommendations <= 0 {
		maxRecommendations = recommend.DefaultMaxResults
	}
	if maxRecommendations > recommend.MaxResults {
		maxRecommendations = recommend.MaxResults
	}
	if radiusKM < 0 {
		return Request{}, domain.NewValidation("recommendation_radius_km", "must be non-negative")
	}
	if radiusKM == 0 {
		radiusKM = recommend.DefaultRadiusKM
	}
	if radiusKM > recommend.MaxRadiusKM {
		radiusKM = recommend.MaxRadiusKM
	}
	return Request{
		record:             record,
		tolerance:          tolerance,
		weights:            weights,
		flags:              flags,
		maxRecommendations: maxRecommendations,
		radiusKM:           radiusKM,
	}, nil
}

// Record returns the property under analysis.
func (r Request) Record() property.Record { return r.record }

// Tolerance returns the risk tolerance.
func (r Request) Tolerance() RiskTolerance { return r.tolerance }

// Weights returns the resolved scoring weights.
func (r Request) Weights() score.Weights { return r.weights }

// Flags returns the stage gates.
func (r Request) Flags() Flags { return r.flags }

// MaxRecommendations returns the recommendation cap.
func (r Request) MaxRecommendations() int { return r.maxRecommendations }

// RadiusKM returns the recommendation radius for location fallback.
func (r Request) RadiusKM() float64 { return r.radiusKM }
