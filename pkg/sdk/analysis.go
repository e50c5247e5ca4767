package sdk

import (
	"context"
	"fmt"
	"net/http"
)

// AnalysisService runs the combined analysis pipeline.
type AnalysisService struct {
	client *Client
}

// AnalysisRequest drives one pipeline run. Zero values keep the server
// defaults. The Include flags are tri-state: nil selects the default
// stage set (market insight off, everything else on).
type AnalysisRequest struct {
	Property      Property           `json:"property"`
	UserID        string             `json:"user_id,omitempty"`
	RiskTolerance string             `json:"risk_tolerance,omitempty"`
	CustomWeights map[string]float64 `json:"custom_weights,omitempty"`

	IncludeValuation        *bool `json:"include_valuation,omitempty"`
	IncludeBeneficiaryScore *bool `json:"include_beneficiary_score,omitempty"`
	IncludeRecommendations  *bool `json:"include_recommendations,omitempty"`
	IncludeExplanations     *bool `json:"include_explanations,omitempty"`
	IncludeMarketInsight    *bool `json:"include_market_insight,omitempty"`

	MaxRecommendations int     `json:"max_recommendations,omitempty"`
	RadiusKM           float64 `json:"recommendation_radius_km,omitempty"`
}

// Run executes the pipeline for one property. When UserID is set the
// server also records a comprehensive_analysis interaction for it.
func (s *AnalysisService) Run(ctx context.Context, req AnalysisRequest) (Analysis, error) {
	var out Analysis
	if _, err := s.client.do(ctx, http.MethodPost,
		"/v1/comprehensive-analysis", req, &out); err != nil {
		return Analysis{}, fmt.Errorf("run analysis: %w", err)
	}
	return out, nil
}
