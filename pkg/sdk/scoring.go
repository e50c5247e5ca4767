package sdk

import (
	"context"
	"fmt"
	"net/http"
)

// ScoringService computes beneficiary suitability scores.
type ScoringService struct {
	client *Client
}

type scoreRequest struct {
	Property      Property           `json:"property"`
	CustomWeights map[string]float64 `json:"custom_weights,omitempty"`
}

// Score computes the beneficiary score for a property. Weights overlay
// the server defaults per component on the 0-10 scale; pass nil to keep
// them all.
func (s *ScoringService) Score(ctx context.Context, p Property, weights map[string]float64) (Score, error) {
	var out Score
	if _, err := s.client.do(ctx, http.MethodPost, "/v1/beneficiary-score",
		scoreRequest{Property: p, CustomWeights: weights}, &out); err != nil {
		return Score{}, fmt.Errorf("score property: %w", err)
	}
	return out, nil
}
