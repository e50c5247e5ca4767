package propdex

import (
	"context"
	"fmt"
	"time"
)

// ScoringService computes beneficiary scores.
type ScoringService struct {
	scorer    scoringUseCase
	explainer explainUseCase
	obs       *observer
}

// Score computes the weighted beneficiary score of a property. weights
// overlay the client defaults per component; nil keeps them.
func (s *ScoringService) Score(ctx context.Context, p Property, weights map[string]float64) (_ Score, err error) {
	start := time.Now()
	defer func() { s.obs.observe("scoring.score", start, err) }()

	rec, err := toInternalRecord(p)
	if err != nil {
		return Score{}, fmt.Errorf("score property: %w", err)
	}
	res, _, err := s.scorer.Score(ctx, rec, weights)
	if err != nil {
		return Score{}, fmt.Errorf("score property: %w", err)
	}
	return fromInternalScore(res, s.scorer.ModelVersion()), nil
}

// Explain scores a property and decomposes the overall score into weighted
// component contributions.
func (s *ScoringService) Explain(ctx context.Context, p Property, weights map[string]float64) (_ Explanation, err error) {
	start := time.Now()
	defer func() { s.obs.observe("scoring.explain", start, err) }()

	rec, err := toInternalRecord(p)
	if err != nil {
		return Explanation{}, fmt.Errorf("explain score: %w", err)
	}
	res, _, err := s.scorer.Score(ctx, rec, weights)
	if err != nil {
		return Explanation{}, fmt.Errorf("explain score: %w", err)
	}
	exp, err := s.explainer.ExplainScore(res)
	if err != nil {
		return Explanation{}, fmt.Errorf("explain score: %w", err)
	}
	return fromInternalExplanation(exp), nil
}
