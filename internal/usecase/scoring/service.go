// Package scoring computes beneficiary scores from property records.
package scoring

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/propdex/internal/domain/feature"
	"github.com/kailas-cloud/propdex/internal/domain/property"
	"github.com/kailas-cloud/propdex/internal/domain/score"
	"github.com/kailas-cloud/propdex/internal/metrics"
)

// Service computes beneficiary scores with configurable default weights.
type Service struct {
	builder  *feature.Builder
	defaults score.Weights
}

// New creates a scoring service. A zero-value defaults falls back to the
// documented default weighting.
func New(builder *feature.Builder, defaults score.Weights) *Service {
	if defaults.Total() == 0 {
		defaults = score.DefaultWeights()
	}
	return &Service{builder: builder, defaults: defaults}
}

// ResolveWeights overlays per-request custom weights onto the configured
// defaults. Invalid weights fail before any scoring arithmetic.
func (s *Service) ResolveWeights(custom map[string]float64) (score.Weights, error) {
	return s.defaults.Overlay(custom)
}

// ModelVersion returns the feature schema version scores are computed with.
func (s *Service) ModelVersion() string { return s.builder.Params().Version() }

// Score builds the feature vector and computes the beneficiary score with
// optional custom weights.
func (s *Service) Score(_ context.Context, rec property.Record, custom map[string]float64) (score.Result, feature.Vector, error) {
	weights, err := s.ResolveWeights(custom)
	if err != nil {
		return score.Result{}, feature.Vector{}, err
	}

	vec, err := s.builder.Build(rec)
	if err != nil {
		return score.Result{}, feature.Vector{}, fmt.Errorf("build features: %w", err)
	}

	res, err := s.ScoreVector(vec, weights)
	if err != nil {
		return score.Result{}, feature.Vector{}, err
	}
	return res, vec, nil
}

// ScoreVector computes from a pre-built feature vector and resolved weights;
// the analysis pipeline uses it to share one vector with valuation.
func (s *Service) ScoreVector(vec feature.Vector, weights score.Weights) (score.Result, error) {
	res, err := score.Compute(vec, weights)
	if err != nil {
		metrics.PredictionsTotal.WithLabelValues("score", "error").Inc()
		return score.Result{}, err
	}
	metrics.PredictionsTotal.WithLabelValues("score", "success").Inc()
	return res, nil
}
