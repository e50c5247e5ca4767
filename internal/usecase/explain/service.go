// Package explain decomposes valuations and beneficiary scores into additive
// per-feature attributions that reconcile with the explained output.
package explain

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/propdex/internal/domain"
	domexp "github.com/kailas-cloud/propdex/internal/domain/explain"
	"github.com/kailas-cloud/propdex/internal/domain/feature"
	"github.com/kailas-cloud/propdex/internal/domain/property"
	"github.com/kailas-cloud/propdex/internal/domain/score"
	domval "github.com/kailas-cloud/propdex/internal/domain/valuation"
	"github.com/kailas-cloud/propdex/internal/model"
)

// Service produces explanations for valuations and beneficiary scores.
type Service struct {
	builder    *feature.Builder
	models     Models
	valuations Valuations
}

// New creates an explanation service. valuations may be nil when the stored
// snapshot path is not served.
func New(builder *feature.Builder, models Models, valuations Valuations) *Service {
	return &Service{builder: builder, models: models, valuations: valuations}
}

// ExplainValuation rebuilds the record's feature vector and decomposes the
// valuation into exact Shapley attributions.
func (s *Service) ExplainValuation(ctx context.Context, rec property.Record, res domval.Result) (domexp.Explanation, error) {
	vec, err := s.builder.Build(rec)
	if err != nil {
		return domexp.Explanation{}, fmt.Errorf("build features: %w", err)
	}
	return s.ExplainValuationVector(ctx, vec, res)
}

// ExplainValuationVector decomposes a valuation over an already built vector.
// The artifact of the result's own model version is used, so the attribution
// sum closes against the reported value even after a model rotation.
func (s *Service) ExplainValuationVector(_ context.Context, vec feature.Vector, res domval.Result) (domexp.Explanation, error) {
	artifact, err := s.models.Get(res.ModelVersion())
	if err != nil {
		return domexp.Explanation{}, err
	}

	base, phi, err := model.ExactShapley(artifact, vec.Values(), s.builder.Params().Baseline())
	if err != nil {
		return domexp.Explanation{}, err
	}

	names := feature.Names()
	values := vec.Values()
	attrs := make([]domexp.Attribution, len(phi))
	for i, v := range phi {
		attrs[i] = domexp.Attribution{
			Feature:      names[i],
			Value:        v,
			FeatureValue: values[i],
			Description:  domexp.DescribeValueImpact(names[i], v, values[i]),
		}
	}

	return domexp.New(domexp.KindValuation, base, res.Value(), attrs, res.ModelVersion())
}

// ExplainStored serves the read-side path: it loads the active model's
// persisted valuation snapshot for the property, rebuilds the deterministic
// feature vector, and explains against that same version.
func (s *Service) ExplainStored(ctx context.Context, propertyID string) (domexp.Explanation, error) {
	version := s.models.ActiveVersion()
	if version == "" {
		return domexp.Explanation{}, domain.NewModelUnavailable("")
	}

	res, rec, err := s.valuations.Get(ctx, propertyID, version)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domexp.Explanation{}, domain.NewDataUnavailable(
				fmt.Sprintf("valuation snapshot for property %s; run a valuation first", propertyID))
		}
		return domexp.Explanation{}, fmt.Errorf("load valuation snapshot: %w", err)
	}

	return s.ExplainValuation(ctx, rec, res)
}

// ExplainScore decomposes a beneficiary score. The weighted mean is linear,
// so each component's contribution is exact: w*(c-neutral)/total.
func (s *Service) ExplainScore(res score.Result) (domexp.Explanation, error) {
	weights := res.Weights()
	total := weights.Total()
	if total <= 0 {
		return domexp.Explanation{}, domain.NewComputation("score explanation", "weight total must be positive")
	}

	components := score.Components()
	attrs := make([]domexp.Attribution, len(components))
	for i, name := range components {
		c := res.Component(name)
		attrs[i] = domexp.Attribution{
			Feature:      name,
			Value:        weights.Get(name) * (c - score.NeutralComponent) / total,
			FeatureValue: c,
			Description:  domexp.DescribeComponent(name, c, res.WasDefaulted(name)),
		}
	}

	return domexp.New(domexp.KindBeneficiary, score.NeutralComponent, res.Overall(), attrs, s.builder.Params().Version())
}
