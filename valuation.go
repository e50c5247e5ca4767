package propdex

import (
	"context"
	"fmt"
	"time"
)

// ValuationService prices properties and explains the predictions.
type ValuationService struct {
	valuer    valuationUseCase
	explainer explainUseCase
	obs       *observer
}

// Value prices a property and persists the valuation snapshot. The property
// does not have to be catalogued.
func (s *ValuationService) Value(ctx context.Context, p Property) (_ Valuation, err error) {
	start := time.Now()
	defer func() { s.obs.observe("valuation.value", start, err) }()

	rec, err := toInternalRecord(p)
	if err != nil {
		return Valuation{}, fmt.Errorf("value property: %w", err)
	}
	res, _, err := s.valuer.Value(ctx, rec)
	if err != nil {
		return Valuation{}, fmt.Errorf("value property: %w", err)
	}
	return fromInternalValuation(res), nil
}

// Explain prices a property and decomposes the prediction into per-feature
// contributions.
func (s *ValuationService) Explain(ctx context.Context, p Property) (_ Explanation, err error) {
	start := time.Now()
	defer func() { s.obs.observe("valuation.explain", start, err) }()

	rec, err := toInternalRecord(p)
	if err != nil {
		return Explanation{}, fmt.Errorf("explain valuation: %w", err)
	}
	res, vec, err := s.valuer.Value(ctx, rec)
	if err != nil {
		return Explanation{}, fmt.Errorf("explain valuation: %w", err)
	}
	exp, err := s.explainer.ExplainValuationVector(ctx, vec, res)
	if err != nil {
		return Explanation{}, fmt.Errorf("explain valuation: %w", err)
	}
	return fromInternalExplanation(exp), nil
}

// StoredExplanation explains the persisted valuation of a catalogued
// property without re-pricing it. It fails with ErrNotFound when no
// snapshot exists for the active model version.
func (s *ValuationService) StoredExplanation(ctx context.Context, propertyID string) (_ Explanation, err error) {
	start := time.Now()
	defer func() { s.obs.observe("valuation.explain_stored", start, err) }()

	exp, err := s.explainer.ExplainStored(ctx, propertyID)
	if err != nil {
		return Explanation{}, fmt.Errorf("explain stored valuation: %w", err)
	}
	return fromInternalExplanation(exp), nil
}
