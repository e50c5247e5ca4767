package valuation

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/propdex/internal/domain"
)

// Result is a market value prediction with its uncertainty band (immutable
// value object). One result belongs to exactly one (property, model version)
// pair.
type Result struct {
	propertyID   string
	value        float64
	uncertainty  float64
	pricePerSqft float64
	confidence   float64
	modelVersion string
	valuedAt     int64
}

// New validates the model output invariants and creates a Result.
// Violations are computation errors: the inputs were already validated, so a
// bad band or confidence means the pipeline itself misbehaved.
func New(propertyID string, value, uncertainty, pricePerSqft, confidence float64, modelVersion string) (Result, error) {
	if value < 0 {
		return Result{}, domain.NewComputation("valuation", fmt.Sprintf("produced negative value %f", value))
	}
	if uncertainty < 0 {
		return Result{}, domain.NewComputation("valuation", fmt.Sprintf("produced negative uncertainty %f", uncertainty))
	}
	if confidence < 0 || confidence > 1 {
		return Result{}, domain.NewComputation("valuation", fmt.Sprintf("confidence %f outside [0,1]", confidence))
	}
	if modelVersion == "" {
		return Result{}, domain.NewComputation("valuation", "missing model version")
	}
	return Result{
		propertyID:   propertyID,
		value:        value,
		uncertainty:  uncertainty,
		pricePerSqft: pricePerSqft,
		confidence:   confidence,
		modelVersion: modelVersion,
		valuedAt:     time.Now().UnixMilli(),
	}, nil
}

// Reconstruct creates a Result without validation (storage hydration).
func Reconstruct(propertyID string, value, uncertainty, pricePerSqft, confidence float64, modelVersion string, valuedAt int64) Result {
	return Result{
		propertyID:   propertyID,
		value:        value,
		uncertainty:  uncertainty,
		pricePerSqft: pricePerSqft,
		confidence:   confidence,
		modelVersion: modelVersion,
		valuedAt:     valuedAt,
	}
}

// PropertyID returns the valued property's identifier.
func (r Result) PropertyID() string { return r.propertyID }

// Value returns the predicted market value in dollars.
func (r Result) Value() float64 { return r.value }

// Uncertainty returns the symmetric uncertainty band width in dollars.
func (r Result) Uncertainty() float64 { return r.uncertainty }

// PricePerSqft returns predicted value divided by living area.
func (r Result) PricePerSqft() float64 { return r.pricePerSqft }

// Confidence returns the [0,1] trust measure for this prediction.
func (r Result) Confidence() float64 { return r.confidence }

// ModelVersion identifies the artifact that produced the prediction.
func (r Result) ModelVersion() string { return r.modelVersion }

// ValuedAt returns the prediction timestamp in unix milliseconds.
func (r Result) ValuedAt() int64 { return r.valuedAt }

// Band returns the low and high ends of the uncertainty band; the low end is
// floored at zero.
func (r Result) Band() (low, high float64) {
	low = r.value - r.uncertainty
	if low < 0 {
		low = 0
	}
	return low, r.value + r.uncertainty
}
