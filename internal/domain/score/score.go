// Package score computes the beneficiary (investment attractiveness) score:
// five independent component scores on a 0-100 scale combined by a
// weight-normalized sum.
package score

import (
	"fmt"

	"github.com/kailas-cloud/propdex/internal/domain"
	"github.com/kailas-cloud/propdex/internal/domain/feature"
)

// Component names in presentation order.
const (
	ComponentValue         = "value"
	ComponentSchool        = "school"
	ComponentSafety        = "safety"
	ComponentEnvironment   = "environment"
	ComponentAccessibility = "accessibility"
)

var componentOrder = [5]string{
	ComponentValue, ComponentSchool, ComponentSafety, ComponentEnvironment, ComponentAccessibility,
}

// Components returns the component names in presentation order.
func Components() []string {
	out := make([]string, len(componentOrder))
	copy(out, componentOrder[:])
	return out
}

// NeutralComponent is the component score used when the underlying input is
// missing; the fallback is recorded and surfaced in explanations.
const NeutralComponent = 50.0

// Weights is the validated, positive weight vector combining the components.
type Weights struct {
	value         float64
	school        float64
	safety        float64
	environment   float64
	accessibility float64
}

// DefaultWeights returns the documented default weighting.
func DefaultWeights() Weights {
	return Weights{value: 8, school: 8, safety: 6, environment: 5, accessibility: 7}
}

// NewWeights validates and creates a weight vector. Negative weights are
// rejected; at least one weight must be positive (an all-zero vector has no
// defined normalization).
func NewWeights(value, school, safety, environment, accessibility float64) (Weights, error) {
	w := Weights{
		value:         value,
		school:        school,
		safety:        safety,
		environment:   environment,
		accessibility: accessibility,
	}
	for _, c := range componentOrder {
		if w.Get(c) < 0 {
			return Weights{}, domain.NewValidation("weights."+c, "must be non-negative")
		}
	}
	if w.Total() == 0 {
		return Weights{}, domain.NewValidation("weights", "at least one weight must be positive")
	}
	return w, nil
}

// NewWeightsFromMap overlays the supplied component weights onto the defaults
// and validates the result. Unknown component names are rejected.
func NewWeightsFromMap(custom map[string]float64) (Weights, error) {
	return DefaultWeights().Overlay(custom)
}

// Overlay replaces the named component weights and validates the result.
// Unknown component names are rejected.
func (w Weights) Overlay(custom map[string]float64) (Weights, error) {
	for name, val := range custom {
		switch name {
		case ComponentValue:
			w.value = val
		case ComponentSchool:
			w.school = val
		case ComponentSafety:
			w.safety = val
		case ComponentEnvironment:
			w.environment = val
		case ComponentAccessibility:
			w.accessibility = val
		default:
			return Weights{}, domain.NewValidation("weights", fmt.Sprintf("unknown component %q", name))
		}
	}
	for _, c := range componentOrder {
		if w.Get(c) < 0 {
			return Weights{}, domain.NewValidation("weights."+c, "must be non-negative")
		}
	}
	if w.Total() == 0 {
		return Weights{}, domain.NewValidation("weights", "at least one weight must be positive")
	}
	return w, nil
}

// Get returns the weight for a component name (0 for unknown names).
func (w Weights) Get(component string) float64 {
	switch component {
	case ComponentValue:
		return w.value
	case ComponentSchool:
		return w.school
	case ComponentSafety:
		return w.safety
	case ComponentEnvironment:
		return w.environment
	case ComponentAccessibility:
		return w.accessibility
	}
	return 0
}

// Total returns the weight sum (the normalization denominator).
func (w Weights) Total() float64 {
	return w.value + w.school + w.safety + w.environment + w.accessibility
}

// Map returns the weights keyed by component name.
func (w Weights) Map() map[string]float64 {
	out := make(map[string]float64, len(componentOrder))
	for _, c := range componentOrder {
		out[c] = w.Get(c)
	}
	return out
}

// Result is the scoring outcome: the overall score, the five components, the
// weights used, and the components that fell back to the neutral default.
type Result struct {
	overall    float64
	components map[string]float64
	weights    Weights
	defaulted  map[string]bool
}

// Overall returns the combined score in [0,100].
func (r Result) Overall() float64 { return r.overall }

// Component returns a named component score.
func (r Result) Component(name string) float64 { return r.components[name] }

// ComponentMap returns a copy of the component scores.
func (r Result) ComponentMap() map[string]float64 {
	out := make(map[string]float64, len(r.components))
	for k, v := range r.components {
		out[k] = v
	}
	return out
}

// Weights returns the weight vector the result was combined with.
func (r Result) Weights() Weights { return r.weights }

// WasDefaulted reports whether the component used the neutral fallback.
func (r Result) WasDefaulted(component string) bool { return r.defaulted[component] }

// DefaultedComponents returns the fallback components in presentation order.
func (r Result) DefaultedComponents() []string {
	out := make([]string, 0, len(r.defaulted))
	for _, c := range componentOrder {
		if r.defaulted[c] {
			out = append(out, c)
		}
	}
	return out
}

// componentSources maps each component to the named feature it scores.
var componentSources = map[string]string{
	ComponentValue:         feature.Value,
	ComponentSchool:        feature.School,
	ComponentSafety:        feature.CrimeInv,
	ComponentEnvironment:   feature.FloodInv,
	ComponentAccessibility: feature.EmployerAccess,
}

// Compute derives the component scores from the feature vector and combines
// them: overall = sum(component_i * weight_i) / sum(weights). A component
// whose source feature was imputed scores the neutral default and is recorded
// as defaulted.
func Compute(v feature.Vector, w Weights) (Result, error) {
	if w.Total() <= 0 {
		return Result{}, domain.NewValidation("weights", "at least one weight must be positive")
	}

	components := make(map[string]float64, len(componentOrder))
	defaulted := make(map[string]bool)

	for _, c := range componentOrder {
		source := componentSources[c]
		if v.Imputed(source) {
			components[c] = NeutralComponent
			defaulted[c] = true
			continue
		}
		norm, ok := v.Value(source)
		if !ok {
			components[c] = NeutralComponent
			defaulted[c] = true
			continue
		}
		components[c] = norm * 100
	}

	var weighted float64
	for _, c := range componentOrder {
		weighted += components[c] * w.Get(c)
	}

	return Result{
		overall:    weighted / w.Total(),
		components: components,
		weights:    w,
		defaulted:  defaulted,
	}, nil
}
