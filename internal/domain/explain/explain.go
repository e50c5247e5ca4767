// Package explain models additive feature-attribution explanations: a base
// value plus signed per-feature contributions that reconcile with the final
// predicted or scored value.
package explain

import (
	"fmt"
	"math"
	"sort"

	"github.com/kailas-cloud/propdex/internal/domain"
)

// Kind distinguishes what an explanation decomposes.
type Kind string

const (
	// KindValuation explains an AVM prediction.
	KindValuation Kind = "valuation"
	// KindBeneficiary explains a beneficiary score.
	KindBeneficiary Kind = "beneficiary"
)

// TopN is the presentation cap for each contributor list; contributions
// beyond it are folded into the residual.
const TopN = 5

// ReconcileTolerance is the relative tolerance for the additive decomposition
// check (exact decompositions only accumulate float error).
const ReconcileTolerance = 1e-6

// Attribution is one feature's signed contribution.
type Attribution struct {
	Feature      string  `json:"feature_name"`
	Value        float64 `json:"attribution_value"`
	FeatureValue float64 `json:"feature_value"`
	Description  string  `json:"impact_description"`
}

// Explanation is the ordered decomposition of one model output.
type Explanation struct {
	kind         Kind
	baseValue    float64
	finalValue   float64
	positive     []Attribution
	negative     []Attribution
	residual     float64
	modelVersion string
}

// New sorts the attributions by descending magnitude (feature name as the
// deterministic tiebreak), splits them into positive and negative lists
// capped at TopN, folds the remainder into the residual, and verifies that
// base + sum(attributions) reconciles with the final value.
func New(kind Kind, baseValue, finalValue float64, attributions []Attribution, modelVersion string) (Explanation, error) {
	sorted := make([]Attribution, len(attributions))
	copy(sorted, attributions)
	sort.SliceStable(sorted, func(i, j int) bool {
		ai, aj := math.Abs(sorted[i].Value), math.Abs(sorted[j].Value)
		if ai != aj {
			return ai > aj
		}
		return sorted[i].Feature < sorted[j].Feature
	})

	var sum float64
	for _, a := range sorted {
		sum += a.Value
	}
	if !reconciles(baseValue, sum, finalValue) {
		return Explanation{}, domain.NewComputation(string(kind), fmt.Sprintf(
			"attributions do not reconcile: base %f + sum %f != final %f", baseValue, sum, finalValue))
	}

	var positive, negative []Attribution
	var residual float64
	for _, a := range sorted {
		switch {
		case a.Value > 0 && len(positive) < TopN:
			positive = append(positive, a)
		case a.Value < 0 && len(negative) < TopN:
			negative = append(negative, a)
		default:
			residual += a.Value
		}
	}

	return Explanation{
		kind:         kind,
		baseValue:    baseValue,
		finalValue:   finalValue,
		positive:     positive,
		negative:     negative,
		residual:     residual,
		modelVersion: modelVersion,
	}, nil
}

func reconciles(base, sum, final float64) bool {
	diff := math.Abs(base + sum - final)
	scale := math.Max(1, math.Abs(final))
	return diff <= ReconcileTolerance*scale
}

// Kind returns what the explanation decomposes.
func (e Explanation) Kind() Kind { return e.kind }

// BaseValue returns the model output at the attribution baseline.
func (e Explanation) BaseValue() float64 { return e.baseValue }

// FinalValue returns the explained prediction or score.
func (e Explanation) FinalValue() float64 { return e.finalValue }

// Positive returns the top positive contributors, strongest first.
func (e Explanation) Positive() []Attribution {
	out := make([]Attribution, len(e.positive))
	copy(out, e.positive)
	return out
}

// Negative returns the top negative contributors, strongest first.
func (e Explanation) Negative() []Attribution {
	out := make([]Attribution, len(e.negative))
	copy(out, e.negative)
	return out
}

// Ranked returns the retained attributions of both signs ordered by
// descending magnitude.
func (e Explanation) Ranked() []Attribution {
	out := make([]Attribution, 0, len(e.positive)+len(e.negative))
	i, j := 0, 0
	for i < len(e.positive) && j < len(e.negative) {
		if math.Abs(e.positive[i].Value) >= math.Abs(e.negative[j].Value) {
			out = append(out, e.positive[i])
			i++
		} else {
			out = append(out, e.negative[j])
			j++
		}
	}
	out = append(out, e.positive[i:]...)
	out = append(out, e.negative[j:]...)
	return out
}

// Residual returns the folded contribution of features beyond the top lists.
func (e Explanation) Residual() float64 { return e.residual }

// ModelVersion identifies the artifact whose output is explained.
func (e Explanation) ModelVersion() string { return e.modelVersion }

// Reconciles re-verifies the additive decomposition within tol.
func (e Explanation) Reconciles(tol float64) bool {
	var sum float64
	for _, a := range e.positive {
		sum += a.Value
	}
	for _, a := range e.negative {
		sum += a.Value
	}
	sum += e.residual
	diff := math.Abs(e.baseValue + sum - e.finalValue)
	scale := math.Max(1, math.Abs(e.finalValue))
	return diff <= tol*scale
}
