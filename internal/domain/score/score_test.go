package score

import (
	"errors"
	"math"
	"testing"

	"github.com/kailas-cloud/propdex/internal/domain"
	"github.com/kailas-cloud/propdex/internal/domain/feature"
	"github.com/kailas-cloud/propdex/internal/domain/location"
	"github.com/kailas-cloud/propdex/internal/domain/property"
)

func f64(v float64) *float64 { return &v }

func buildVector(t *testing.T, attrs location.Attributes) feature.Vector {
	t.Helper()
	loc, err := location.New(40.7, -74.0, "", "", "", attrs)
	if err != nil {
		t.Fatalf("location: %v", err)
	}
	year := 2000
	rec, err := property.New("prop-1", property.TypeResidential, 3, 2, 1500, &year, f64(0.25), loc)
	if err != nil {
		t.Fatalf("property: %v", err)
	}
	v, err := feature.NewBuilder(feature.DefaultParams()).Build(rec)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return v
}

func fullAttrs() location.Attributes {
	transit := 6
	return location.Attributes{
		SchoolRating: f64(8.5),
		CrimeRate:    f64(15),
		FloodRisk:    f64(0.2),
		Transit3KM:   &transit,
		PricePerSqft: f64(150),
	}
}

func TestCompute_WeightedSumFormula(t *testing.T) {
	v := buildVector(t, fullAttrs())
	w := DefaultWeights()

	r, err := Compute(v, w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// overall must equal sum(c_i * w_i) / sum(w) exactly.
	var want float64
	for _, c := range Components() {
		want += r.Component(c) * w.Get(c)
	}
	want /= w.Total()
	if r.Overall() != want {
		t.Fatalf("overall %v != formula %v", r.Overall(), want)
	}
	if r.Overall() < 0 || r.Overall() > 100 {
		t.Fatalf("overall out of range: %v", r.Overall())
	}
}

func TestCompute_ComponentValues(t *testing.T) {
	v := buildVector(t, fullAttrs())
	r, err := Compute(v, DefaultWeights())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checks := map[string]float64{
		ComponentValue:         75, // 150/200 * 100
		ComponentSchool:        85,
		ComponentSafety:        70, // (1 - 15/50) * 100
		ComponentEnvironment:   80,
		ComponentAccessibility: 60, // 6/10 * 100
	}
	for name, want := range checks {
		if got := r.Component(name); math.Abs(got-want) > 1e-9 {
			t.Errorf("%s: want %v, got %v", name, want, got)
		}
		if r.WasDefaulted(name) {
			t.Errorf("%s must not be defaulted", name)
		}
	}
}

func TestCompute_MissingInputsFallBackToNeutral(t *testing.T) {
	v := buildVector(t, location.Attributes{})
	r, err := Compute(v, DefaultWeights())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, c := range Components() {
		if got := r.Component(c); got != NeutralComponent {
			t.Errorf("%s: want neutral %v, got %v", c, NeutralComponent, got)
		}
		if !r.WasDefaulted(c) {
			t.Errorf("%s must be recorded as defaulted", c)
		}
	}
	if r.Overall() != NeutralComponent {
		t.Errorf("all-neutral overall must be %v, got %v", NeutralComponent, r.Overall())
	}
	if len(r.DefaultedComponents()) != 5 {
		t.Errorf("want 5 defaulted components, got %v", r.DefaultedComponents())
	}
}

func TestCompute_AllZeroWeights(t *testing.T) {
	v := buildVector(t, fullAttrs())
	_, err := Compute(v, Weights{})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
}

func TestNewWeights_AllZero(t *testing.T) {
	_, err := NewWeights(0, 0, 0, 0, 0)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
}

func TestNewWeights_Negative(t *testing.T) {
	_, err := NewWeights(8, -1, 6, 5, 7)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("want *ValidationError, got %v", err)
	}
	if ve.Field != "weights.school" {
		t.Fatalf("want field weights.school, got %q", ve.Field)
	}
}

func TestNewWeightsFromMap_Overlay(t *testing.T) {
	w, err := NewWeightsFromMap(map[string]float64{ComponentSafety: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Get(ComponentSafety) != 10 {
		t.Fatalf("safety: want 10, got %v", w.Get(ComponentSafety))
	}
	// Untouched components keep their defaults.
	if w.Get(ComponentValue) != 8 || w.Get(ComponentAccessibility) != 7 {
		t.Fatalf("defaults not preserved: %v", w.Map())
	}
}

func TestOverlay_NonDefaultBase(t *testing.T) {
	base, err := NewWeights(10, 1, 1, 1, 1)
	if err != nil {
		t.Fatalf("base: %v", err)
	}
	w, err := base.Overlay(map[string]float64{ComponentSchool: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Get(ComponentValue) != 10 || w.Get(ComponentSchool) != 4 {
		t.Fatalf("overlay result: %v", w.Map())
	}
}

func TestNewWeightsFromMap_UnknownComponent(t *testing.T) {
	_, err := NewWeightsFromMap(map[string]float64{"prestige": 3})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
}

func TestNewWeightsFromMap_ZeroOverlay(t *testing.T) {
	zero := map[string]float64{
		ComponentValue: 0, ComponentSchool: 0, ComponentSafety: 0,
		ComponentEnvironment: 0, ComponentAccessibility: 0,
	}
	if _, err := NewWeightsFromMap(zero); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("want ErrValidation for all-zero overlay, got %v", err)
	}
}

func TestCompute_CustomWeightsShiftOverall(t *testing.T) {
	v := buildVector(t, fullAttrs())

	base, err := Compute(v, DefaultWeights())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Putting all weight on the strongest component must raise the overall.
	schoolOnly, err := NewWeights(0, 1, 0, 0, 0)
	if err != nil {
		t.Fatalf("weights: %v", err)
	}
	r, err := Compute(v, schoolOnly)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Overall() != 85 {
		t.Fatalf("school-only overall: want 85, got %v", r.Overall())
	}
	if r.Overall() <= base.Overall() {
		t.Fatalf("school-only overall %v must exceed default %v", r.Overall(), base.Overall())
	}
}
