// Package feature builds the fixed-order numeric vector the valuation and
// scoring models consume. Building is a pure function of the property record
// and the versioned normalization parameters: identical inputs always yield a
// bit-identical vector.
package feature

import (
	"github.com/kailas-cloud/propdex/internal/domain"
	"github.com/kailas-cloud/propdex/internal/domain/property"
)

// Feature names in model input order.
const (
	Beds           = "beds"
	Baths          = "baths"
	Sqft           = "sqft"
	Age            = "age"
	LotSize        = "lot_size"
	School         = "norm_school"
	CrimeInv       = "norm_crime_inv"
	FloodInv       = "norm_flood_inv"
	HospitalAccess = "norm_hospital_access"
	EmployerAccess = "norm_employer_access"
	AreaPrice      = "price_per_sqft_area_avg"

	// Value is a named feature used by the beneficiary scorer only; it is not
	// part of the model input vector.
	Value = "norm_value"
)

// Dim is the model input vector dimension.
const Dim = 11

var names = [Dim]string{
	Beds, Baths, Sqft, Age, LotSize,
	School, CrimeInv, FloodInv, HospitalAccess, EmployerAccess,
	AreaPrice,
}

// Names returns the feature names in model input order.
func Names() []string {
	out := make([]string, Dim)
	copy(out[:], names[:])
	return out
}

// Index returns the position of a feature in the input vector, or -1.
func Index(name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

// Params holds the versioned normalization constants and imputation defaults.
// Changing any value requires a new version string.
type Params struct {
	version string

	referenceYear    int
	defaultYearBuilt int
	defaultLotSize   float64
	defaultSchool    float64 // 0-10 scale
	defaultCrime     float64 // per 1,000 residents
	defaultFlood     float64 // probability
	defaultAreaPrice float64 // $/sqft

	schoolScale   float64 // divisor mapping rating to 0-1
	crimeScale    float64 // crime rate treated as saturated
	facilityScale float64 // facility count treated as saturated
	priceScale    float64 // $/sqft treated as saturated for norm_value

	baseline [Dim]float64
}

// DefaultParams returns the "2.0.0" parameter set.
func DefaultParams() Params {
	return Params{
		version:          "2.0.0",
		referenceYear:    2025,
		defaultYearBuilt: 2000,
		defaultLotSize:   0.25,
		defaultSchool:    5.0,
		defaultCrime:     25.0,
		defaultFlood:     0.1,
		defaultAreaPrice: 100.0,
		schoolScale:      10.0,
		crimeScale:       50.0,
		facilityScale:    10.0,
		priceScale:       200.0,
		// Documented reference property: a modest 3-bed with average
		// neighborhood data. Attributions measure distance from this point.
		baseline: [Dim]float64{3, 2, 1000, 25, 0.25, 0.5, 0.5, 0.9, 0.3, 0.3, 100},
	}
}

// Version returns the parameter set version.
func (p Params) Version() string { return p.version }

// ReferenceYear returns the fixed year ages are measured against.
func (p Params) ReferenceYear() int { return p.referenceYear }

// DefaultYearBuilt returns the imputation default for missing build years.
func (p Params) DefaultYearBuilt() int { return p.defaultYearBuilt }

// Baseline returns the reference-property feature vector used as the
// attribution baseline.
func (p Params) Baseline() []float64 {
	out := make([]float64, Dim)
	copy(out, p.baseline[:])
	return out
}

// Vector is the derived, ephemeral model input: ordered values, named raw
// values, and the set of features whose inputs were imputed with defaults.
type Vector struct {
	values       [Dim]float64
	raw          map[string]float64
	imputed      map[string]bool
	completeness float64
	quality      float64
	version      string
}

// Values returns a copy of the ordered input vector.
func (v Vector) Values() []float64 {
	out := make([]float64, Dim)
	copy(out, v.values[:])
	return out
}

// Value returns a named feature value; ok is false for unknown names.
func (v Vector) Value(name string) (float64, bool) {
	val, ok := v.raw[name]
	return val, ok
}

// Imputed reports whether the named feature was built from a default rather
// than supplied data.
func (v Vector) Imputed(name string) bool { return v.imputed[name] }

// ImputedCount returns how many features were imputed.
func (v Vector) ImputedCount() int { return len(v.imputed) }

// Completeness is the fraction of the six key raw inputs (beds, baths, sqft,
// school rating, crime rate, area price) that were supplied.
func (v Vector) Completeness() float64 { return v.completeness }

// DataQuality is the fraction of the three data families (market, facility,
// safety) with at least one supplied value.
func (v Vector) DataQuality() float64 { return v.quality }

// Version returns the parameter version the vector was built with.
func (v Vector) Version() string { return v.version }

// Builder builds feature vectors from property records using fixed Params.
type Builder struct {
	params Params
}

// NewBuilder creates a Builder over the given parameter set.
func NewBuilder(params Params) *Builder {
	return &Builder{params: params}
}

// Params returns the builder's parameter set.
func (b *Builder) Params() Params { return b.params }

// Build derives the feature vector for a property record. Optional inputs
// are imputed with the parameter defaults and recorded as imputed; required
// fields were already enforced by the record constructor.
func (b *Builder) Build(rec property.Record) (Vector, error) {
	if rec.Sqft() <= 0 {
		return Vector{}, domain.NewValidation("sqft", "must be positive")
	}

	p := b.params
	attrs := rec.Location().Attrs()
	raw := make(map[string]float64, Dim+1)
	imputed := make(map[string]bool)

	yearBuilt, ok := rec.YearBuilt()
	if !ok {
		yearBuilt = p.defaultYearBuilt
		imputed[Age] = true
	}
	age := float64(p.referenceYear - yearBuilt)
	if age < 0 {
		age = 0
	}

	lotSize, ok := rec.LotSize()
	if !ok {
		lotSize = p.defaultLotSize
		imputed[LotSize] = true
	}

	school := p.defaultSchool
	if attrs.SchoolRating != nil {
		school = *attrs.SchoolRating
	} else {
		imputed[School] = true
	}

	crime := p.defaultCrime
	if attrs.CrimeRate != nil {
		crime = *attrs.CrimeRate
	} else {
		imputed[CrimeInv] = true
	}

	flood := p.defaultFlood
	if attrs.FloodRisk != nil {
		flood = *attrs.FloodRisk
	} else {
		imputed[FloodInv] = true
	}

	hospitals := 0.0
	if attrs.Hospitals3KM != nil {
		hospitals = float64(*attrs.Hospitals3KM)
	} else {
		imputed[HospitalAccess] = true
	}

	transit := 0.0
	if attrs.Transit3KM != nil {
		transit = float64(*attrs.Transit3KM)
	} else {
		imputed[EmployerAccess] = true
	}

	areaPrice := p.defaultAreaPrice
	if attrs.PricePerSqft != nil {
		areaPrice = *attrs.PricePerSqft
	} else {
		imputed[AreaPrice] = true
		imputed[Value] = true
	}

	raw[Beds] = float64(rec.Beds())
	raw[Baths] = rec.Baths()
	raw[Sqft] = rec.Sqft()
	raw[Age] = age
	raw[LotSize] = lotSize
	raw[School] = clamp01(school / p.schoolScale)
	raw[CrimeInv] = clamp01(1 - crime/p.crimeScale)
	raw[FloodInv] = clamp01(1 - flood)
	raw[HospitalAccess] = clamp01(hospitals / p.facilityScale)
	raw[EmployerAccess] = clamp01(transit / p.facilityScale)
	raw[AreaPrice] = areaPrice
	raw[Value] = clamp01(areaPrice / p.priceScale)

	var values [Dim]float64
	for i, name := range names {
		values[i] = raw[name]
	}

	return Vector{
		values:       values,
		raw:          raw,
		imputed:      imputed,
		completeness: completeness(attrs.SchoolRating != nil, attrs.CrimeRate != nil, attrs.PricePerSqft != nil),
		quality:      quality(attrs.PricePerSqft != nil, attrs.HasFacilityData(), attrs.CrimeRate != nil),
		version:      p.version,
	}, nil
}

// completeness counts the six key inputs; beds, baths and sqft are always
// present on a valid record.
func completeness(hasSchool, hasCrime, hasPrice bool) float64 {
	present := 3
	for _, ok := range []bool{hasSchool, hasCrime, hasPrice} {
		if ok {
			present++
		}
	}
	return float64(present) / 6.0
}

func quality(hasMarket, hasFacility, hasSafety bool) float64 {
	present := 0
	for _, ok := range []bool{hasMarket, hasFacility, hasSafety} {
		if ok {
			present++
		}
	}
	return float64(present) / 3.0
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ImputedNames returns the imputed feature names in model input order
// (deterministic for serialization).
func (v Vector) ImputedNames() []string {
	out := make([]string, 0, len(v.imputed))
	for _, name := range names {
		if v.imputed[name] {
			out = append(out, name)
		}
	}
	if v.imputed[Value] {
		out = append(out, Value)
	}
	return out
}
