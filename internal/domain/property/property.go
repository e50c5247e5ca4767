package property

import (
	"fmt"
	"regexp"

	"github.com/kailas-cloud/propdex/internal/domain"
	"github.com/kailas-cloud/propdex/internal/domain/location"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Type distinguishes property kinds.
type Type string

const (
	// TypeResidential is the default single-family residential type.
	TypeResidential Type = "residential"
	// TypeCondo is a condominium unit.
	TypeCondo Type = "condo"
	// TypeMultiFamily is a multi-unit residential building.
	TypeMultiFamily Type = "multi_family"
	// TypeCommercial is a commercial property.
	TypeCommercial Type = "commercial"
	// TypeLand is an undeveloped land parcel.
	TypeLand Type = "land"
)

// IsValid checks if the property type is supported.
func (t Type) IsValid() bool {
	switch t {
	case TypeResidential, TypeCondo, TypeMultiFamily, TypeCommercial, TypeLand:
		return true
	}
	return false
}

// Record is a property aggregate: physical characteristics plus exactly one
// location (immutable value object). Beds, baths and sqft are mandatory;
// year built and lot size are optional and imputed downstream.
type Record struct {
	id           string
	propertyType Type
	beds         int
	baths        float64
	sqft         float64
	yearBuilt    *int
	lotSize      *float64 // acres
	loc          location.Location
}

func validateID(id string) error {
	if id == "" {
		return domain.NewValidation("property_id", "is required")
	}
	if len(id) > 64 {
		return domain.NewValidation("property_id", "too long (max 64)")
	}
	if !idRegex.MatchString(id) {
		return domain.NewValidation("property_id", "must be alphanumeric with underscores and hyphens")
	}
	return nil
}

// New validates and creates a Record. An empty type defaults to residential.
func New(
	id string, propertyType Type, beds int, baths, sqft float64,
	yearBuilt *int, lotSize *float64, loc location.Location,
) (Record, error) {
	if err := validateID(id); err != nil {
		return Record{}, err
	}
	if propertyType == "" {
		propertyType = TypeResidential
	}
	if !propertyType.IsValid() {
		return Record{}, domain.NewValidation("property_type", fmt.Sprintf("unknown type %q", propertyType))
	}
	if beds <= 0 {
		return Record{}, domain.NewValidation("beds", "is required and must be positive")
	}
	if baths <= 0 {
		return Record{}, domain.NewValidation("baths", "is required and must be positive")
	}
	if sqft <= 0 {
		return Record{}, domain.NewValidation("sqft", "is required and must be positive")
	}
	if yearBuilt != nil && (*yearBuilt < 1600 || *yearBuilt > 2100) {
		return Record{}, domain.NewValidation("year_built", fmt.Sprintf("implausible value %d", *yearBuilt))
	}
	if lotSize != nil && *lotSize <= 0 {
		return Record{}, domain.NewValidation("lot_size", "must be positive when supplied")
	}

	return Record{
		id:           id,
		propertyType: propertyType,
		beds:         beds,
		baths:        baths,
		sqft:         sqft,
		yearBuilt:    yearBuilt,
		lotSize:      lotSize,
		loc:          loc,
	}, nil
}

// Reconstruct creates a Record without validation (storage hydration).
func Reconstruct(
	id string, propertyType Type, beds int, baths, sqft float64,
	yearBuilt *int, lotSize *float64, loc location.Location,
) Record {
	if propertyType == "" {
		propertyType = TypeResidential
	}
	return Record{
		id:           id,
		propertyType: propertyType,
		beds:         beds,
		baths:        baths,
		sqft:         sqft,
		yearBuilt:    yearBuilt,
		lotSize:      lotSize,
		loc:          loc,
	}
}

// ID returns the property identifier.
func (r Record) ID() string { return r.id }

// PropertyType returns the property kind.
func (r Record) PropertyType() Type { return r.propertyType }

// Beds returns the bedroom count.
func (r Record) Beds() int { return r.beds }

// Baths returns the bathroom count (halves allowed).
func (r Record) Baths() float64 { return r.baths }

// Sqft returns the living area in square feet.
func (r Record) Sqft() float64 { return r.sqft }

// YearBuilt returns the construction year, if known.
func (r Record) YearBuilt() (int, bool) {
	if r.yearBuilt == nil {
		return 0, false
	}
	return *r.yearBuilt, true
}

// LotSize returns the lot size in acres, if known.
func (r Record) LotSize() (float64, bool) {
	if r.lotSize == nil {
		return 0, false
	}
	return *r.lotSize, true
}

// Location returns the property's resolved location.
func (r Record) Location() location.Location { return r.loc }
