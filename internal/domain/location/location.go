package location

import (
	"fmt"

	"github.com/kailas-cloud/propdex/internal/domain"
	"github.com/kailas-cloud/propdex/internal/domain/geo"
)

// Attributes is the bag of neighborhood data attached to a location.
// Every field is optional: nil means the upstream supplier had no data and
// downstream consumers impute a documented default.
type Attributes struct {
	SchoolRating *float64 `json:"school_rating,omitempty"` // 0-10 scale
	CrimeRate    *float64 `json:"crime_rate,omitempty"`    // incidents per 1,000 residents

	FloodRisk      *float64 `json:"flood_risk,omitempty"` // probability 0-1
	EarthquakeRisk *float64 `json:"earthquake_risk,omitempty"`
	HurricaneRisk  *float64 `json:"hurricane_risk,omitempty"`
	WildfireRisk   *float64 `json:"wildfire_risk,omitempty"`
	TornadoRisk    *float64 `json:"tornado_risk,omitempty"`

	Schools1KM   *int `json:"schools_1km,omitempty"`
	Schools3KM   *int `json:"schools_3km,omitempty"`
	Hospitals1KM *int `json:"hospitals_1km,omitempty"`
	Hospitals3KM *int `json:"hospitals_3km,omitempty"`
	Transit1KM   *int `json:"transit_1km,omitempty"`
	Transit3KM   *int `json:"transit_3km,omitempty"`

	PricePerSqft *float64 `json:"price_per_sqft,omitempty"` // area average, $/sqft
	PriceTrend1Y *float64 `json:"price_trend_1y,omitempty"` // fraction per year
	DemandScore  *float64 `json:"demand_score,omitempty"`   // 0-100
	SupplyScore  *float64 `json:"supply_score,omitempty"`   // 0-100
}

// RiskKinds names the disaster risks in the order RiskProbabilities
// returns them.
func RiskKinds() [5]string {
	return [5]string{"flood", "earthquake", "hurricane", "wildfire", "tornado"}
}

// RiskProbabilities returns the five disaster risk probabilities in a fixed
// order (flood, earthquake, hurricane, wildfire, tornado); absent risks are 0.
func (a Attributes) RiskProbabilities() [5]float64 {
	return [5]float64{
		deref(a.FloodRisk),
		deref(a.EarthquakeRisk),
		deref(a.HurricaneRisk),
		deref(a.WildfireRisk),
		deref(a.TornadoRisk),
	}
}

// HasFacilityData reports whether any facility count was supplied.
func (a Attributes) HasFacilityData() bool {
	return a.Schools1KM != nil || a.Schools3KM != nil ||
		a.Hospitals1KM != nil || a.Hospitals3KM != nil ||
		a.Transit1KM != nil || a.Transit3KM != nil
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// Location is a resolved geocoded point with neighborhood attributes
// (immutable value object).
type Location struct {
	lat     float64
	lon     float64
	address string
	city    string
	state   string
	attrs   Attributes
}

// New validates coordinates and creates a Location.
func New(lat, lon float64, address, city, state string, attrs Attributes) (Location, error) {
	if !geo.ValidateCoordinates(lat, lon) {
		return Location{}, domain.NewValidation("location",
			fmt.Sprintf("coordinates out of range: (%v, %v)", lat, lon))
	}
	return Location{lat: lat, lon: lon, address: address, city: city, state: state, attrs: attrs}, nil
}

// Reconstruct creates a Location without validation (storage hydration).
func Reconstruct(lat, lon float64, address, city, state string, attrs Attributes) Location {
	return Location{lat: lat, lon: lon, address: address, city: city, state: state, attrs: attrs}
}

// Latitude returns the latitude in degrees.
func (l Location) Latitude() float64 { return l.lat }

// Longitude returns the longitude in degrees.
func (l Location) Longitude() float64 { return l.lon }

// Address returns the street address (may be empty).
func (l Location) Address() string { return l.address }

// City returns the resolved city name (may be empty).
func (l Location) City() string { return l.city }

// State returns the resolved state/region code (may be empty).
func (l Location) State() string { return l.state }

// Attrs returns the neighborhood attribute bag.
func (l Location) Attrs() Attributes { return l.attrs }

// DistanceMeters returns the great-circle distance to another location.
func (l Location) DistanceMeters(other Location) float64 {
	return geo.Haversine(l.lat, l.lon, other.lat, other.lon)
}
