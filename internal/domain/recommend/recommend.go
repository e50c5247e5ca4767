package recommend

import (
	"fmt"

	"github.com/kailas-cloud/propdex/internal/domain"
	"github.com/kailas-cloud/propdex/internal/domain/geo"
	"github.com/kailas-cloud/propdex/internal/domain/property"
)

// Request parameter limits.
const (
	DefaultMaxResults = 10
	MaxResults        = 50
	DefaultRadiusKM   = 10.0
	MaxRadiusKM       = 100.0
)

// Mode is the recommendation entry mode.
type Mode string

const (
	// ModeProperty recommends listings similar to a seed property.
	ModeProperty Mode = "property"
	// ModeLocation recommends listings near a geographic point.
	ModeLocation Mode = "location"
)

// Strategy selects the ranking signals to blend.
type Strategy string

const (
	// StrategyHybrid blends content similarity with the collaborative signal.
	StrategyHybrid Strategy = "hybrid"
	// StrategyContent ranks by content similarity only.
	StrategyContent Strategy = "content_based"
	// StrategyCollaborative ranks by the collaborative signal only.
	StrategyCollaborative Strategy = "collaborative"
)

// IsValid checks if the strategy is supported.
func (s Strategy) IsValid() bool {
	return s == StrategyHybrid || s == StrategyContent || s == StrategyCollaborative
}

// Filters are hard preference constraints: candidates failing any of them are
// excluded before ranking, never just penalized.
type Filters struct {
	PropertyType property.Type
	MinBeds      *int
	MinBaths     *float64
	MinSqft      *float64
	MaxAgeYears  *int
}

// Matches reports whether a candidate passes every set filter. ageOf resolves
// the candidate's age in years (reference-year based).
func (f Filters) Matches(rec property.Record, ageYears int) bool {
	if f.PropertyType != "" && rec.PropertyType() != f.PropertyType {
		return false
	}
	if f.MinBeds != nil && rec.Beds() < *f.MinBeds {
		return false
	}
	if f.MinBaths != nil && rec.Baths() < *f.MinBaths {
		return false
	}
	if f.MinSqft != nil && rec.Sqft() < *f.MinSqft {
		return false
	}
	if f.MaxAgeYears != nil && ageYears > *f.MaxAgeYears {
		return false
	}
	return true
}

// Request is a validated recommendation query in one of two modes.
type Request struct {
	mode       Mode
	seedID     string
	lat        float64
	lon        float64
	radiusKM   float64
	strategy   Strategy
	maxResults int
	filters    Filters
}

// NewByProperty validates and creates a seed-property request.
// Defaults: strategy=hybrid, maxResults=10 (capped at 50).
func NewByProperty(seedID string, strategy Strategy, maxResults int, filters Filters) (Request, error) {
	if seedID == "" {
		return Request{}, domain.NewValidation("property_id", "is required in property mode")
	}
	strategy, maxResults, err := normalize(strategy, maxResults)
	if err != nil {
		return Request{}, err
	}
	return Request{
		mode:       ModeProperty,
		seedID:     seedID,
		strategy:   strategy,
		maxResults: maxResults,
		filters:    filters,
	}, nil
}

// NewByLocation validates and creates a geographic request.
// Defaults: radius=10km (capped at 100), strategy=hybrid, maxResults=10.
// A zero radius is allowed and matches only candidates at the exact point.
func NewByLocation(lat, lon, radiusKM float64, strategy Strategy, maxResults int, filters Filters) (Request, error) {
	if !geo.ValidateCoordinates(lat, lon) {
		return Request{}, domain.NewValidation("location",
			fmt.Sprintf("coordinates out of range: (%v, %v)", lat, lon))
	}
	if radiusKM < 0 {
		return Request{}, domain.NewValidation("radius_km", "must be non-negative")
	}
	if radiusKM > MaxRadiusKM {
		radiusKM = MaxRadiusKM
	}
	strategy, maxResults, err := normalize(strategy, maxResults)
	if err != nil {
		return Request{}, err
	}
	return Request{
		mode:       ModeLocation,
		lat:        lat,
		lon:        lon,
		radiusKM:   radiusKM,
		strategy:   strategy,
		maxResults: maxResults,
		filters:    filters,
	}, nil
}

func normalize(strategy Strategy, maxResults int) (Strategy, int, error) {
	if strategy == "" {
		strategy = StrategyHybrid
	}
	if !strategy.IsValid() {
		return "", 0, domain.NewValidation("recommendation_type", fmt.Sprintf("unknown strategy %q", strategy))
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	if maxResults > MaxResults {
		maxResults = MaxResults
	}
	return strategy, maxResults, nil
}

// Mode returns the entry mode.
func (r Request) Mode() Mode { return r.mode }

// SeedID returns the seed property id (property mode).
func (r Request) SeedID() string { return r.seedID }

// Latitude returns the query latitude (location mode).
func (r Request) Latitude() float64 { return r.lat }

// Longitude returns the query longitude (location mode).
func (r Request) Longitude() float64 { return r.lon }

// RadiusKM returns the search radius in kilometers (location mode).
func (r Request) RadiusKM() float64 { return r.radiusKM }

// Strategy returns the ranking strategy.
func (r Request) Strategy() Strategy { return r.strategy }

// MaxResults returns the result cap.
func (r Request) MaxResults() int { return r.maxResults }

// Filters returns the hard preference filters.
func (r Request) Filters() Filters { return r.filters }

// Candidate is a retrieval hit awaiting ranking: the minimal candidate record
// plus the retrieval measure. Score carries the vector similarity for feature
// retrieval; DistanceMeters is set for geographic retrieval.
type Candidate struct {
	Record         property.Record
	Score          float64
	DistanceMeters float64
}

// Recommendation is one ranked candidate.
type Recommendation struct {
	propertyID string
	similarity float64
	confidence float64
	rank       int
	reason     string
}

// NewRecommendation validates and creates a ranked candidate entry.
func NewRecommendation(propertyID string, similarity, confidence float64, rank int, reason string) (Recommendation, error) {
	if propertyID == "" {
		return Recommendation{}, domain.NewComputation("recommend", "candidate without property id")
	}
	if similarity < 0 || similarity > 1 {
		return Recommendation{}, domain.NewComputation("recommend",
			fmt.Sprintf("similarity %f outside [0,1]", similarity))
	}
	if confidence < 0 || confidence > 1 {
		return Recommendation{}, domain.NewComputation("recommend",
			fmt.Sprintf("confidence %f outside [0,1]", confidence))
	}
	if rank < 1 {
		return Recommendation{}, domain.NewComputation("recommend", fmt.Sprintf("rank %d below 1", rank))
	}
	return Recommendation{
		propertyID: propertyID,
		similarity: similarity,
		confidence: confidence,
		rank:       rank,
		reason:     reason,
	}, nil
}

// PropertyID returns the recommended property's identifier.
func (r Recommendation) PropertyID() string { return r.propertyID }

// Similarity returns the [0,1] similarity to the seed/query.
func (r Recommendation) Similarity() float64 { return r.similarity }

// Confidence returns the [0,1] trust measure for this recommendation.
func (r Recommendation) Confidence() float64 { return r.confidence }

// Rank returns the 1-based rank position.
func (r Recommendation) Rank() int { return r.rank }

// Reason returns the human-readable inclusion reason.
func (r Recommendation) Reason() string { return r.reason }
