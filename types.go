package propdex

import "time"

// PropertyType classifies a property record.
type PropertyType string

const (
	TypeResidential PropertyType = "residential"
	TypeCondo       PropertyType = "condo"
	TypeMultiFamily PropertyType = "multi_family"
	TypeCommercial  PropertyType = "commercial"
	TypeLand        PropertyType = "land"
)

// LocationAttributes carries the optional enrichment signals of a location.
// Nil fields are treated as missing and imputed during feature building.
type LocationAttributes struct {
	SchoolRating *float64
	CrimeRate    *float64

	FloodRisk      *float64
	EarthquakeRisk *float64
	HurricaneRisk  *float64
	WildfireRisk   *float64
	TornadoRisk    *float64

	Schools1KM   *int
	Schools3KM   *int
	Hospitals1KM *int
	Hospitals3KM *int
	Transit1KM   *int
	Transit3KM   *int

	PricePerSqft *float64
	PriceTrend1Y *float64
	DemandScore  *float64
	SupplyScore  *float64
}

// Location is a geographic point with optional address and enrichment data.
type Location struct {
	Latitude   float64
	Longitude  float64
	Address    string
	City       string
	State      string
	Attributes LocationAttributes
}

// Property is a property record. ID must be unique; YearBuilt and LotSize
// (acres) are optional.
type Property struct {
	ID        string
	Type      PropertyType
	Beds      int
	Baths     float64
	Sqft      float64
	YearBuilt *int
	LotSize   *float64
	Location  Location
}

// ListResult is one page of catalog listing.
type ListResult struct {
	Properties []Property
	NextCursor string
}

// BatchResult reports the outcome for one item of a batch call.
type BatchResult struct {
	ID  string
	OK  bool
	Err error
}

// Valuation is a priced property with its uncertainty band.
type Valuation struct {
	PropertyID   string
	Value        float64
	RangeLow     float64
	RangeHigh    float64
	Uncertainty  float64
	PricePerSqft float64
	Confidence   float64
	ModelVersion string
	ValuedAt     time.Time
}

// Score is a weighted beneficiary score with its component breakdown.
// Defaulted lists the components that fell back to the neutral value
// because the underlying data was missing.
type Score struct {
	Overall      float64
	Components   map[string]float64
	Weights      map[string]float64
	Defaulted    []string
	ModelVersion string
}

// Strategy selects how recommendation candidates are ranked.
type Strategy string

const (
	StrategyHybrid        Strategy = "hybrid"
	StrategyContent       Strategy = "content_based"
	StrategyCollaborative Strategy = "collaborative"
)

// RecommendFilters narrows recommendation candidates. Nil fields do not
// filter.
type RecommendFilters struct {
	PropertyType PropertyType
	MinBeds      *int
	MinBaths     *float64
	MinSqft      *float64
	MaxAgeYears  *int
}

// RecommendOptions tunes a recommendation call. The zero value asks for the
// default hybrid strategy and result count.
type RecommendOptions struct {
	Strategy   Strategy
	MaxResults int
	Filters    RecommendFilters
}

// Recommendation is one ranked similar property.
type Recommendation struct {
	PropertyID string
	Similarity float64
	Confidence float64
	Rank       int
	Reason     string
}

// ExplanationKind names the prediction an explanation decomposes.
type ExplanationKind string

const (
	ExplainsValuation   ExplanationKind = "valuation"
	ExplainsBeneficiary ExplanationKind = "beneficiary"
)

// Attribution is the contribution of one feature to a prediction.
type Attribution struct {
	Feature      string
	Value        float64
	FeatureValue float64
	Description  string
}

// Explanation decomposes a prediction into per-feature contributions.
// BaseValue plus all attributions and Residual reproduces FinalValue.
type Explanation struct {
	Kind         ExplanationKind
	BaseValue    float64
	FinalValue   float64
	Positive     []Attribution
	Negative     []Attribution
	Residual     float64
	ModelVersion string
}

// InteractionKind classifies a user-property interaction event.
type InteractionKind string

const (
	InteractionView     InteractionKind = "view"
	InteractionShare    InteractionKind = "share"
	InteractionSave     InteractionKind = "save"
	InteractionAnalysis InteractionKind = "comprehensive_analysis"
	InteractionContact  InteractionKind = "contact"
)
