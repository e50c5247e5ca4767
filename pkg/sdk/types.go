package sdk

import "time"

// Property types accepted by the catalog.
const (
	TypeResidential = "residential"
	TypeCondo       = "condo"
	TypeMultiFamily = "multi_family"
	TypeCommercial  = "commercial"
	TypeLand        = "land"
)

// Recommendation strategies.
const (
	StrategyHybrid        = "hybrid"
	StrategyContent       = "content_based"
	StrategyCollaborative = "collaborative"
)

// Risk tolerance levels for the analysis pipeline.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Interaction kinds ordered by ascending engagement weight.
const (
	InteractionView     = "view"
	InteractionShare    = "share"
	InteractionSave     = "save"
	InteractionAnalysis = "comprehensive_analysis"
	InteractionContact  = "contact"
)

// Usage reporting periods.
const (
	PeriodDay   = "day"
	PeriodMonth = "month"
	PeriodTotal = "total"
)

// Bool returns a pointer to v. Handy for the optional flags of
// AnalysisRequest and RecommendFilters.
func Bool(v bool) *bool { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Float64 returns a pointer to v.
func Float64(v float64) *float64 { return &v }

// LocationAttributes is the bag of neighborhood attributes attached to a
// location. Nil fields are treated as unknown by the server and filled
// from heuristics where possible.
type LocationAttributes struct {
	SchoolRating *float64 `json:"school_rating,omitempty"`
	CrimeRate    *float64 `json:"crime_rate,omitempty"`

	FloodRisk      *float64 `json:"flood_risk,omitempty"`
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

	PricePerSqft *float64 `json:"price_per_sqft,omitempty"`
	PriceTrend1Y *float64 `json:"price_trend_1y,omitempty"`
	DemandScore  *float64 `json:"demand_score,omitempty"`
	SupplyScore  *float64 `json:"supply_score,omitempty"`
}

// Location is a geocoded point with its neighborhood attributes.
type Location struct {
	Latitude   float64            `json:"latitude"`
	Longitude  float64            `json:"longitude"`
	Address    string             `json:"address,omitempty"`
	City       string             `json:"city,omitempty"`
	State      string             `json:"state,omitempty"`
	Attributes LocationAttributes `json:"attributes"`
}

// Property is one catalog record.
type Property struct {
	ID        string   `json:"property_id"`
	Type      string   `json:"property_type"`
	Beds      int      `json:"beds"`
	Baths     float64  `json:"baths"`
	Sqft      float64  `json:"sqft"`
	YearBuilt *int     `json:"year_built,omitempty"`
	LotSize   *float64 `json:"lot_size,omitempty"`
	Location  Location `json:"location"`
}

// PropertyList is one page of catalog records. An empty NextCursor means
// the listing is exhausted.
type PropertyList struct {
	Properties []Property `json:"properties"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// Valuation is a market value estimate with its uncertainty band.
type Valuation struct {
	PropertyID       string    `json:"property_id"`
	PredictedValue   float64   `json:"predicted_value"`
	ValueUncertainty float64   `json:"value_uncertainty"`
	ValueRangeLow    float64   `json:"value_range_low"`
	ValueRangeHigh   float64   `json:"value_range_high"`
	PricePerSqft     float64   `json:"price_per_sqft"`
	Confidence       float64   `json:"confidence"`
	ModelVersion     string    `json:"model_version"`
	ValuedAt         time.Time `json:"valued_at"`
}

// Score is a beneficiary suitability score on the 0-100 scale with its
// per-component breakdown.
type Score struct {
	PropertyID          string             `json:"property_id"`
	OverallScore        float64            `json:"overall_score"`
	ComponentScores     map[string]float64 `json:"component_scores"`
	ScoringWeights      map[string]float64 `json:"scoring_weights"`
	DefaultedComponents []string           `json:"defaulted_components,omitempty"`
	ModelVersion        string             `json:"model_version"`
}

// RecommendFilters narrows the recommendation candidate pool. Nil fields
// are not applied.
type RecommendFilters struct {
	PropertyType string   `json:"property_type,omitempty"`
	MinBeds      *int     `json:"min_beds,omitempty"`
	MinBaths     *float64 `json:"min_baths,omitempty"`
	MinSqft      *float64 `json:"min_sqft,omitempty"`
	MaxAgeYears  *int     `json:"max_age_years,omitempty"`
}

// RecommendOptions tunes a recommendation query. The zero value keeps
// the server defaults (hybrid strategy, default result count).
type RecommendOptions struct {
	Strategy   string
	MaxResults int
	Filters    *RecommendFilters
}

// Recommendation is one ranked candidate.
type Recommendation struct {
	PropertyID      string  `json:"property_id"`
	SimilarityScore float64 `json:"similarity_score"`
	ConfidenceScore float64 `json:"confidence_score"`
	RankPosition    int     `json:"rank_position"`
	Reason          string  `json:"recommendation_reason"`
}

// RecommendationList is a ranked recommendation response.
type RecommendationList struct {
	Recommendations []Recommendation `json:"recommendations"`
	Strategy        string           `json:"recommendation_type"`
	ModelVersion    string           `json:"model_version"`
}

// Attribution is one feature's signed contribution to a model output.
type Attribution struct {
	Feature      string  `json:"feature_name"`
	Value        float64 `json:"attribution_value"`
	FeatureValue float64 `json:"feature_value"`
	Description  string  `json:"impact_description"`
}

// Explanation decomposes one model output into per-feature attributions.
// ExplanationType is "valuation" or "beneficiary".
type Explanation struct {
	PropertyID          string        `json:"property_id,omitempty"`
	ExplanationType     string        `json:"explanation_type"`
	BaseValue           float64       `json:"base_value"`
	PredictionValue     float64       `json:"prediction_value"`
	TopPositiveFeatures []Attribution `json:"top_positive_features"`
	TopNegativeFeatures []Attribution `json:"top_negative_features"`
	ModelVersion        string        `json:"model_version"`
}

// Suitability carries the per-dimension suitability scores on the 0-100
// scale.
type Suitability struct {
	FacilityAccessibility float64 `json:"facility_accessibility"`
	Safety                float64 `json:"safety"`
	MarketPotential       float64 `json:"market_potential"`
	DisasterSafety        float64 `json:"disaster_safety"`
	Overall               float64 `json:"overall"`
}

// Predictions carries projected values over fixed horizons.
type Predictions struct {
	OneYear   float64 `json:"1_year"`
	ThreeYear float64 `json:"3_year"`
	FiveYear  float64 `json:"5_year"`
}

// RiskFactor is one detected downside with its severity.
type RiskFactor struct {
	Factor      string  `json:"factor"`
	Severity    string  `json:"severity"`
	Description string  `json:"description"`
	ImpactScore float64 `json:"impact_score"`
}

// Opportunity is one detected upside.
type Opportunity struct {
	Opportunity     string  `json:"opportunity"`
	PotentialImpact string  `json:"potential_impact"`
	Description     string  `json:"description"`
	Confidence      float64 `json:"confidence"`
}

// Summary is the narrative digest of an analysis.
type Summary struct {
	ValueDrivers       string `json:"value_drivers,omitempty"`
	BeneficiaryDrivers string `json:"beneficiary_drivers,omitempty"`
	InvestmentOutlook  string `json:"investment_outlook"`
}

// StageEvent is one entry of the pipeline execution trace.
type StageEvent struct {
	Stage  string `json:"stage"`
	Status string `json:"status"`
	Note   string `json:"note,omitempty"`
}

// Analysis is the combined result of one pipeline run. Optional stages
// that were skipped or failed leave their pointers nil; the Trace tells
// which.
type Analysis struct {
	AnalysisID string  `json:"analysis_id"`
	PropertyID string  `json:"property_id"`
	Verdict    string  `json:"verdict"`
	Confidence float64 `json:"confidence"`

	Suitability Suitability `json:"suitability_scores"`
	Predictions Predictions `json:"predictions"`

	Valuation        *Valuation `json:"valuation,omitempty"`
	BeneficiaryScore *Score     `json:"beneficiary_score,omitempty"`

	RiskFactors   []RiskFactor  `json:"risk_factors"`
	Opportunities []Opportunity `json:"opportunities"`

	Recommendations []Recommendation `json:"recommendations,omitempty"`

	ValuationExplanation   *Explanation `json:"valuation_explanation,omitempty"`
	BeneficiaryExplanation *Explanation `json:"beneficiary_explanation,omitempty"`
	Summary                Summary      `json:"summary"`

	MarketInsight string `json:"market_insight,omitempty"`

	Trace        []StageEvent `json:"trace"`
	ModelVersion string       `json:"model_version"`
	GeneratedAt  time.Time    `json:"generated_at"`
	ElapsedMS    int64        `json:"elapsed_ms"`
}

// Interaction is a recorded user signal.
type Interaction struct {
	UserID            string    `json:"user_id"`
	PropertyID        string    `json:"property_id"`
	InteractionType   string    `json:"interaction_type"`
	InteractionWeight float64   `json:"interaction_weight"`
	OccurredAt        time.Time `json:"occurred_at"`
}

// UsageMetrics counts insight generation activity within a period.
type UsageMetrics struct {
	InsightRequests  int  `json:"insight_requests"`
	Tokens           int  `json:"tokens"`
	CostMillidollars *int `json:"cost_millidollars,omitempty"`
}

// UsageBudget is the state of the monthly insight call budget.
type UsageBudget struct {
	CallsLimit     int        `json:"calls_limit"`
	CallsRemaining int        `json:"calls_remaining"`
	IsExhausted    bool       `json:"is_exhausted"`
	ResetsAt       *time.Time `json:"resets_at,omitempty"`
}

// UsageReport is the usage and budget snapshot for one period.
type UsageReport struct {
	Period        string       `json:"period"`
	PeriodStartAt *time.Time   `json:"period_start_at,omitempty"`
	PeriodEndAt   *time.Time   `json:"period_end_at,omitempty"`
	Model         string       `json:"model,omitempty"`
	Usage         UsageMetrics `json:"usage"`
	Budget        UsageBudget  `json:"budget"`
}

// Health is the aggregated server health. Status is "ok", "degraded" or
// "error"; Checks maps component names to "ok"/"error".
type Health struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// VersionInfo is the server build information.
type VersionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	BuiltAt string `json:"built_at"`
}
