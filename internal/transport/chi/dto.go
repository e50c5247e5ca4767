package chi

import (
	"time"

	"github.com/kailas-cloud/propdex/internal/domain"
	domanl "github.com/kailas-cloud/propdex/internal/domain/analysis"
	domexp "github.com/kailas-cloud/propdex/internal/domain/explain"
	"github.com/kailas-cloud/propdex/internal/domain/location"
	"github.com/kailas-cloud/propdex/internal/domain/property"
	domrec "github.com/kailas-cloud/propdex/internal/domain/recommend"
	"github.com/kailas-cloud/propdex/internal/domain/score"
	domval "github.com/kailas-cloud/propdex/internal/domain/valuation"
)

// errorBody is the single error shape every endpoint returns.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// locationPayload is the wire form of a geocoded point with its bag of
// neighborhood attributes.
type locationPayload struct {
	Latitude   float64             `json:"latitude"`
	Longitude  float64             `json:"longitude"`
	Address    string              `json:"address,omitempty"`
	City       string              `json:"city,omitempty"`
	State      string              `json:"state,omitempty"`
	Attributes location.Attributes `json:"attributes"`
}

func (p locationPayload) toDomain() (location.Location, error) {
	return location.New(p.Latitude, p.Longitude, p.Address, p.City, p.State, p.Attributes)
}

func locationToPayload(l location.Location) locationPayload {
	return locationPayload{
		Latitude:   l.Latitude(),
		Longitude:  l.Longitude(),
		Address:    l.Address(),
		City:       l.City(),
		State:      l.State(),
		Attributes: l.Attrs(),
	}
}

// propertyPayload is the wire form of a property record. On PUT the path
// identifier wins; a body property_id is only checked for consistency.
type propertyPayload struct {
	PropertyID   string          `json:"property_id"`
	PropertyType string          `json:"property_type"`
	Beds         int             `json:"beds"`
	Baths        float64         `json:"baths"`
	Sqft         float64         `json:"sqft"`
	YearBuilt    *int            `json:"year_built,omitempty"`
	LotSize      *float64        `json:"lot_size,omitempty"`
	Location     locationPayload `json:"location"`
}

func (p propertyPayload) toDomain() (property.Record, error) {
	loc, err := p.Location.toDomain()
	if err != nil {
		return property.Record{}, err
	}
	return property.New(p.PropertyID, property.Type(p.PropertyType),
		p.Beds, p.Baths, p.Sqft, p.YearBuilt, p.LotSize, loc)
}

func propertyToPayload(rec property.Record) propertyPayload {
	p := propertyPayload{
		PropertyID:   rec.ID(),
		PropertyType: string(rec.PropertyType()),
		Beds:         rec.Beds(),
		Baths:        rec.Baths(),
		Sqft:         rec.Sqft(),
		Location:     locationToPayload(rec.Location()),
	}
	if yb, ok := rec.YearBuilt(); ok {
		p.YearBuilt = &yb
	}
	if ls, ok := rec.LotSize(); ok {
		p.LotSize = &ls
	}
	return p
}

type propertyListResponse struct {
	Properties []propertyPayload `json:"properties"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

// analysisRequest drives the full pipeline. Absent include flags fall back
// to the default stage set (everything except market insight).
type analysisRequest struct {
	Property      propertyPayload    `json:"property"`
	UserID        string             `json:"user_id,omitempty"`
	RiskTolerance string             `json:"risk_tolerance,omitempty"`
	CustomWeights map[string]float64 `json:"custom_weights,omitempty"`

	IncludeValuation        *bool `json:"include_valuation,omitempty"`
	IncludeBeneficiaryScore *bool `json:"include_beneficiary_score,omitempty"`
	IncludeRecommendations  *bool `json:"include_recommendations,omitempty"`
	IncludeExplanations     *bool `json:"include_explanations,omitempty"`
	IncludeMarketInsight    *bool `json:"include_market_insight,omitempty"`

	MaxRecommendations int     `json:"max_recommendations,omitempty"`
	RadiusKM           float64 `json:"recommendation_radius_km,omitempty"`
}

func (r analysisRequest) flags() domanl.Flags {
	f := domanl.DefaultFlags()
	override := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	override(&f.Valuation, r.IncludeValuation)
	override(&f.Score, r.IncludeBeneficiaryScore)
	override(&f.Recommendations, r.IncludeRecommendations)
	override(&f.Explanations, r.IncludeExplanations)
	override(&f.MarketInsight, r.IncludeMarketInsight)
	return f
}

type analysisResponse struct {
	AnalysisID string  `json:"analysis_id"`
	PropertyID string  `json:"property_id"`
	Verdict    string  `json:"verdict"`
	Confidence float64 `json:"confidence"`

	Suitability domanl.Suitability `json:"suitability_scores"`
	Predictions domanl.Predictions `json:"predictions"`

	Valuation        *valuationResponse `json:"valuation,omitempty"`
	BeneficiaryScore *scoreResponse     `json:"beneficiary_score,omitempty"`

	RiskFactors   []domanl.RiskFactor  `json:"risk_factors"`
	Opportunities []domanl.Opportunity `json:"opportunities"`

	Recommendations []recommendationPayload `json:"recommendations,omitempty"`

	ValuationExplanation   *explanationResponse `json:"valuation_explanation,omitempty"`
	BeneficiaryExplanation *explanationResponse `json:"beneficiary_explanation,omitempty"`
	Summary                domanl.Summary       `json:"summary"`

	MarketInsight string `json:"market_insight,omitempty"`

	Trace        domanl.Trace `json:"trace"`
	ModelVersion string       `json:"model_version"`
	GeneratedAt  time.Time    `json:"generated_at"`
	ElapsedMS    int64        `json:"elapsed_ms"`
}

func analysisToPayload(res domanl.Result) analysisResponse {
	out := analysisResponse{
		AnalysisID:    res.AnalysisID,
		PropertyID:    res.PropertyID,
		Verdict:       string(res.Verdict),
		Confidence:    res.Confidence,
		Suitability:   res.Suitability,
		Predictions:   res.Predictions,
		RiskFactors:   res.RiskFactors,
		Opportunities: res.Opportunities,
		Summary:       res.Summary,
		MarketInsight: res.MarketInsight,
		Trace:         res.Trace,
		ModelVersion:  res.ModelVersion,
		GeneratedAt:   res.GeneratedAt,
		ElapsedMS:     res.ElapsedMS,
	}
	if res.Valuation != nil {
		v := valuationToPayload(*res.Valuation)
		out.Valuation = &v
	}
	if res.Beneficiary != nil {
		sc := scoreToPayload(res.PropertyID, *res.Beneficiary, res.ModelVersion)
		out.BeneficiaryScore = &sc
	}
	if len(res.Recommendations) > 0 {
		out.Recommendations = recommendationsToPayload(res.Recommendations)
	}
	if res.ValuationExplanation != nil {
		e := explanationToPayload(*res.ValuationExplanation)
		out.ValuationExplanation = &e
	}
	if res.BeneficiaryExplanation != nil {
		e := explanationToPayload(*res.BeneficiaryExplanation)
		out.BeneficiaryExplanation = &e
	}
	return out
}

type valuationRequest struct {
	Property propertyPayload `json:"property"`
}

type valuationResponse struct {
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

func valuationToPayload(res domval.Result) valuationResponse {
	low, high := res.Band()
	return valuationResponse{
		PropertyID:       res.PropertyID(),
		PredictedValue:   res.Value(),
		ValueUncertainty: res.Uncertainty(),
		ValueRangeLow:    low,
		ValueRangeHigh:   high,
		PricePerSqft:     res.PricePerSqft(),
		Confidence:       res.Confidence(),
		ModelVersion:     res.ModelVersion(),
		ValuedAt:         time.UnixMilli(res.ValuedAt()).UTC(),
	}
}

type scoreRequest struct {
	Property      propertyPayload    `json:"property"`
	CustomWeights map[string]float64 `json:"custom_weights,omitempty"`
}

type scoreResponse struct {
	PropertyID          string             `json:"property_id"`
	OverallScore        float64            `json:"overall_score"`
	ComponentScores     map[string]float64 `json:"component_scores"`
	ScoringWeights      map[string]float64 `json:"scoring_weights"`
	DefaultedComponents []string           `json:"defaulted_components,omitempty"`
	ModelVersion        string             `json:"model_version"`
}

func scoreToPayload(propertyID string, res score.Result, modelVersion string) scoreResponse {
	return scoreResponse{
		PropertyID:          propertyID,
		OverallScore:        res.Overall(),
		ComponentScores:     res.ComponentMap(),
		ScoringWeights:      res.Weights().Map(),
		DefaultedComponents: res.DefaultedComponents(),
		ModelVersion:        modelVersion,
	}
}

type recommendationPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type recommendationFilters struct {
	PropertyType string   `json:"property_type,omitempty"`
	MinBeds      *int     `json:"min_beds,omitempty"`
	MinBaths     *float64 `json:"min_baths,omitempty"`
	MinSqft      *float64 `json:"min_sqft,omitempty"`
	MaxAgeYears  *int     `json:"max_age_years,omitempty"`
}

func (f recommendationFilters) toDomain() domrec.Filters {
	return domrec.Filters{
		PropertyType: property.Type(f.PropertyType),
		MinBeds:      f.MinBeds,
		MinBaths:     f.MinBaths,
		MinSqft:      f.MinSqft,
		MaxAgeYears:  f.MaxAgeYears,
	}
}

// recommendationRequest selects one of the two query modes: a seed property
// or a geographic point with a radius.
type recommendationRequest struct {
	PropertyID         string                 `json:"property_id,omitempty"`
	Location           *recommendationPoint   `json:"location,omitempty"`
	RadiusKM           float64                `json:"radius_km,omitempty"`
	Strategy           string                 `json:"recommendation_type,omitempty"`
	MaxRecommendations int                    `json:"max_recommendations,omitempty"`
	Filters            *recommendationFilters `json:"filters,omitempty"`
}

func (r recommendationRequest) toDomain() (domrec.Request, error) {
	var filters domrec.Filters
	if r.Filters != nil {
		filters = r.Filters.toDomain()
	}
	strategy := domrec.Strategy(r.Strategy)
	switch {
	case r.PropertyID != "" && r.Location != nil:
		return domrec.Request{}, domain.NewValidation("property_id", "cannot be combined with location")
	case r.PropertyID != "":
		return domrec.NewByProperty(r.PropertyID, strategy, r.MaxRecommendations, filters)
	case r.Location != nil:
		return domrec.NewByLocation(r.Location.Latitude, r.Location.Longitude,
			r.RadiusKM, strategy, r.MaxRecommendations, filters)
	default:
		return domrec.Request{}, domain.NewValidation("property_id", "one of property_id or location is required")
	}
}

type recommendationPayload struct {
	PropertyID      string  `json:"property_id"`
	SimilarityScore float64 `json:"similarity_score"`
	ConfidenceScore float64 `json:"confidence_score"`
	RankPosition    int     `json:"rank_position"`
	Reason          string  `json:"recommendation_reason"`
}

func recommendationsToPayload(recs []domrec.Recommendation) []recommendationPayload {
	out := make([]recommendationPayload, len(recs))
	for i, rec := range recs {
		out[i] = recommendationPayload{
			PropertyID:      rec.PropertyID(),
			SimilarityScore: rec.Similarity(),
			ConfidenceScore: rec.Confidence(),
			RankPosition:    rec.Rank(),
			Reason:          rec.Reason(),
		}
	}
	return out
}

type recommendationsResponse struct {
	Recommendations []recommendationPayload `json:"recommendations"`
	Strategy        string                  `json:"recommendation_type"`
	ModelVersion    string                  `json:"model_version"`
}

type explanationResponse struct {
	PropertyID          string               `json:"property_id,omitempty"`
	ExplanationType     string               `json:"explanation_type"`
	BaseValue           float64              `json:"base_value"`
	PredictionValue     float64              `json:"prediction_value"`
	TopPositiveFeatures []domexp.Attribution `json:"top_positive_features"`
	TopNegativeFeatures []domexp.Attribution `json:"top_negative_features"`
	ModelVersion        string               `json:"model_version"`
}

func explanationToPayload(exp domexp.Explanation) explanationResponse {
	return explanationResponse{
		ExplanationType:     string(exp.Kind()),
		BaseValue:           exp.BaseValue(),
		PredictionValue:     exp.FinalValue(),
		TopPositiveFeatures: exp.Positive(),
		TopNegativeFeatures: exp.Negative(),
		ModelVersion:        exp.ModelVersion(),
	}
}

type interactionRequest struct {
	UserID          string `json:"user_id"`
	PropertyID      string `json:"property_id"`
	InteractionType string `json:"interaction_type"`
}

type interactionResponse struct {
	UserID            string    `json:"user_id"`
	PropertyID        string    `json:"property_id"`
	InteractionType   string    `json:"interaction_type"`
	InteractionWeight float64   `json:"interaction_weight"`
	OccurredAt        time.Time `json:"occurred_at"`
}

type usageMetricsPayload struct {
	InsightRequests  int  `json:"insight_requests"`
	Tokens           int  `json:"tokens"`
	CostMillidollars *int `json:"cost_millidollars,omitempty"`
}

type usageBudgetPayload struct {
	CallsLimit     int        `json:"calls_limit"`
	CallsRemaining int        `json:"calls_remaining"`
	IsExhausted    bool       `json:"is_exhausted"`
	ResetsAt       *time.Time `json:"resets_at,omitempty"`
}

type usageResponse struct {
	Period        string              `json:"period"`
	PeriodStartAt *time.Time          `json:"period_start_at,omitempty"`
	PeriodEndAt   *time.Time          `json:"period_end_at,omitempty"`
	Model         string              `json:"model,omitempty"`
	Usage         usageMetricsPayload `json:"usage"`
	Budget        usageBudgetPayload  `json:"budget"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

type versionResponse struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	BuiltAt string `json:"built_at"`
}
