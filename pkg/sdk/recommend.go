package sdk

import (
	"context"
	"fmt"
	"net/http"
)

// RecommendationService finds comparable properties.
type RecommendationService struct {
	client *Client
}

type recommendationPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type recommendationRequest struct {
	PropertyID         string               `json:"property_id,omitempty"`
	Location           *recommendationPoint `json:"location,omitempty"`
	RadiusKM           float64              `json:"radius_km,omitempty"`
	Strategy           string               `json:"recommendation_type,omitempty"`
	MaxRecommendations int                  `json:"max_recommendations,omitempty"`
	Filters            *RecommendFilters    `json:"filters,omitempty"`
}

func (r *recommendationRequest) applyOptions(opts *RecommendOptions) {
	if opts == nil {
		return
	}
	r.Strategy = opts.Strategy
	r.MaxRecommendations = opts.MaxResults
	r.Filters = opts.Filters
}

// Similar recommends properties resembling the catalogued seed property.
// Pass nil opts for the server defaults.
func (s *RecommendationService) Similar(ctx context.Context, propertyID string, opts *RecommendOptions) (RecommendationList, error) {
	if propertyID == "" {
		return RecommendationList{}, fmt.Errorf("recommend similar: %w", ErrValidation)
	}
	req := recommendationRequest{PropertyID: propertyID}
	req.applyOptions(opts)
	return s.post(ctx, "recommend similar", req)
}

// Near recommends properties around a geographic point. The radius is
// capped at 100 km by the server; zero matches only candidates at the
// exact point.
func (s *RecommendationService) Near(ctx context.Context, lat, lon, radiusKM float64, opts *RecommendOptions) (RecommendationList, error) {
	req := recommendationRequest{
		Location: &recommendationPoint{Latitude: lat, Longitude: lon},
		RadiusKM: radiusKM,
	}
	req.applyOptions(opts)
	return s.post(ctx, "recommend near", req)
}

func (s *RecommendationService) post(ctx context.Context, op string, req recommendationRequest) (RecommendationList, error) {
	var out RecommendationList
	if _, err := s.client.do(ctx, http.MethodPost, "/v1/recommendations", req, &out); err != nil {
		return RecommendationList{}, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}
