package propdex

import (
	"context"
	"fmt"
	"time"

	domrec "github.com/kailas-cloud/propdex/internal/domain/recommend"
)

// RecommendationService ranks catalogued properties similar to a seed.
type RecommendationService struct {
	svc recommendUseCase
	obs *observer
}

// Similar returns properties similar to a catalogued seed property.
// A nil opts uses the hybrid strategy with the default result count.
func (s *RecommendationService) Similar(ctx context.Context, propertyID string, opts *RecommendOptions) (_ []Recommendation, err error) {
	start := time.Now()
	defer func() { s.obs.observe("recommend.similar", start, err) }()

	strategy, maxResults, filters := resolveRecommendOptions(opts)
	req, err := domrec.NewByProperty(propertyID, strategy, maxResults, filters)
	if err != nil {
		return nil, fmt.Errorf("recommend similar: %w", err)
	}
	recs, err := s.svc.Recommend(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("recommend similar: %w", err)
	}
	return fromInternalRecommendations(recs), nil
}

// Near returns properties around a geographic point. radiusKM is capped at
// 100; zero matches only candidates at the exact point. A nil opts uses the
// hybrid strategy with the default result count.
func (s *RecommendationService) Near(ctx context.Context, lat, lon, radiusKM float64, opts *RecommendOptions) (_ []Recommendation, err error) {
	start := time.Now()
	defer func() { s.obs.observe("recommend.near", start, err) }()

	strategy, maxResults, filters := resolveRecommendOptions(opts)
	req, err := domrec.NewByLocation(lat, lon, radiusKM, strategy, maxResults, filters)
	if err != nil {
		return nil, fmt.Errorf("recommend near: %w", err)
	}
	recs, err := s.svc.Recommend(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("recommend near: %w", err)
	}
	return fromInternalRecommendations(recs), nil
}

func resolveRecommendOptions(opts *RecommendOptions) (domrec.Strategy, int, domrec.Filters) {
	if opts == nil {
		return "", 0, domrec.Filters{}
	}
	return domrec.Strategy(opts.Strategy), opts.MaxResults, toInternalFilters(opts.Filters)
}
