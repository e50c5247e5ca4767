package sdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ValuationService estimates market values.
type ValuationService struct {
	client *Client
}

type valuationRequest struct {
	Property Property `json:"property"`
}

// Value predicts the market value of a property. The property does not
// need to exist in the catalog; when it does, the server also stores
// the valuation snapshot for StoredExplanation.
func (s *ValuationService) Value(ctx context.Context, p Property) (Valuation, error) {
	var out Valuation
	if _, err := s.client.do(ctx, http.MethodPost,
		"/v1/property-valuation", valuationRequest{Property: p}, &out); err != nil {
		return Valuation{}, fmt.Errorf("value property: %w", err)
	}
	return out, nil
}

// StoredExplanation fetches the attribution breakdown for the stored
// valuation of a catalogued property. ErrNotFound means no valuation
// snapshot exists for the active model version.
func (s *ValuationService) StoredExplanation(ctx context.Context, propertyID string) (Explanation, error) {
	if propertyID == "" {
		return Explanation{}, fmt.Errorf("explain valuation: %w", ErrValidation)
	}
	var out Explanation
	if _, err := s.client.do(ctx, http.MethodGet,
		"/v1/property-valuation/"+url.PathEscape(propertyID)+"/explanation", nil, &out); err != nil {
		return Explanation{}, fmt.Errorf("explain valuation: %w", err)
	}
	return out, nil
}
