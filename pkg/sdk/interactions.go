package sdk

import (
	"context"
	"fmt"
	"net/http"
)

// InteractionService records user signals for collaborative filtering.
type InteractionService struct {
	client *Client
}

type interactionRequest struct {
	UserID          string `json:"user_id"`
	PropertyID      string `json:"property_id"`
	InteractionType string `json:"interaction_type"`
}

// Record stores one user interaction. kind is one of the Interaction*
// constants. The returned Interaction carries the engagement weight the
// server assigned.
func (s *InteractionService) Record(ctx context.Context, userID, propertyID, kind string) (Interaction, error) {
	var out Interaction
	req := interactionRequest{UserID: userID, PropertyID: propertyID, InteractionType: kind}
	if _, err := s.client.do(ctx, http.MethodPost, "/v1/user-interaction", req, &out); err != nil {
		return Interaction{}, fmt.Errorf("record interaction: %w", err)
	}
	return out, nil
}
