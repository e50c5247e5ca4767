package propdex

import (
	"context"
	"fmt"
	"time"

	dominter "github.com/kailas-cloud/propdex/internal/domain/interaction"
)

// InteractionService records user-property interaction events feeding the
// collaborative part of the recommender.
type InteractionService struct {
	svc interactionUseCase
	obs *observer
}

// Record stores one interaction event, weighted by kind.
func (s *InteractionService) Record(ctx context.Context, userID, propertyID string, kind InteractionKind) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("interaction.record", start, err) }()

	if _, err = s.svc.Record(ctx, userID, propertyID, dominter.Kind(kind)); err != nil {
		return fmt.Errorf("record interaction: %w", err)
	}
	return nil
}
