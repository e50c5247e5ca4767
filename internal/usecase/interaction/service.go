// Package interaction ingests user engagement signals that feed the
// collaborative recommendation channel.
package interaction

import (
	"context"
	"time"

	"go.uber.org/zap"

	dominter "github.com/kailas-cloud/propdex/internal/domain/interaction"
	"github.com/kailas-cloud/propdex/internal/logger"
)

// Service records engagement events.
type Service struct {
	recorder Recorder
}

// New creates an interaction service.
func New(recorder Recorder) *Service {
	return &Service{recorder: recorder}
}

// Record validates and ingests one engagement event. Invalid input still
// fails, but a persistence failure only logs: a lost signal must never fail
// the caller's request.
func (s *Service) Record(ctx context.Context, userID, propertyID string, kind dominter.Kind) (dominter.Event, error) {
	ev, err := dominter.NewEvent(userID, propertyID, kind, time.Now().UTC())
	if err != nil {
		return dominter.Event{}, err
	}

	if err := s.recorder.Record(ctx, ev); err != nil {
		logger.FromContext(ctx).Warn("Failed to record interaction",
			zap.String("property_id", propertyID),
			zap.String("interaction_type", string(kind)),
			zap.Error(err),
		)
	}
	return ev, nil
}
