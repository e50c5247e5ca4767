package valuation

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/propdex/internal/domain"
	"github.com/kailas-cloud/propdex/internal/domain/feature"
	"github.com/kailas-cloud/propdex/internal/domain/property"
	domval "github.com/kailas-cloud/propdex/internal/domain/valuation"
	"github.com/kailas-cloud/propdex/internal/logger"
	"github.com/kailas-cloud/propdex/internal/metrics"
)

// uncertaintyScale is the band width in dollars at which the uncertainty term
// of the confidence formula bottoms out.
const uncertaintyScale = 50000.0

const (
	uncertaintyShare  = 0.4
	completenessShare = 0.3
	qualityShare      = 0.3

	minConfidence = 0.1
	maxConfidence = 1.0
)

// Service predicts market values with the active model artifact.
type Service struct {
	builder   *feature.Builder
	models    Models
	snapshots SnapshotStore
}

// New creates a valuation service. snapshots can be nil (no persistence).
func New(builder *feature.Builder, models Models, snapshots SnapshotStore) *Service {
	return &Service{builder: builder, models: models, snapshots: snapshots}
}

// Value builds the feature vector and predicts the property's market value.
func (s *Service) Value(ctx context.Context, rec property.Record) (domval.Result, feature.Vector, error) {
	vec, err := s.builder.Build(rec)
	if err != nil {
		return domval.Result{}, feature.Vector{}, fmt.Errorf("build features: %w", err)
	}
	res, err := s.ValueVector(ctx, rec, vec)
	if err != nil {
		return domval.Result{}, feature.Vector{}, err
	}
	return res, vec, nil
}

// ValueVector predicts from a pre-built feature vector; the analysis pipeline
// uses it to share one vector between valuation and scoring.
func (s *Service) ValueVector(ctx context.Context, rec property.Record, vec feature.Vector) (domval.Result, error) {
	if rec.Sqft() <= 0 {
		return domval.Result{}, domain.NewValidation("sqft", "must be positive")
	}

	artifact, err := s.models.Active()
	if err != nil {
		return domval.Result{}, err
	}

	value, uncertainty, err := artifact.Predict(vec.Values())
	if err != nil {
		metrics.PredictionsTotal.WithLabelValues("valuation", "error").Inc()
		return domval.Result{}, fmt.Errorf("predict: %w", err)
	}

	confidence := Confidence(uncertainty, vec.Completeness(), vec.DataQuality())
	res, err := domval.New(rec.ID(), value, uncertainty, value/rec.Sqft(), confidence, artifact.Version())
	if err != nil {
		metrics.PredictionsTotal.WithLabelValues("valuation", "error").Inc()
		return domval.Result{}, err
	}
	metrics.PredictionsTotal.WithLabelValues("valuation", "success").Inc()

	s.persist(ctx, res, rec)
	return res, nil
}

// persist stores the snapshot for the explanation endpoint. The prediction
// already succeeded, so a persistence failure only logs; the valuation simply
// stops being explainable after the snapshot is gone.
func (s *Service) persist(ctx context.Context, res domval.Result, rec property.Record) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.Save(ctx, res, rec); err != nil {
		logger.FromContext(ctx).Warn("Failed to persist valuation snapshot",
			zap.String("property_id", rec.ID()),
			zap.String("model_version", res.ModelVersion()),
			zap.Error(err),
		)
	}
}

// Confidence combines the uncertainty band with data completeness and
// quality; it is monotonically decreasing in the band width and clamped to
// [0.1, 1.0].
func Confidence(uncertainty, completeness, quality float64) float64 {
	certainty := 1 - uncertainty/uncertaintyScale
	if certainty < 0 {
		certainty = 0
	}
	c := uncertaintyShare*certainty + completenessShare*completeness + qualityShare*quality
	if c < minConfidence {
		return minConfidence
	}
	if c > maxConfidence {
		return maxConfidence
	}
	return c
}
