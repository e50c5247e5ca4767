package batch

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/propdex/internal/domain"
	dombatch "github.com/kailas-cloud/propdex/internal/domain/batch"
	"github.com/kailas-cloud/propdex/internal/domain/feature"
	"github.com/kailas-cloud/propdex/internal/domain/property"
)

// MaxBatchSize is the maximum number of items per batch request.
const MaxBatchSize = 500

// Service handles batch property operations with per-item error reporting.
type Service struct {
	catalog      Catalog
	builder      *feature.Builder
	maxBatchSize int
}

// New creates a batch service.
func New(catalog Catalog, builder *feature.Builder) *Service {
	return &Service{catalog: catalog, builder: builder, maxBatchSize: MaxBatchSize}
}

// WithMaxBatchSize configures the maximum batch size.
func (s *Service) WithMaxBatchSize(size int) *Service {
	if size > 0 {
		s.maxBatchSize = size
	}
	return s
}

// Upsert creates or updates property records in batch. Feature building is
// per-item; records that pass go to the store in a single pipelined write.
func (s *Service) Upsert(ctx context.Context, recs []property.Record) []dombatch.Result {
	results := make([]dombatch.Result, len(recs))

	if len(recs) > s.maxBatchSize {
		err := domain.NewValidation("batch", fmt.Sprintf("size exceeds %d", s.maxBatchSize))
		for i, rec := range recs {
			results[i] = dombatch.NewError(rec.ID(), err)
		}
		return results
	}

	// Build feature vectors for all items; collect valid ones for bulk upsert.
	valid := make([]property.Record, 0, len(recs))
	features := make([][]float64, 0, len(recs))
	validIdx := make([]int, 0, len(recs))

	for i, rec := range recs {
		vec, err := s.builder.Build(rec)
		if err != nil {
			results[i] = dombatch.NewError(rec.ID(), fmt.Errorf("build features: %w", err))
			continue
		}
		valid = append(valid, rec)
		features = append(features, vec.Values())
		validIdx = append(validIdx, i)
	}

	if len(valid) == 0 {
		return results
	}

	if err := s.catalog.UpsertBulk(ctx, valid, features); err != nil {
		for _, i := range validIdx {
			results[i] = dombatch.NewError(recs[i].ID(), fmt.Errorf("bulk upsert: %w", err))
		}
		return results
	}

	for _, i := range validIdx {
		results[i] = dombatch.NewOK(recs[i].ID())
	}
	return results
}

// Delete removes properties by ID in batch.
func (s *Service) Delete(ctx context.Context, ids []string) []dombatch.Result {
	results := make([]dombatch.Result, len(ids))

	if len(ids) > s.maxBatchSize {
		err := domain.NewValidation("batch", fmt.Sprintf("size exceeds %d", s.maxBatchSize))
		for i, id := range ids {
			results[i] = dombatch.NewError(id, err)
		}
		return results
	}

	for i, id := range ids {
		if err := s.catalog.Delete(ctx, id); err != nil {
			results[i] = dombatch.NewError(id, fmt.Errorf("delete: %w", err))
			continue
		}
		results[i] = dombatch.NewOK(id)
	}

	return results
}
