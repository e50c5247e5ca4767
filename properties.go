package propdex

import (
	"context"
	"fmt"
	"time"

	dombatch "github.com/kailas-cloud/propdex/internal/domain/batch"
	"github.com/kailas-cloud/propdex/internal/domain/property"
)

// PropertyService manages the property catalog.
type PropertyService struct {
	svc   catalogUseCase
	batch batchUseCase
	obs   *observer
}

// Upsert creates or replaces a property. It reports whether the property
// was created.
func (s *PropertyService) Upsert(ctx context.Context, p Property) (_ bool, err error) {
	start := time.Now()
	defer func() { s.obs.observe("property.upsert", start, err) }()

	rec, err := toInternalRecord(p)
	if err != nil {
		return false, fmt.Errorf("upsert property: %w", err)
	}
	created, err := s.svc.Upsert(ctx, rec)
	if err != nil {
		return false, fmt.Errorf("upsert property: %w", err)
	}
	return created, nil
}

// Get fetches a property by ID.
func (s *PropertyService) Get(ctx context.Context, id string) (_ Property, err error) {
	start := time.Now()
	defer func() { s.obs.observe("property.get", start, err) }()

	rec, err := s.svc.Get(ctx, id)
	if err != nil {
		return Property{}, fmt.Errorf("get property: %w", err)
	}
	return fromInternalRecord(rec), nil
}

// Delete removes a property and its index entry.
func (s *PropertyService) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("property.delete", start, err) }()

	if err = s.svc.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete property: %w", err)
	}
	return nil
}

// List pages through the catalog. Pass an empty cursor for the first page;
// limit <= 0 uses the default page size.
func (s *PropertyService) List(ctx context.Context, cursor string, limit int) (_ ListResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("property.list", start, err) }()

	recs, next, err := s.svc.List(ctx, cursor, limit)
	if err != nil {
		return ListResult{}, fmt.Errorf("list properties: %w", err)
	}
	props := make([]Property, len(recs))
	for i, rec := range recs {
		props[i] = fromInternalRecord(rec)
	}
	return ListResult{Properties: props, NextCursor: next}, nil
}

// Count returns the number of catalogued properties.
func (s *PropertyService) Count(ctx context.Context) (_ int, err error) {
	start := time.Now()
	defer func() { s.obs.observe("property.count", start, err) }()

	n, err := s.svc.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count properties: %w", err)
	}
	return n, nil
}

// UpsertBatch stores many properties in one pipelined write and reports a
// per-item result. It fails as a whole only when an item cannot be converted.
func (s *PropertyService) UpsertBatch(ctx context.Context, props []Property) ([]BatchResult, error) {
	start := time.Now()

	recs := make([]property.Record, len(props))
	for i, p := range props {
		rec, err := toInternalRecord(p)
		if err != nil {
			err = fmt.Errorf("property %d: %w", i, err)
			s.obs.observe("property.batch_upsert", start, err)
			return nil, err
		}
		recs[i] = rec
	}

	results := s.batch.Upsert(ctx, recs)
	ok, failed := dombatch.Tally(results)
	s.obs.observeBatch("property.batch_upsert", start, ok, failed)
	return fromBatchResults(results), nil
}

// DeleteBatch removes many properties and reports a per-item result.
func (s *PropertyService) DeleteBatch(ctx context.Context, ids []string) []BatchResult {
	start := time.Now()

	results := s.batch.Delete(ctx, ids)
	ok, failed := dombatch.Tally(results)
	s.obs.observeBatch("property.batch_delete", start, ok, failed)
	return fromBatchResults(results)
}
