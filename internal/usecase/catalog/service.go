// Package catalog manages the property records collaborators publish for
// analysis and recommendation retrieval.
package catalog

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/propdex/internal/domain/feature"
	"github.com/kailas-cloud/propdex/internal/domain/property"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Service handles catalog CRUD operations.
type Service struct {
	repo    Repository
	builder *feature.Builder
}

// New creates a catalog service.
func New(repo Repository, builder *feature.Builder) *Service {
	return &Service{repo: repo, builder: builder}
}

// EnsureIndexes creates the retrieval indexes if absent. Safe to call on
// every startup.
func (s *Service) EnsureIndexes(ctx context.Context) error {
	return s.repo.EnsureIndexes(ctx)
}

// Upsert stores the record together with its feature projection for the
// retrieval indexes. Returns true when the property was created rather than
// replaced.
func (s *Service) Upsert(ctx context.Context, rec property.Record) (bool, error) {
	vec, err := s.builder.Build(rec)
	if err != nil {
		return false, fmt.Errorf("build features: %w", err)
	}

	created, err := s.repo.Upsert(ctx, rec, vec.Values())
	if err != nil {
		return false, fmt.Errorf("upsert property: %w", err)
	}
	return created, nil
}

// Get retrieves a property record by id.
func (s *Service) Get(ctx context.Context, id string) (property.Record, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return property.Record{}, fmt.Errorf("get property: %w", err)
	}
	return rec, nil
}

// Delete removes a property and its index projection.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete property: %w", err)
	}
	return nil
}

// List returns a page of records. limit is clamped to [1, 100] with the
// default page size of 20; nextCursor is empty on the last page.
func (s *Service) List(ctx context.Context, cursor string, limit int) ([]property.Record, string, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	records, next, err := s.repo.List(ctx, cursor, limit)
	if err != nil {
		return nil, "", fmt.Errorf("list properties: %w", err)
	}
	return records, next, nil
}

// Count returns the number of catalogued properties.
func (s *Service) Count(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count properties: %w", err)
	}
	return n, nil
}
