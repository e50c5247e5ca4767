package catalog

import (
	"context"

	"github.com/kailas-cloud/propdex/internal/domain/property"
)

// Repository defines the storage contract for the property catalog.
type Repository interface {
	EnsureIndexes(ctx context.Context) error
	Upsert(ctx context.Context, rec property.Record, features []float64) (bool, error)
	Get(ctx context.Context, id string) (property.Record, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, cursor string, limit int) ([]property.Record, string, error)
	Count(ctx context.Context) (int, error)
}
