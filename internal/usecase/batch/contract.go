package batch

import (
	"context"

	"github.com/kailas-cloud/propdex/internal/domain/property"
)

// Catalog is the storage contract for bulk property writes.
type Catalog interface {
	UpsertBulk(ctx context.Context, recs []property.Record, features [][]float64) error
	Delete(ctx context.Context, id string) error
}
