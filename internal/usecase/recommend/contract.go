package recommend

import (
	"context"

	"github.com/kailas-cloud/propdex/internal/db/filter"
	dominter "github.com/kailas-cloud/propdex/internal/domain/interaction"
	"github.com/kailas-cloud/propdex/internal/domain/property"
	domrec "github.com/kailas-cloud/propdex/internal/domain/recommend"
)

// Catalog defines the retrieval contract: seed lookup plus the two
// index-backed candidate queries.
type Catalog interface {
	Get(ctx context.Context, id string) (property.Record, error)

	SimilarByVector(
		ctx context.Context, features []float64, k int,
		filters filter.Expression, excludeID string,
	) ([]domrec.Candidate, error)

	Near(
		ctx context.Context, lat, lon, radiusKM float64, k int,
		filters filter.Expression,
	) ([]domrec.Candidate, error)
}

// Interactions reads accumulated engagement profiles for the collaborative
// signal.
type Interactions interface {
	Profile(ctx context.Context, propertyID string) (dominter.Profile, error)
	Profiles(ctx context.Context, propertyIDs []string) ([]dominter.Profile, error)
}
