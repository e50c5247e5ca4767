package explain

import (
	"context"

	"github.com/kailas-cloud/propdex/internal/domain/property"
	domval "github.com/kailas-cloud/propdex/internal/domain/valuation"
	"github.com/kailas-cloud/propdex/internal/model"
)

// Models resolves artifacts by version so a prediction is always explained
// against the exact model that produced it.
type Models interface {
	ActiveVersion() string
	Get(version string) (model.Artifact, error)
}

// Valuations loads persisted valuation snapshots for the read-side
// explanation path.
type Valuations interface {
	Get(ctx context.Context, propertyID, modelVersion string) (domval.Result, property.Record, error)
}
