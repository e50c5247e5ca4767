package valuation

import (
	"context"

	"github.com/kailas-cloud/propdex/internal/domain/property"
	domval "github.com/kailas-cloud/propdex/internal/domain/valuation"
	"github.com/kailas-cloud/propdex/internal/model"
)

// Models resolves the active valuation artifact.
type Models interface {
	Active() (model.Artifact, error)
}

// SnapshotStore persists valuation results together with the property state
// they were computed from, so explanations can rebuild the exact inputs.
type SnapshotStore interface {
	Save(ctx context.Context, res domval.Result, rec property.Record) error
}
