package interaction

import (
	"context"

	dominter "github.com/kailas-cloud/propdex/internal/domain/interaction"
)

// Recorder persists interaction events into the per-property engagement
// profiles.
type Recorder interface {
	Record(ctx context.Context, ev dominter.Event) error
}
