package model

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/kailas-cloud/propdex/internal/domain"
)

// Registry holds versioned artifacts and the active one. Rotation swaps the
// active artifact atomically; a request keeps using the artifact it resolved.
type Registry struct {
	mu        sync.RWMutex
	byVersion map[string]Artifact
	active    atomic.Pointer[activeRef]
}

type activeRef struct {
	artifact Artifact
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byVersion: make(map[string]Artifact)}
}

// Register adds or replaces an artifact under its version. It does not
// change the active artifact.
func (r *Registry) Register(a Artifact) error {
	if a == nil {
		return domain.NewValidation("artifact", "must not be nil")
	}
	if a.Version() == "" {
		return domain.NewValidation("model_version", "must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byVersion[a.Version()] = a
	return nil
}

// Rotate makes the registered version the active artifact.
func (r *Registry) Rotate(version string) error {
	r.mu.RLock()
	a, ok := r.byVersion[version]
	r.mu.RUnlock()
	if !ok {
		return domain.NewModelUnavailable(version)
	}
	r.active.Store(&activeRef{artifact: a})
	return nil
}

// Active returns the active artifact.
func (r *Registry) Active() (Artifact, error) {
	ref := r.active.Load()
	if ref == nil {
		return nil, domain.NewModelUnavailable("")
	}
	return ref.artifact, nil
}

// ActiveVersion returns the active artifact's version, or "" when none is
// active.
func (r *Registry) ActiveVersion() string {
	ref := r.active.Load()
	if ref == nil {
		return ""
	}
	return ref.artifact.Version()
}

// Get returns the artifact registered under version.
func (r *Registry) Get(version string) (Artifact, error) {
	r.mu.RLock()
	a, ok := r.byVersion[version]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.NewModelUnavailable(version)
	}
	return a, nil
}

// Versions returns the registered versions, sorted.
func (r *Registry) Versions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byVersion))
	for v := range r.byVersion {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
