package interaction

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/propdex/internal/domain"
	dominter "github.com/kailas-cloud/propdex/internal/domain/interaction"
)

// store is the consumer interface for interaction aggregates (ISP).
type store interface {
	HIncrByFloat(ctx context.Context, key, field string, delta float64) (float64, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
}

// Repo accumulates engagement weight per (property, user) hash field.
type Repo struct {
	store store
}

// New creates an interaction repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Record adds the event's weight to the property's engagement profile.
func (r *Repo) Record(ctx context.Context, ev dominter.Event) error {
	key := interactionKey(ev.PropertyID())
	if _, err := r.store.HIncrByFloat(ctx, key, ev.UserID(), ev.Weight()); err != nil {
		return fmt.Errorf("hincrbyfloat %s: %w", key, err)
	}
	return nil
}

// Profile returns a property's engagement profile. Missing keys yield an
// empty profile, never an error.
func (r *Repo) Profile(ctx context.Context, propertyID string) (dominter.Profile, error) {
	fields, err := r.store.HGetAll(ctx, interactionKey(propertyID))
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", interactionKey(propertyID), err)
	}
	return parseProfile(fields), nil
}

// Profiles returns engagement profiles for several properties in one
// pipelined round trip, in input order.
func (r *Repo) Profiles(ctx context.Context, propertyIDs []string) ([]dominter.Profile, error) {
	if len(propertyIDs) == 0 {
		return nil, nil
	}

	keys := make([]string, len(propertyIDs))
	for i, id := range propertyIDs {
		keys[i] = interactionKey(id)
	}

	results, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi: %w", err)
	}

	profiles := make([]dominter.Profile, len(propertyIDs))
	for i := range profiles {
		if i < len(results) {
			profiles[i] = parseProfile(results[i])
		} else {
			profiles[i] = dominter.Profile{}
		}
	}
	return profiles, nil
}

func parseProfile(fields map[string]string) dominter.Profile {
	profile := make(dominter.Profile, len(fields))
	for user, raw := range fields {
		w, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		profile[user] = w
	}
	return profile
}

func interactionKey(propertyID string) string {
	return domain.KeyPrefix + "interactions:" + propertyID
}
