package valuation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/propdex/internal/db"
	"github.com/kailas-cloud/propdex/internal/domain"
	"github.com/kailas-cloud/propdex/internal/domain/location"
	"github.com/kailas-cloud/propdex/internal/domain/property"
	domval "github.com/kailas-cloud/propdex/internal/domain/valuation"
)

// store is the consumer interface for valuation snapshots (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// propertySnapshot is the frozen property state behind a valuation. Optional
// attributes keep their pointer presence so a rebuild imputes exactly the
// same features.
type propertySnapshot struct {
	PropertyType string              `json:"property_type"`
	Bedrooms     int                 `json:"bedrooms"`
	Bathrooms    float64             `json:"bathrooms"`
	Sqft         float64             `json:"sqft"`
	YearBuilt    *int                `json:"year_built,omitempty"`
	LotSize      *float64            `json:"lot_size,omitempty"`
	Latitude     float64             `json:"latitude"`
	Longitude    float64             `json:"longitude"`
	Attributes   location.Attributes `json:"attributes"`
}

// snapshotFromRecord freezes the property state relevant to valuation.
func snapshotFromRecord(rec property.Record) propertySnapshot {
	snap := propertySnapshot{
		PropertyType: string(rec.PropertyType()),
		Bedrooms:     rec.Beds(),
		Bathrooms:    rec.Baths(),
		Sqft:         rec.Sqft(),
		Latitude:     rec.Location().Latitude(),
		Longitude:    rec.Location().Longitude(),
		Attributes:   rec.Location().Attrs(),
	}
	if yb, ok := rec.YearBuilt(); ok {
		snap.YearBuilt = &yb
	}
	if ls, ok := rec.LotSize(); ok {
		snap.LotSize = &ls
	}
	return snap
}

// toRecord rebuilds a domain Record from the frozen state.
func (s propertySnapshot) toRecord(id string) property.Record {
	loc := location.Reconstruct(s.Latitude, s.Longitude, "", "", "", s.Attributes)
	return property.Reconstruct(
		id, property.Type(s.PropertyType),
		s.Bedrooms, s.Bathrooms, s.Sqft,
		s.YearBuilt, s.LotSize, loc,
	)
}

// valuationDoc is the persisted JSON shape.
type valuationDoc struct {
	PropertyID   string           `json:"property_id"`
	Value        float64          `json:"predicted_value"`
	Uncertainty  float64          `json:"uncertainty"`
	PricePerSqft float64          `json:"price_per_sqft"`
	Confidence   float64          `json:"confidence"`
	ModelVersion string           `json:"model_version"`
	ValuedAt     int64            `json:"valued_at"`
	Property     propertySnapshot `json:"property"`
}

// Repo persists valuation results keyed by (property, model version) with a
// bounded lifetime.
type Repo struct {
	store store
	ttl   time.Duration
}

// New creates a valuation repository. ttl bounds how long snapshots stay
// explainable.
func New(s store, ttl time.Duration) *Repo {
	return &Repo{store: s, ttl: ttl}
}

// Save stores the result and the property state it was computed from under
// propdex:valuation:{propertyID}:{modelVersion}.
func (r *Repo) Save(ctx context.Context, res domval.Result, rec property.Record) error {
	key := valuationKey(res.PropertyID(), res.ModelVersion())

	doc := valuationDoc{
		PropertyID:   res.PropertyID(),
		Value:        res.Value(),
		Uncertainty:  res.Uncertainty(),
		PricePerSqft: res.PricePerSqft(),
		Confidence:   res.Confidence(),
		ModelVersion: res.ModelVersion(),
		ValuedAt:     res.ValuedAt(),
		Property:     snapshotFromRecord(rec),
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal valuation %s: %w", key, err)
	}

	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return fmt.Errorf("json.set %s: %w", key, err)
	}
	if r.ttl > 0 {
		if err := r.store.Expire(ctx, key, r.ttl, false); err != nil {
			return fmt.Errorf("expire %s: %w", key, err)
		}
	}
	return nil
}

// Get loads the result and frozen property state for a (property, model
// version) pair.
func (r *Repo) Get(ctx context.Context, propertyID, modelVersion string) (domval.Result, property.Record, error) {
	key := valuationKey(propertyID, modelVersion)

	raw, err := r.store.JSONGet(ctx, key, "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domval.Result{}, property.Record{}, domain.ErrNotFound
		}
		return domval.Result{}, property.Record{}, fmt.Errorf("json.get %s: %w", key, err)
	}

	var docs []valuationDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		var doc valuationDoc
		if err2 := json.Unmarshal(raw, &doc); err2 != nil {
			return domval.Result{}, property.Record{}, fmt.Errorf("unmarshal valuation %s: %w", key, err)
		}
		docs = []valuationDoc{doc}
	}
	if len(docs) == 0 {
		return domval.Result{}, property.Record{}, domain.ErrNotFound
	}

	doc := docs[0]
	res := domval.Reconstruct(
		doc.PropertyID, doc.Value, doc.Uncertainty, doc.PricePerSqft,
		doc.Confidence, doc.ModelVersion, doc.ValuedAt,
	)
	return res, doc.Property.toRecord(doc.PropertyID), nil
}

func valuationKey(propertyID, modelVersion string) string {
	return fmt.Sprintf("%svaluation:%s:%s", domain.KeyPrefix, propertyID, modelVersion)
}
