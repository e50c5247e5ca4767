package valuation

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/propdex/internal/db"
	"github.com/kailas-cloud/propdex/internal/domain"
	"github.com/kailas-cloud/propdex/internal/domain/location"
	"github.com/kailas-cloud/propdex/internal/domain/property"
	domval "github.com/kailas-cloud/propdex/internal/domain/valuation"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	jsonSetFn func(ctx context.Context, key, path string, data []byte) error
	jsonGetFn func(ctx context.Context, key string, paths ...string) ([]byte, error)
	expireFn  func(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

func (m *mockStore) JSONSet(ctx context.Context, key, path string, data []byte) error {
	if m.jsonSetFn != nil {
		return m.jsonSetFn(ctx, key, path, data)
	}
	return nil
}

func (m *mockStore) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	if m.jsonGetFn != nil {
		return m.jsonGetFn(ctx, key, paths...)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error {
	if m.expireFn != nil {
		return m.expireFn(ctx, key, ttl, nx)
	}
	return nil
}

func testResult() domval.Result {
	return domval.Reconstruct("prop-1", 310000, 24000, 206.67, 0.82, "2.0.0", 1724500000000)
}

func testRecord() property.Record {
	yearBuilt := 1995
	school := 8.5
	loc := location.Reconstruct(41.88, -87.63, "", "Chicago", "IL", location.Attributes{
		SchoolRating: &school,
	})
	return property.Reconstruct("prop-1", property.TypeResidential, 3, 2, 1500, &yearBuilt, nil, loc)
}

func TestSave_KeyAndTTL(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms, 24*time.Hour)
	ctx := context.Background()

	var setKey string
	ms.jsonSetFn = func(_ context.Context, key, path string, data []byte) error {
		setKey = key
		if path != "$" {
			t.Errorf("unexpected path: %s", path)
		}
		var doc valuationDoc
		if err := json.Unmarshal(data, &doc); err != nil {
			t.Fatalf("stored doc is not valid JSON: %v", err)
		}
		if doc.Value != 310000 || doc.ModelVersion != "2.0.0" {
			t.Errorf("unexpected doc: %+v", doc)
		}
		if doc.Property.Attributes.SchoolRating == nil {
			t.Error("attribute presence lost in snapshot")
		}
		return nil
	}
	var expired bool
	ms.expireFn = func(_ context.Context, key string, ttl time.Duration, nx bool) error {
		expired = true
		if key != setKey {
			t.Errorf("expire key %s != set key %s", key, setKey)
		}
		if ttl != 24*time.Hour {
			t.Errorf("unexpected ttl: %v", ttl)
		}
		if nx {
			t.Error("snapshot TTL must refresh on rewrite")
		}
		return nil
	}

	if err := repo.Save(ctx, testResult(), testRecord()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if setKey != "propdex:valuation:prop-1:2.0.0" {
		t.Fatalf("unexpected key: %s", setKey)
	}
	if !expired {
		t.Fatal("expected EXPIRE after JSON.SET")
	}
}

func TestSave_NoTTLWhenZero(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms, 0)
	ctx := context.Background()

	ms.expireFn = func(_ context.Context, _ string, _ time.Duration, _ bool) error {
		t.Fatal("expire should not be called with zero ttl")
		return nil
	}

	if err := repo.Save(ctx, testResult(), testRecord()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGet_RoundTrip(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms, time.Hour)
	ctx := context.Background()

	var stored []byte
	ms.jsonSetFn = func(_ context.Context, _, _ string, data []byte) error {
		stored = data
		return nil
	}
	if err := repo.Save(ctx, testResult(), testRecord()); err != nil {
		t.Fatalf("save: %v", err)
	}

	ms.jsonGetFn = func(_ context.Context, key string, _ ...string) ([]byte, error) {
		if key != "propdex:valuation:prop-1:2.0.0" {
			t.Errorf("unexpected key: %s", key)
		}
		// JSON.GET $ wraps the document in an array.
		return append(append([]byte("["), stored...), ']'), nil
	}

	res, rec, err := repo.Get(ctx, "prop-1", "2.0.0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Value() != 310000 {
		t.Fatalf("expected value 310000, got %f", res.Value())
	}
	if res.ValuedAt() != 1724500000000 {
		t.Fatalf("timestamp lost: %d", res.ValuedAt())
	}

	if rec.ID() != "prop-1" {
		t.Fatalf("property id lost: %s", rec.ID())
	}
	if rec.Sqft() != 1500 {
		t.Fatalf("property snapshot lost sqft: %f", rec.Sqft())
	}
	if yb, ok := rec.YearBuilt(); !ok || yb != 1995 {
		t.Fatalf("year built lost: %d (%v)", yb, ok)
	}
	if attrs := rec.Location().Attrs(); attrs.SchoolRating == nil || *attrs.SchoolRating != 8.5 {
		t.Fatalf("attributes lost: %+v", attrs)
	}
	if attrs := rec.Location().Attrs(); attrs.CrimeRate != nil {
		t.Fatal("absent attribute became present")
	}
}

func TestGet_NotFound(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms, time.Hour)
	ctx := context.Background()

	_, _, err := repo.Get(ctx, "prop-9", "2.0.0")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
