package interaction

import (
	"context"
	"errors"
	"testing"
	"time"

	dominter "github.com/kailas-cloud/propdex/internal/domain/interaction"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hincrFn   func(ctx context.Context, key, field string, delta float64) (float64, error)
	hgetAllFn func(ctx context.Context, key string) (map[string]string, error)
	hmultiFn  func(ctx context.Context, keys []string) ([]map[string]string, error)
}

func (m *mockStore) HIncrByFloat(ctx context.Context, key, field string, delta float64) (float64, error) {
	if m.hincrFn != nil {
		return m.hincrFn(ctx, key, field, delta)
	}
	return delta, nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return map[string]string{}, nil
}

func (m *mockStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if m.hmultiFn != nil {
		return m.hmultiFn(ctx, keys)
	}
	return make([]map[string]string, len(keys)), nil
}

func testEvent(t *testing.T, kind dominter.Kind) dominter.Event {
	t.Helper()
	ev, err := dominter.NewEvent("user-7", "prop-1", kind, time.Now())
	if err != nil {
		t.Fatalf("event fixture: %v", err)
	}
	return ev
}

func TestRecord_IncrementsByKindWeight(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms)
	ctx := context.Background()

	var gotKey, gotField string
	var gotDelta float64
	ms.hincrFn = func(_ context.Context, key, field string, delta float64) (float64, error) {
		gotKey, gotField, gotDelta = key, field, delta
		return delta, nil
	}

	if err := repo.Record(ctx, testEvent(t, dominter.KindSave)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotKey != "propdex:interactions:prop-1" {
		t.Errorf("unexpected key: %s", gotKey)
	}
	if gotField != "user-7" {
		t.Errorf("unexpected field: %s", gotField)
	}
	if gotDelta != 3 {
		t.Errorf("expected save weight 3, got %v", gotDelta)
	}
}

func TestRecord_StoreError(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms)
	ctx := context.Background()

	ms.hincrFn = func(_ context.Context, _, _ string, _ float64) (float64, error) {
		return 0, errors.New("LOADING")
	}

	if err := repo.Record(ctx, testEvent(t, dominter.KindView)); err == nil {
		t.Fatal("expected error from store")
	}
}

func TestProfile_ParsesWeights(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms)
	ctx := context.Background()

	ms.hgetAllFn = func(_ context.Context, key string) (map[string]string, error) {
		if key != "propdex:interactions:prop-1" {
			t.Errorf("unexpected key: %s", key)
		}
		return map[string]string{"user-1": "4", "user-2": "2.5", "user-3": "junk"}, nil
	}

	profile, err := repo.Profile(ctx, "prop-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(profile) != 2 {
		t.Fatalf("expected 2 parsed users, got %d", len(profile))
	}
	if profile["user-1"] != 4 || profile["user-2"] != 2.5 {
		t.Fatalf("unexpected profile: %v", profile)
	}
	if profile.Total() != 6.5 {
		t.Fatalf("expected total 6.5, got %v", profile.Total())
	}
}

func TestProfile_MissingKeyIsEmpty(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms)
	ctx := context.Background()

	profile, err := repo.Profile(ctx, "prop-unknown")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(profile) != 0 {
		t.Fatalf("expected empty profile, got %v", profile)
	}
}

func TestProfiles_PreservesOrder(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms)
	ctx := context.Background()

	ms.hmultiFn = func(_ context.Context, keys []string) ([]map[string]string, error) {
		if len(keys) != 2 {
			t.Fatalf("expected 2 keys, got %v", keys)
		}
		if keys[0] != "propdex:interactions:a" || keys[1] != "propdex:interactions:b" {
			t.Errorf("unexpected keys: %v", keys)
		}
		return []map[string]string{
			{"u1": "1"},
			{"u1": "5", "u2": "3"},
		}, nil
	}

	profiles, err := repo.Profiles(ctx, []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(profiles))
	}
	if profiles[0].Total() != 1 || profiles[1].Total() != 8 {
		t.Fatalf("profiles out of order: %v", profiles)
	}
}

func TestProfiles_EmptyInput(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms)

	profiles, err := repo.Profiles(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profiles != nil {
		t.Fatalf("expected nil for empty input, got %v", profiles)
	}
}
