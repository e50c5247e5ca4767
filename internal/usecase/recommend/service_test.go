package recommend

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/kailas-cloud/propdex/internal/db/filter"
	"github.com/kailas-cloud/propdex/internal/domain"
	"github.com/kailas-cloud/propdex/internal/domain/feature"
	dominter "github.com/kailas-cloud/propdex/internal/domain/interaction"
	"github.com/kailas-cloud/propdex/internal/domain/location"
	"github.com/kailas-cloud/propdex/internal/domain/property"
	domrec "github.com/kailas-cloud/propdex/internal/domain/recommend"
)

func testRecord(t *testing.T, id string, beds int, baths, sqft float64, yearBuilt int) property.Record {
	t.Helper()
	loc, err := location.New(41.88, -87.63, "", "Chicago", "IL", location.Attributes{})
	if err != nil {
		t.Fatalf("location.New: %v", err)
	}
	var yb *int
	if yearBuilt > 0 {
		yb = &yearBuilt
	}
	rec, err := property.New(id, property.TypeResidential, beds, baths, sqft, yb, nil, loc)
	if err != nil {
		t.Fatalf("property.New: %v", err)
	}
	return rec
}

func candidate(t *testing.T, id string, beds int, baths, sqft float64, yearBuilt int) domrec.Candidate {
	t.Helper()
	return domrec.Candidate{Record: testRecord(t, id, beds, baths, sqft, yearBuilt)}
}

func byProperty(t *testing.T, strategy domrec.Strategy, maxResults int, filters domrec.Filters) domrec.Request {
	t.Helper()
	req, err := domrec.NewByProperty("prop-seed", strategy, maxResults, filters)
	if err != nil {
		t.Fatalf("NewByProperty: %v", err)
	}
	return req
}

func byLocation(t *testing.T, radiusKM float64, filters domrec.Filters) domrec.Request {
	t.Helper()
	req, err := domrec.NewByLocation(41.88, -87.63, radiusKM, domrec.StrategyContent, 10, filters)
	if err != nil {
		t.Fatalf("NewByLocation: %v", err)
	}
	return req
}

// --- Mocks ---

type mockCatalog struct {
	seed       property.Record
	getErr     error
	similar    []domrec.Candidate
	similarErr error
	near       []domrec.Candidate
	nearErr    error

	gotK       int
	gotExclude string
	gotFilters filter.Expression
	gotRadius  float64
}

func (m *mockCatalog) Get(_ context.Context, _ string) (property.Record, error) {
	if m.getErr != nil {
		return property.Record{}, m.getErr
	}
	return m.seed, nil
}

func (m *mockCatalog) SimilarByVector(
	_ context.Context, _ []float64, k int, filters filter.Expression, excludeID string,
) ([]domrec.Candidate, error) {
	m.gotK = k
	m.gotFilters = filters
	m.gotExclude = excludeID
	return m.similar, m.similarErr
}

func (m *mockCatalog) Near(
	_ context.Context, _, _, radiusKM float64, k int, filters filter.Expression,
) ([]domrec.Candidate, error) {
	m.gotK = k
	m.gotRadius = radiusKM
	m.gotFilters = filters
	return m.near, m.nearErr
}

type mockInteractions struct {
	seedProfile dominter.Profile
	profileErr  error
	profiles    map[string]dominter.Profile
	profilesErr error

	gotIDs []string
}

func (m *mockInteractions) Profile(_ context.Context, _ string) (dominter.Profile, error) {
	if m.profileErr != nil {
		return nil, m.profileErr
	}
	return m.seedProfile, nil
}

func (m *mockInteractions) Profiles(_ context.Context, ids []string) ([]dominter.Profile, error) {
	if m.profilesErr != nil {
		return nil, m.profilesErr
	}
	m.gotIDs = ids
	out := make([]dominter.Profile, len(ids))
	for i, id := range ids {
		out[i] = m.profiles[id]
	}
	return out, nil
}

func newTestService(catalog *mockCatalog, interactions Interactions) *Service {
	return New(catalog, interactions, feature.NewBuilder(feature.DefaultParams()))
}

func TestRecommend_ByProperty_ContentRanking(t *testing.T) {
	catalog := &mockCatalog{
		seed: testRecord(t, "prop-seed", 3, 2, 1500, 2000),
		similar: []domrec.Candidate{
			candidate(t, "prop-b", 4, 2.5, 1800, 1990),
			candidate(t, "prop-a", 3, 2, 1500, 2000),
			candidate(t, "prop-c", 6, 4, 4000, 1950),
		},
	}
	svc := newTestService(catalog, nil)

	recs, err := svc.Recommend(context.Background(), byProperty(t, domrec.StrategyContent, 10, domrec.Filters{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// prop-c sits far below the content floor and must not surface.
	if len(recs) != 2 {
		t.Fatalf("got %d recommendations, want 2", len(recs))
	}
	if recs[0].PropertyID() != "prop-a" || recs[1].PropertyID() != "prop-b" {
		t.Errorf("order = [%s %s], want [prop-a prop-b]", recs[0].PropertyID(), recs[1].PropertyID())
	}
	if recs[0].Rank() != 1 || recs[1].Rank() != 2 {
		t.Errorf("ranks = [%d %d], want [1 2]", recs[0].Rank(), recs[1].Rank())
	}
	if recs[0].Similarity() != 1.0 {
		t.Errorf("identical candidate similarity = %v, want 1.0", recs[0].Similarity())
	}
	// Deltas 1/5 beds, 0.5/4 baths, 300/3000 sqft, 10/50 years.
	if math.Abs(recs[1].Similarity()-0.84375) > 1e-9 {
		t.Errorf("prop-b similarity = %v, want 0.84375", recs[1].Similarity())
	}
	if math.Abs(recs[0].Confidence()-0.8) > 1e-9 {
		t.Errorf("confidence = %v, want similarity*0.8", recs[0].Confidence())
	}
	if recs[0].Reason() != "Similar property characteristics (similarity: 1.00)" {
		t.Errorf("reason = %q", recs[0].Reason())
	}

	if catalog.gotK != 30 {
		t.Errorf("retrieval k = %d, want 3x max results", catalog.gotK)
	}
	if catalog.gotExclude != "prop-seed" {
		t.Errorf("excludeID = %q, want seed id", catalog.gotExclude)
	}
}

func TestRecommend_ByProperty_HybridBlendsCollaborative(t *testing.T) {
	catalog := &mockCatalog{
		seed: testRecord(t, "prop-seed", 3, 2, 1500, 2000),
		similar: []domrec.Candidate{
			candidate(t, "prop-a", 3, 2, 1500, 2000),
			candidate(t, "prop-b", 3, 2, 1500, 2000),
			candidate(t, "prop-x", 6, 4, 4000, 1950),
		},
	}
	interactions := &mockInteractions{
		seedProfile: dominter.Profile{"u1": 5, "u2": 3},
		profiles: map[string]dominter.Profile{
			"prop-b": {"u1": 2, "u3": 9},
		},
	}
	svc := newTestService(catalog, interactions)

	recs, err := svc.Recommend(context.Background(), byProperty(t, domrec.StrategyHybrid, 10, domrec.Filters{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d recommendations, want 2", len(recs))
	}

	// Equal content: the collaborative signal must break the tie ahead of id
	// order. prop-b normalizes to 1, prop-a to 0.
	if recs[0].PropertyID() != "prop-b" {
		t.Fatalf("top = %s, want prop-b (collaborative lift)", recs[0].PropertyID())
	}
	if recs[0].Similarity() != 1.0 {
		t.Errorf("prop-b similarity = %v, want 1.0", recs[0].Similarity())
	}
	if math.Abs(recs[1].Similarity()-0.7) > 1e-9 {
		t.Errorf("prop-a similarity = %v, want 0.7 (content weight only)", recs[1].Similarity())
	}

	// Profiles are fetched only for candidates that survived the floor.
	if len(interactions.gotIDs) != 2 || interactions.gotIDs[0] != "prop-a" || interactions.gotIDs[1] != "prop-b" {
		t.Errorf("profile ids = %v, want [prop-a prop-b]", interactions.gotIDs)
	}
}

func TestRecommend_ByProperty_CollabDegradesGracefully(t *testing.T) {
	catalog := &mockCatalog{
		seed: testRecord(t, "prop-seed", 3, 2, 1500, 2000),
		similar: []domrec.Candidate{
			candidate(t, "prop-a", 3, 2, 1500, 2000),
			candidate(t, "prop-b", 4, 2.5, 1800, 1990),
		},
	}
	interactions := &mockInteractions{profileErr: errors.New("valkey down")}
	svc := newTestService(catalog, interactions)

	recs, err := svc.Recommend(context.Background(), byProperty(t, domrec.StrategyHybrid, 10, domrec.Filters{}))
	if err != nil {
		t.Fatalf("collaborative failure must not fail the request: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d recommendations, want 2", len(recs))
	}
	if recs[0].PropertyID() != "prop-a" || recs[0].Similarity() != 1.0 {
		t.Errorf("top = %s (%v), want content-only prop-a at 1.0",
			recs[0].PropertyID(), recs[0].Similarity())
	}
}

func TestRecommend_ByProperty_FiltersExcludeBeforeRanking(t *testing.T) {
	minBeds := 3
	maxAge := 20
	catalog := &mockCatalog{
		seed: testRecord(t, "prop-seed", 3, 2, 1500, 2010),
		similar: []domrec.Candidate{
			candidate(t, "prop-few-beds", 2, 2, 1500, 2010),
			candidate(t, "prop-too-old", 3, 2, 1500, 1990),
			candidate(t, "prop-no-year", 3, 2, 1500, 0),
			candidate(t, "prop-ok", 3, 2, 1500, 2012),
		},
	}
	svc := newTestService(catalog, nil)

	filters := domrec.Filters{MinBeds: &minBeds, MaxAgeYears: &maxAge}
	recs, err := svc.Recommend(context.Background(), byProperty(t, domrec.StrategyContent, 10, filters))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// prop-few-beds fails min beds, prop-too-old is 35 years old, and
	// prop-no-year imputes to 25 years, all over the 20 year cap.
	if len(recs) != 1 || recs[0].PropertyID() != "prop-ok" {
		t.Fatalf("recs = %v, want only prop-ok", ids(recs))
	}

	// Only the statically projected fields reach the index prefilter.
	must := catalog.gotFilters.Must()
	if len(must) != 1 {
		t.Fatalf("prefilter conditions = %d, want 1", len(must))
	}
	if must[0].Key() != "beds" || !must[0].IsRange() || *must[0].Range().GTE() != 3 {
		t.Errorf("prefilter = %+v, want beds >= 3", must[0])
	}
}

func TestRecommend_ByProperty_TruncatesToMaxResults(t *testing.T) {
	catalog := &mockCatalog{
		seed: testRecord(t, "prop-seed", 3, 2, 1500, 2000),
		similar: []domrec.Candidate{
			candidate(t, "prop-c", 3, 2, 1500, 2000),
			candidate(t, "prop-a", 3, 2, 1500, 2000),
			candidate(t, "prop-b", 3, 2, 1500, 2000),
		},
	}
	svc := newTestService(catalog, nil)

	recs, err := svc.Recommend(context.Background(), byProperty(t, domrec.StrategyContent, 2, domrec.Filters{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if catalog.gotK != 6 {
		t.Errorf("retrieval k = %d, want 6", catalog.gotK)
	}
	// Pure ties resolve by id ascending.
	if len(recs) != 2 || recs[0].PropertyID() != "prop-a" || recs[1].PropertyID() != "prop-b" {
		t.Errorf("recs = %v, want [prop-a prop-b]", ids(recs))
	}
}

func TestRecommendForRecord_SkipsCatalogLookup(t *testing.T) {
	catalog := &mockCatalog{
		getErr: domain.ErrNotFound, // record is not catalogued
		similar: []domrec.Candidate{
			candidate(t, "prop-a", 3, 2, 1500, 2000),
		},
	}
	svc := newTestService(catalog, nil)

	rec := testRecord(t, "prop-adhoc", 3, 2, 1500, 2000)
	recs, err := svc.RecommendForRecord(context.Background(), rec, domrec.StrategyContent, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 || recs[0].PropertyID() != "prop-a" {
		t.Fatalf("recs = %v, want [prop-a]", ids(recs))
	}
	if catalog.gotExclude != "prop-adhoc" {
		t.Errorf("excludeID = %q, want the ad hoc record's id", catalog.gotExclude)
	}
	if catalog.gotK != 15 {
		t.Errorf("retrieval k = %d, want 15", catalog.gotK)
	}
}

func TestRecommend_ByProperty_SeedNotFound(t *testing.T) {
	catalog := &mockCatalog{getErr: domain.ErrNotFound}
	svc := newTestService(catalog, nil)

	_, err := svc.Recommend(context.Background(), byProperty(t, domrec.StrategyHybrid, 10, domrec.Filters{}))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRecommend_ByProperty_EmptyBelowFloor(t *testing.T) {
	catalog := &mockCatalog{
		seed: testRecord(t, "prop-seed", 3, 2, 1500, 2000),
		similar: []domrec.Candidate{
			candidate(t, "prop-c", 6, 4, 4000, 1950),
		},
	}
	svc := newTestService(catalog, nil)

	recs, err := svc.Recommend(context.Background(), byProperty(t, domrec.StrategyContent, 10, domrec.Filters{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("got %d recommendations, want none", len(recs))
	}
}

func TestRecommend_ByLocation_DistanceRanking(t *testing.T) {
	catalog := &mockCatalog{
		near: []domrec.Candidate{
			{Record: testRecord(t, "prop-far", 3, 2, 1500, 2000), DistanceMeters: 8000},
			{Record: testRecord(t, "prop-near", 3, 2, 1500, 2000), DistanceMeters: 2000},
			{Record: testRecord(t, "prop-edge", 3, 2, 1500, 2000), DistanceMeters: 9990},
		},
	}
	svc := newTestService(catalog, nil)

	recs, err := svc.Recommend(context.Background(), byLocation(t, 10, domrec.Filters{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d recommendations, want 3", len(recs))
	}
	if recs[0].PropertyID() != "prop-near" || recs[1].PropertyID() != "prop-far" || recs[2].PropertyID() != "prop-edge" {
		t.Fatalf("order = %v, want nearest first", ids(recs))
	}
	if math.Abs(recs[0].Similarity()-0.8) > 1e-9 {
		t.Errorf("2km/10km similarity = %v, want 0.8", recs[0].Similarity())
	}
	if recs[2].Similarity() < 0.1 {
		t.Errorf("similarity %v fell below the floor", recs[2].Similarity())
	}
	if recs[0].Confidence() != 0.7 {
		t.Errorf("confidence = %v, want 0.7", recs[0].Confidence())
	}
	if recs[0].Reason() != "Located 2.0km from preferred location" {
		t.Errorf("reason = %q", recs[0].Reason())
	}
	if catalog.gotRadius != 10 {
		t.Errorf("radius passed = %v, want 10", catalog.gotRadius)
	}
}

func TestRecommend_ByLocation_ZeroRadiusExactPoint(t *testing.T) {
	catalog := &mockCatalog{
		near: []domrec.Candidate{
			{Record: testRecord(t, "prop-here", 3, 2, 1500, 2000), DistanceMeters: 0},
		},
	}
	svc := newTestService(catalog, nil)

	recs, err := svc.Recommend(context.Background(), byLocation(t, 0, domrec.Filters{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 || recs[0].Similarity() != 1.0 {
		t.Fatalf("recs = %v, want single exact-point match at similarity 1", ids(recs))
	}
}

func TestRecommend_ByLocation_RetrievalError(t *testing.T) {
	catalog := &mockCatalog{nearErr: errors.New("index missing")}
	svc := newTestService(catalog, nil)

	_, err := svc.Recommend(context.Background(), byLocation(t, 10, domrec.Filters{}))
	if err == nil {
		t.Fatal("expected error")
	}
}

func ids(recs []domrec.Recommendation) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.PropertyID()
	}
	return out
}

func TestContentSimilarity(t *testing.T) {
	params := feature.DefaultParams()
	seed := testRecord(t, "prop-seed", 3, 2, 1500, 2000)

	if sim := contentSimilarity(seed, testRecord(t, "prop-same", 3, 2, 1500, 2000), params); sim != 1.0 {
		t.Errorf("identical similarity = %v, want 1", sim)
	}
	// Deltas beyond every span clamp at zero.
	if sim := contentSimilarity(seed, testRecord(t, "prop-alien", 20, 18, 90000, 1800), params); sim != 0 {
		t.Errorf("extreme similarity = %v, want 0", sim)
	}
	// A missing build year imputes the default, here equal to the seed's.
	if sim := contentSimilarity(seed, testRecord(t, "prop-no-year", 3, 2, 1500, 0), params); sim != 1.0 {
		t.Errorf("imputed-year similarity = %v, want 1", sim)
	}
}

func TestCollabScores(t *testing.T) {
	profiles := []dominter.Profile{
		{"u1": 1},
		{"u1": 3, "u9": 50},
		{},
	}

	if got := collabScores(dominter.Profile{}, profiles); got != nil {
		t.Errorf("empty seed profile: got %v, want nil", got)
	}
	if got := collabScores(dominter.Profile{"u1": 5}, []dominter.Profile{{"u1": 2}, {"u1": 2}}); got != nil {
		t.Errorf("flat distribution: got %v, want nil", got)
	}

	got := collabScores(dominter.Profile{"u1": 5, "u2": 1}, profiles)
	if got == nil {
		t.Fatal("expected scores")
	}
	// Raw sums 1, 3, 0 normalize to 1/3, 1, 0. u9 never interacted with the
	// seed and must not count.
	want := []float64{1.0 / 3, 1, 0}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("score[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLocationSimilarity(t *testing.T) {
	if sim := locationSimilarity(0, 0); sim != 1 {
		t.Errorf("zero radius = %v, want 1", sim)
	}
	if sim := locationSimilarity(5000, 10); sim != 0.5 {
		t.Errorf("half radius = %v, want 0.5", sim)
	}
	if sim := locationSimilarity(9999, 10); sim < 0.1 {
		t.Errorf("edge = %v, want floored at 0.1", sim)
	}
	if sim := locationSimilarity(50000, 10); sim != 0.1 {
		t.Errorf("outside radius = %v, want floor 0.1", sim)
	}
}

func TestIndexFilters(t *testing.T) {
	minBeds, minBaths, minSqft, maxAge := 2, 1.5, 900.0, 30

	expr, err := indexFilters(domrec.Filters{})
	if err != nil {
		t.Fatalf("empty filters: %v", err)
	}
	if !expr.IsEmpty() {
		t.Error("empty filters must produce an empty expression")
	}

	expr, err = indexFilters(domrec.Filters{
		PropertyType: property.TypeCondo,
		MinBeds:      &minBeds,
		MinBaths:     &minBaths,
		MinSqft:      &minSqft,
		MaxAgeYears:  &maxAge,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	must := expr.Must()
	if len(must) != 4 {
		t.Fatalf("conditions = %d, want 4 (age stays in-process)", len(must))
	}
	if must[0].Key() != "property_type" || must[0].Match() != string(property.TypeCondo) {
		t.Errorf("first condition = %+v, want property_type match", must[0])
	}
	for i, want := range []struct {
		key   string
		bound float64
	}{{"beds", 2}, {"baths", 1.5}, {"sqft", 900}} {
		cond := must[i+1]
		if cond.Key() != want.key || !cond.IsRange() || cond.Range().GTE() == nil || *cond.Range().GTE() != want.bound {
			t.Errorf("condition %d = %+v, want %s >= %v", i+1, cond, want.key, want.bound)
		}
	}
}
