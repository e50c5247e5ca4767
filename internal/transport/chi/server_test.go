package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/propdex/internal/db/filter"
	"github.com/kailas-cloud/propdex/internal/domain"
	"github.com/kailas-cloud/propdex/internal/domain/feature"
	dominter "github.com/kailas-cloud/propdex/internal/domain/interaction"
	"github.com/kailas-cloud/propdex/internal/domain/location"
	"github.com/kailas-cloud/propdex/internal/domain/property"
	domrec "github.com/kailas-cloud/propdex/internal/domain/recommend"
	"github.com/kailas-cloud/propdex/internal/domain/score"
	domval "github.com/kailas-cloud/propdex/internal/domain/valuation"
	"github.com/kailas-cloud/propdex/internal/model"
	analysisuc "github.com/kailas-cloud/propdex/internal/usecase/analysis"
	cataloguc "github.com/kailas-cloud/propdex/internal/usecase/catalog"
	explainuc "github.com/kailas-cloud/propdex/internal/usecase/explain"
	healthuc "github.com/kailas-cloud/propdex/internal/usecase/health"
	interactionuc "github.com/kailas-cloud/propdex/internal/usecase/interaction"
	recommenduc "github.com/kailas-cloud/propdex/internal/usecase/recommend"
	scoringuc "github.com/kailas-cloud/propdex/internal/usecase/scoring"
	usageuc "github.com/kailas-cloud/propdex/internal/usecase/usage"
	valuationuc "github.com/kailas-cloud/propdex/internal/usecase/valuation"
)

// --- Mocks ---

// memCatalog is the in-memory stand-in for the Valkey-backed repository. It
// serves both the catalog CRUD contract and the recommender's retrieval
// contract, as the production repository does.
type memCatalog struct {
	mu       sync.Mutex
	records  map[string]property.Record
	features map[string][]float64
	order    []string
}

func newMemCatalog() *memCatalog {
	return &memCatalog{
		records:  make(map[string]property.Record),
		features: make(map[string][]float64),
	}
}

func (m *memCatalog) EnsureIndexes(context.Context) error { return nil }

func (m *memCatalog) Upsert(_ context.Context, rec property.Record, features []float64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, exists := m.records[rec.ID()]
	if !exists {
		m.order = append(m.order, rec.ID())
	}
	m.records[rec.ID()] = rec
	m.features[rec.ID()] = features
	return !exists, nil
}

func (m *memCatalog) Get(_ context.Context, id string) (property.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return property.Record{}, fmt.Errorf("property %q: %w", id, domain.ErrNotFound)
	}
	return rec, nil
}

func (m *memCatalog) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return fmt.Errorf("property %q: %w", id, domain.ErrNotFound)
	}
	delete(m.records, id)
	delete(m.features, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *memCatalog) List(_ context.Context, cursor string, limit int) ([]property.Record, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	offset := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil {
			return nil, "", domain.NewValidation("cursor", "must be an integer offset")
		}
		offset = n
	}
	if offset >= len(m.order) {
		return nil, "", nil
	}
	end := offset + limit
	next := ""
	if end < len(m.order) {
		next = strconv.Itoa(end)
	} else {
		end = len(m.order)
	}
	out := make([]property.Record, 0, end-offset)
	for _, id := range m.order[offset:end] {
		out = append(out, m.records[id])
	}
	return out, next, nil
}

func (m *memCatalog) Count(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records), nil
}

func (m *memCatalog) SimilarByVector(
	_ context.Context, _ []float64, k int, _ filter.Expression, excludeID string,
) ([]domrec.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domrec.Candidate, 0, len(m.order))
	for _, id := range m.order {
		if id == excludeID || len(out) == k {
			continue
		}
		out = append(out, domrec.Candidate{Record: m.records[id]})
	}
	return out, nil
}

func (m *memCatalog) Near(
	_ context.Context, lat, lon, _ float64, k int, _ filter.Expression,
) ([]domrec.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	query := location.Reconstruct(lat, lon, "", "", "", location.Attributes{})
	out := make([]domrec.Candidate, 0, len(m.order))
	for _, id := range m.order {
		if len(out) == k {
			break
		}
		rec := m.records[id]
		out = append(out, domrec.Candidate{
			Record:         rec,
			DistanceMeters: rec.Location().DistanceMeters(query),
		})
	}
	return out, nil
}

type snapshotEntry struct {
	res domval.Result
	rec property.Record
}

type memSnapshots struct {
	mu      sync.Mutex
	entries map[string]snapshotEntry
}

func (m *memSnapshots) Save(_ context.Context, res domval.Result, rec property.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[res.PropertyID()+"@"+res.ModelVersion()] = snapshotEntry{res: res, rec: rec}
	return nil
}

func (m *memSnapshots) Get(_ context.Context, propertyID, modelVersion string) (domval.Result, property.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[propertyID+"@"+modelVersion]
	if !ok {
		return domval.Result{}, property.Record{}, fmt.Errorf("valuation %q: %w", propertyID, domain.ErrNotFound)
	}
	return e.res, e.rec, nil
}

type memInteractions struct {
	mu     sync.Mutex
	events []dominter.Event
}

func (m *memInteractions) Record(_ context.Context, ev dominter.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

type stubBudgetReader struct{}

func (stubBudgetReader) DailyLimit() int64       { return 100 }
func (stubBudgetReader) MonthlyLimit() int64     { return 1000 }
func (stubBudgetReader) DailyUsed() int64        { return 7 }
func (stubBudgetReader) MonthlyUsed() int64      { return 40 }
func (stubBudgetReader) RemainingDaily() int64   { return 93 }
func (stubBudgetReader) RemainingMonthly() int64 { return 960 }
func (stubBudgetReader) DailyTokens() int64      { return 1500 }
func (stubBudgetReader) MonthlyTokens() int64    { return 9000 }

type stubPinger struct {
	mu  sync.Mutex
	err error
}

func (p *stubPinger) Ping(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *stubPinger) fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

// --- Helpers ---

type testEnv struct {
	router       chi.Router
	catalog      *memCatalog
	snapshots    *memSnapshots
	interactions *memInteractions
	pinger       *stubPinger
}

// newTestEnv wires the full usecase stack over in-memory stores. withModel
// controls whether a valuation artifact is active.
func newTestEnv(t *testing.T, withModel bool) *testEnv {
	t.Helper()

	builder := feature.NewBuilder(feature.DefaultParams())
	registry := model.NewRegistry()
	if withModel {
		if err := registry.Register(model.NewHeuristic("2.1.0")); err != nil {
			t.Fatalf("Register: %v", err)
		}
		if err := registry.Rotate("2.1.0"); err != nil {
			t.Fatalf("Rotate: %v", err)
		}
	}

	catalogStore := newMemCatalog()
	snapshots := &memSnapshots{entries: make(map[string]snapshotEntry)}
	interactionStore := &memInteractions{}
	pinger := &stubPinger{}

	valuations := valuationuc.New(builder, registry, snapshots)
	scores := scoringuc.New(builder, score.Weights{})
	recommender := recommenduc.New(catalogStore, nil, builder)
	explainer := explainuc.New(builder, registry, snapshots)

	srv := NewServer(
		analysisuc.New(builder, valuations, scores, recommender, explainer),
		valuations,
		scores,
		recommender,
		explainer,
		interactionuc.New(interactionStore),
		cataloguc.New(catalogStore, builder),
		usageuc.New(stubBudgetReader{}, "gpt-4o-mini"),
		healthuc.New(pinger, registry, nil),
		zap.NewNop(),
	)

	router := chi.NewRouter()
	srv.Register(router)

	return &testEnv{
		router:       router,
		catalog:      catalogStore,
		snapshots:    snapshots,
		interactions: interactionStore,
		pinger:       pinger,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func wantErrorCode(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) errorBody {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("status: got %d, want %d (body %s)", rr.Code, status, rr.Body.String())
	}
	var resp errorResponse
	decodeBody(t, rr, &resp)
	if resp.Error.Code != code {
		t.Errorf("error code: got %q, want %q", resp.Error.Code, code)
	}
	return resp.Error
}

// richProperty carries every neighborhood attribute, so no component score
// falls back to its neutral default.
func richProperty(id string) propertyPayload {
	school := 8.0
	crime := 20.0
	flood := 0.1
	price := 210.0
	trend := 0.08
	demand := 70.0
	supply := 50.0
	schools1 := 2
	hospitals1 := 1
	hospitals3 := 3
	transit1 := 1
	transit3 := 5
	yearBuilt := 2005
	return propertyPayload{
		PropertyID:   id,
		PropertyType: string(property.TypeResidential),
		Beds:         3,
		Baths:        2,
		Sqft:         1500,
		YearBuilt:    &yearBuilt,
		Location: locationPayload{
			Latitude:  41.88,
			Longitude: -87.63,
			Address:   "100 Main St",
			City:      "Chicago",
			State:     "IL",
			Attributes: location.Attributes{
				SchoolRating: &school,
				CrimeRate:    &crime,
				FloodRisk:    &flood,
				PricePerSqft: &price,
				PriceTrend1Y: &trend,
				DemandScore:  &demand,
				SupplyScore:  &supply,
				Schools1KM:   &schools1,
				Hospitals1KM: &hospitals1,
				Hospitals3KM: &hospitals3,
				Transit1KM:   &transit1,
				Transit3KM:   &transit3,
			},
		},
	}
}

const richOverallScore = 2600.0 / 34.0

// --- Tests ---

func TestServer_UpsertGetDeleteProperty(t *testing.T) {
	env := newTestEnv(t, true)

	body := richProperty("")
	rr := env.do(t, "PUT", "/v1/properties/prop-1", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status: got %d, want %d (body %s)", rr.Code, http.StatusCreated, rr.Body.String())
	}
	var created propertyPayload
	decodeBody(t, rr, &created)
	if created.PropertyID != "prop-1" {
		t.Errorf("property_id: got %q, want prop-1", created.PropertyID)
	}

	rr = env.do(t, "PUT", "/v1/properties/prop-1", body)
	if rr.Code != http.StatusOK {
		t.Errorf("update status: got %d, want %d", rr.Code, http.StatusOK)
	}

	rr = env.do(t, "GET", "/v1/properties/prop-1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("get status: got %d, want %d", rr.Code, http.StatusOK)
	}
	var got propertyPayload
	decodeBody(t, rr, &got)
	if got.Beds != 3 || got.Baths != 2 || got.Sqft != 1500 {
		t.Errorf("record fields: got %d/%v/%v, want 3/2/1500", got.Beds, got.Baths, got.Sqft)
	}
	if got.Location.City != "Chicago" {
		t.Errorf("city: got %q, want Chicago", got.Location.City)
	}
	if got.Location.Attributes.SchoolRating == nil || *got.Location.Attributes.SchoolRating != 8.0 {
		t.Errorf("school_rating did not round-trip: %+v", got.Location.Attributes.SchoolRating)
	}

	rr = env.do(t, "DELETE", "/v1/properties/prop-1", nil)
	if rr.Code != http.StatusNoContent {
		t.Errorf("delete status: got %d, want %d", rr.Code, http.StatusNoContent)
	}

	rr = env.do(t, "GET", "/v1/properties/prop-1", nil)
	wantErrorCode(t, rr, http.StatusNotFound, codeNotFound)
}

func TestServer_UpsertProperty_BodyPathMismatch(t *testing.T) {
	env := newTestEnv(t, true)

	rr := env.do(t, "PUT", "/v1/properties/prop-1", richProperty("prop-2"))
	e := wantErrorCode(t, rr, http.StatusBadRequest, codeValidationFailed)
	if e.Field != "property_id" {
		t.Errorf("field: got %q, want property_id", e.Field)
	}
}

func TestServer_UpsertProperty_InvalidRecord(t *testing.T) {
	env := newTestEnv(t, true)

	body := richProperty("")
	body.Sqft = 0
	rr := env.do(t, "PUT", "/v1/properties/prop-1", body)
	e := wantErrorCode(t, rr, http.StatusBadRequest, codeValidationFailed)
	if e.Field != "sqft" {
		t.Errorf("field: got %q, want sqft", e.Field)
	}
}

func TestServer_UpsertProperty_MalformedJSON(t *testing.T) {
	env := newTestEnv(t, true)

	req := httptest.NewRequest("PUT", "/v1/properties/prop-1", bytes.NewReader([]byte("{not json")))
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	wantErrorCode(t, rr, http.StatusBadRequest, codeBadRequest)
}

func TestServer_ListProperties_Paginates(t *testing.T) {
	env := newTestEnv(t, true)
	for _, id := range []string{"prop-1", "prop-2", "prop-3"} {
		if rr := env.do(t, "PUT", "/v1/properties/"+id, richProperty("")); rr.Code != http.StatusCreated {
			t.Fatalf("seed %s: status %d", id, rr.Code)
		}
	}

	rr := env.do(t, "GET", "/v1/properties?limit=2", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("list status: got %d, want %d", rr.Code, http.StatusOK)
	}
	var page propertyListResponse
	decodeBody(t, rr, &page)
	if len(page.Properties) != 2 {
		t.Fatalf("first page: got %d properties, want 2", len(page.Properties))
	}
	if page.NextCursor == "" {
		t.Fatal("first page: missing next_cursor")
	}

	rr = env.do(t, "GET", "/v1/properties?limit=2&cursor="+page.NextCursor, nil)
	var rest propertyListResponse
	decodeBody(t, rr, &rest)
	if len(rest.Properties) != 1 || rest.NextCursor != "" {
		t.Errorf("second page: got %d properties, cursor %q; want 1 and empty",
			len(rest.Properties), rest.NextCursor)
	}
}

func TestServer_ListProperties_BadLimit(t *testing.T) {
	env := newTestEnv(t, true)

	rr := env.do(t, "GET", "/v1/properties?limit=abc", nil)
	e := wantErrorCode(t, rr, http.StatusBadRequest, codeValidationFailed)
	if e.Field != "limit" {
		t.Errorf("field: got %q, want limit", e.Field)
	}
}

func TestServer_PropertyValuation(t *testing.T) {
	env := newTestEnv(t, true)

	rr := env.do(t, "POST", "/v1/property-valuation", valuationRequest{Property: richProperty("prop-1")})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (body %s)", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp valuationResponse
	decodeBody(t, rr, &resp)
	if resp.PropertyID != "prop-1" {
		t.Errorf("property_id: got %q, want prop-1", resp.PropertyID)
	}
	if resp.PredictedValue <= 0 {
		t.Errorf("predicted_value: got %v, want > 0", resp.PredictedValue)
	}
	if resp.ValueRangeLow >= resp.PredictedValue || resp.ValueRangeHigh <= resp.PredictedValue {
		t.Errorf("band [%v, %v] does not bracket value %v",
			resp.ValueRangeLow, resp.ValueRangeHigh, resp.PredictedValue)
	}
	if resp.Confidence <= 0 || resp.Confidence > 1 {
		t.Errorf("confidence: got %v, want (0,1]", resp.Confidence)
	}
	if resp.ModelVersion != "2.1.0" {
		t.Errorf("model_version: got %q, want 2.1.0", resp.ModelVersion)
	}

	if _, _, err := env.snapshots.Get(context.Background(), "prop-1", "2.1.0"); err != nil {
		t.Errorf("valuation snapshot was not persisted: %v", err)
	}
}

func TestServer_PropertyValuation_NoActiveModel(t *testing.T) {
	env := newTestEnv(t, false)

	rr := env.do(t, "POST", "/v1/property-valuation", valuationRequest{Property: richProperty("prop-1")})
	wantErrorCode(t, rr, http.StatusServiceUnavailable, codeModelUnavailable)
}

func TestServer_BeneficiaryScore(t *testing.T) {
	env := newTestEnv(t, true)

	rr := env.do(t, "POST", "/v1/beneficiary-score", scoreRequest{Property: richProperty("prop-1")})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (body %s)", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp scoreResponse
	decodeBody(t, rr, &resp)
	if math.Abs(resp.OverallScore-richOverallScore) > 1e-9 {
		t.Errorf("overall_score: got %v, want %v", resp.OverallScore, richOverallScore)
	}
	if len(resp.ComponentScores) != len(score.Components()) {
		t.Errorf("component_scores: got %d entries, want %d", len(resp.ComponentScores), len(score.Components()))
	}
	if resp.ModelVersion == "" {
		t.Error("model_version missing")
	}
}

func TestServer_BeneficiaryScore_CustomWeights(t *testing.T) {
	env := newTestEnv(t, true)

	req := scoreRequest{
		Property:      richProperty("prop-1"),
		CustomWeights: map[string]float64{"value": 2.0},
	}
	rr := env.do(t, "POST", "/v1/beneficiary-score", req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	var resp scoreResponse
	decodeBody(t, rr, &resp)
	if resp.ScoringWeights["value"] != 2.0 {
		t.Errorf("scoring_weights[value]: got %v, want 2.0", resp.ScoringWeights["value"])
	}
}

func TestServer_BeneficiaryScore_UnknownWeight(t *testing.T) {
	env := newTestEnv(t, true)

	req := scoreRequest{
		Property:      richProperty("prop-1"),
		CustomWeights: map[string]float64{"charm": 1.0},
	}
	rr := env.do(t, "POST", "/v1/beneficiary-score", req)
	wantErrorCode(t, rr, http.StatusBadRequest, codeValidationFailed)
}

func TestServer_ComprehensiveAnalysis(t *testing.T) {
	env := newTestEnv(t, true)

	rr := env.do(t, "POST", "/v1/comprehensive-analysis", analysisRequest{
		Property: richProperty("prop-1"),
		UserID:   "user-7",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (body %s)", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp analysisResponse
	decodeBody(t, rr, &resp)
	if resp.AnalysisID == "" {
		t.Error("analysis_id missing")
	}
	if resp.Verdict != "buy" {
		t.Errorf("verdict: got %q, want buy", resp.Verdict)
	}
	if resp.Valuation == nil || resp.BeneficiaryScore == nil {
		t.Fatalf("valuation/beneficiary_score missing: %+v", resp)
	}
	if math.Abs(resp.BeneficiaryScore.OverallScore-richOverallScore) > 1e-9 {
		t.Errorf("beneficiary overall: got %v, want %v", resp.BeneficiaryScore.OverallScore, richOverallScore)
	}
	if math.Abs(resp.Suitability.Overall-87.7) > 1e-9 {
		t.Errorf("suitability overall: got %v, want 87.7", resp.Suitability.Overall)
	}
	if resp.ModelVersion != "2.1.0" {
		t.Errorf("model_version: got %q, want 2.1.0", resp.ModelVersion)
	}
	if resp.MarketInsight != "" {
		t.Errorf("market_insight should be absent by default, got %q", resp.MarketInsight)
	}
	if resp.Summary.InvestmentOutlook == "" {
		t.Error("summary.investment_outlook missing")
	}

	done := make(map[string]bool)
	for _, ev := range resp.Trace {
		if ev.Status == "done" {
			done[string(ev.Stage)] = true
		}
	}
	for _, stage := range []string{"received", "features_built", "valuation", "scoring", "assembled"} {
		if !done[stage] {
			t.Errorf("trace: stage %s not done (trace %+v)", stage, resp.Trace)
		}
	}

	env.interactions.mu.Lock()
	events := append([]dominter.Event(nil), env.interactions.events...)
	env.interactions.mu.Unlock()
	if len(events) != 1 {
		t.Fatalf("interactions recorded: got %d, want 1", len(events))
	}
	if events[0].Kind() != dominter.KindAnalysis || events[0].UserID() != "user-7" {
		t.Errorf("interaction: got kind %q user %q", events[0].Kind(), events[0].UserID())
	}
}

func TestServer_ComprehensiveAnalysis_UnknownTolerance(t *testing.T) {
	env := newTestEnv(t, true)

	rr := env.do(t, "POST", "/v1/comprehensive-analysis", analysisRequest{
		Property:      richProperty("prop-1"),
		RiskTolerance: "extreme",
	})
	e := wantErrorCode(t, rr, http.StatusBadRequest, codeValidationFailed)
	if e.Field != "risk_tolerance" {
		t.Errorf("field: got %q, want risk_tolerance", e.Field)
	}
}

func TestServer_Recommendations_ByProperty(t *testing.T) {
	env := newTestEnv(t, true)
	for _, id := range []string{"prop-1", "prop-2"} {
		if rr := env.do(t, "PUT", "/v1/properties/"+id, richProperty("")); rr.Code != http.StatusCreated {
			t.Fatalf("seed %s: status %d", id, rr.Code)
		}
	}

	rr := env.do(t, "POST", "/v1/recommendations", recommendationRequest{PropertyID: "prop-1"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (body %s)", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp recommendationsResponse
	decodeBody(t, rr, &resp)
	if resp.Strategy != string(domrec.StrategyHybrid) {
		t.Errorf("recommendation_type: got %q, want hybrid", resp.Strategy)
	}
	if len(resp.Recommendations) != 1 {
		t.Fatalf("recommendations: got %d, want 1 (%+v)", len(resp.Recommendations), resp)
	}
	rec := resp.Recommendations[0]
	if rec.PropertyID != "prop-2" || rec.RankPosition != 1 {
		t.Errorf("top hit: got %q rank %d, want prop-2 rank 1", rec.PropertyID, rec.RankPosition)
	}
	if rec.SimilarityScore < 0.99 {
		t.Errorf("identical candidate similarity: got %v, want ~1", rec.SimilarityScore)
	}
}

func TestServer_Recommendations_ByLocation(t *testing.T) {
	env := newTestEnv(t, true)
	for _, id := range []string{"prop-1", "prop-2"} {
		if rr := env.do(t, "PUT", "/v1/properties/"+id, richProperty("")); rr.Code != http.StatusCreated {
			t.Fatalf("seed %s: status %d", id, rr.Code)
		}
	}

	rr := env.do(t, "POST", "/v1/recommendations", recommendationRequest{
		Location: &recommendationPoint{Latitude: 41.88, Longitude: -87.63},
		RadiusKM: 10,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (body %s)", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp recommendationsResponse
	decodeBody(t, rr, &resp)
	if len(resp.Recommendations) != 2 {
		t.Fatalf("recommendations: got %d, want 2", len(resp.Recommendations))
	}
	// Equal distance: ties break by id ascending.
	if resp.Recommendations[0].PropertyID != "prop-1" || resp.Recommendations[1].PropertyID != "prop-2" {
		t.Errorf("order: got %q, %q", resp.Recommendations[0].PropertyID, resp.Recommendations[1].PropertyID)
	}
	for i, rec := range resp.Recommendations {
		if rec.RankPosition != i+1 {
			t.Errorf("rank_position[%d]: got %d, want %d", i, rec.RankPosition, i+1)
		}
	}
}

func TestServer_Recommendations_ModeValidation(t *testing.T) {
	env := newTestEnv(t, true)

	rr := env.do(t, "POST", "/v1/recommendations", recommendationRequest{})
	e := wantErrorCode(t, rr, http.StatusBadRequest, codeValidationFailed)
	if e.Field != "property_id" {
		t.Errorf("field: got %q, want property_id", e.Field)
	}

	rr = env.do(t, "POST", "/v1/recommendations", recommendationRequest{
		PropertyID: "prop-1",
		Location:   &recommendationPoint{Latitude: 41.88, Longitude: -87.63},
	})
	wantErrorCode(t, rr, http.StatusBadRequest, codeValidationFailed)
}

func TestServer_ValuationExplanation(t *testing.T) {
	env := newTestEnv(t, true)

	rr := env.do(t, "POST", "/v1/property-valuation", valuationRequest{Property: richProperty("prop-1")})
	if rr.Code != http.StatusOK {
		t.Fatalf("valuation status: got %d (body %s)", rr.Code, rr.Body.String())
	}
	var val valuationResponse
	decodeBody(t, rr, &val)

	rr = env.do(t, "GET", "/v1/property-valuation/prop-1/explanation", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("explanation status: got %d, want %d (body %s)", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp explanationResponse
	decodeBody(t, rr, &resp)
	if resp.PropertyID != "prop-1" {
		t.Errorf("property_id: got %q, want prop-1", resp.PropertyID)
	}
	if resp.ExplanationType != "valuation" {
		t.Errorf("explanation_type: got %q, want valuation", resp.ExplanationType)
	}
	if resp.ModelVersion != "2.1.0" {
		t.Errorf("model_version: got %q, want 2.1.0", resp.ModelVersion)
	}
	if math.Abs(resp.PredictionValue-val.PredictedValue) > 1e-6*math.Abs(val.PredictedValue) {
		t.Errorf("prediction_value: got %v, want %v", resp.PredictionValue, val.PredictedValue)
	}
	if len(resp.TopPositiveFeatures)+len(resp.TopNegativeFeatures) == 0 {
		t.Error("no attributions returned")
	}
}

func TestServer_ValuationExplanation_NotFound(t *testing.T) {
	env := newTestEnv(t, true)

	rr := env.do(t, "GET", "/v1/property-valuation/ghost/explanation", nil)
	wantErrorCode(t, rr, http.StatusNotFound, codeNotFound)
}

func TestServer_UserInteraction(t *testing.T) {
	env := newTestEnv(t, true)

	rr := env.do(t, "POST", "/v1/user-interaction", interactionRequest{
		UserID:          "user-1",
		PropertyID:      "prop-1",
		InteractionType: "view",
	})
	if rr.Code != http.StatusAccepted {
		t.Fatalf("status: got %d, want %d (body %s)", rr.Code, http.StatusAccepted, rr.Body.String())
	}

	var resp interactionResponse
	decodeBody(t, rr, &resp)
	if resp.InteractionType != "view" || resp.InteractionWeight != 1 {
		t.Errorf("event: got type %q weight %v, want view/1", resp.InteractionType, resp.InteractionWeight)
	}
	if resp.OccurredAt.IsZero() {
		t.Error("occurred_at missing")
	}
}

func TestServer_UserInteraction_UnknownType(t *testing.T) {
	env := newTestEnv(t, true)

	rr := env.do(t, "POST", "/v1/user-interaction", interactionRequest{
		UserID:          "user-1",
		PropertyID:      "prop-1",
		InteractionType: "poke",
	})
	e := wantErrorCode(t, rr, http.StatusBadRequest, codeValidationFailed)
	if e.Field != "interaction_type" {
		t.Errorf("field: got %q, want interaction_type", e.Field)
	}
}

func TestServer_GetUsage(t *testing.T) {
	env := newTestEnv(t, true)

	rr := env.do(t, "GET", "/v1/usage", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	var resp usageResponse
	decodeBody(t, rr, &resp)
	if resp.Period != "month" {
		t.Errorf("period: got %q, want month", resp.Period)
	}
	if resp.Budget.CallsLimit != 1000 || resp.Budget.CallsRemaining != 960 {
		t.Errorf("budget: got %d/%d, want 1000/960", resp.Budget.CallsLimit, resp.Budget.CallsRemaining)
	}
	if resp.Usage.InsightRequests != 40 || resp.Usage.Tokens != 9000 {
		t.Errorf("usage: got %d/%d, want 40/9000", resp.Usage.InsightRequests, resp.Usage.Tokens)
	}
	if resp.Budget.IsExhausted {
		t.Error("is_exhausted: got true, want false")
	}
	if resp.Budget.ResetsAt == nil || resp.PeriodStartAt == nil {
		t.Error("period boundaries missing for month period")
	}
	if resp.Model != "gpt-4o-mini" {
		t.Errorf("model: got %q, want gpt-4o-mini", resp.Model)
	}
}

func TestServer_GetUsage_DayPeriod(t *testing.T) {
	env := newTestEnv(t, true)

	rr := env.do(t, "GET", "/v1/usage?period=day", nil)
	var resp usageResponse
	decodeBody(t, rr, &resp)
	if resp.Period != "day" || resp.Budget.CallsLimit != 100 {
		t.Errorf("day period: got %q limit %d, want day/100", resp.Period, resp.Budget.CallsLimit)
	}
}

func TestServer_GetUsage_UnknownPeriod(t *testing.T) {
	env := newTestEnv(t, true)

	rr := env.do(t, "GET", "/v1/usage?period=week", nil)
	e := wantErrorCode(t, rr, http.StatusBadRequest, codeValidationFailed)
	if e.Field != "period" {
		t.Errorf("field: got %q, want period", e.Field)
	}
}

func TestServer_Probes(t *testing.T) {
	env := newTestEnv(t, true)

	rr := env.do(t, "GET", "/healthz", nil)
	if rr.Code != http.StatusOK {
		t.Errorf("healthz: got %d, want %d", rr.Code, http.StatusOK)
	}

	rr = env.do(t, "GET", "/readyz", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("readyz: got %d, want %d (body %s)", rr.Code, http.StatusOK, rr.Body.String())
	}
	var ready healthResponse
	decodeBody(t, rr, &ready)
	if ready.Status != "ok" || ready.Checks["database"] != "ok" || ready.Checks["model"] != "ok" {
		t.Errorf("readyz body: %+v", ready)
	}

	env.pinger.fail(errors.New("connection refused"))
	rr = env.do(t, "GET", "/readyz", nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("degraded readyz: got %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
	var degraded healthResponse
	decodeBody(t, rr, &degraded)
	if degraded.Status != "degraded" || degraded.Checks["database"] != "error" {
		t.Errorf("degraded body: %+v", degraded)
	}

	// Liveness stays green through dependency failure.
	rr = env.do(t, "GET", "/healthz", nil)
	if rr.Code != http.StatusOK {
		t.Errorf("healthz while degraded: got %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestServer_Version(t *testing.T) {
	env := newTestEnv(t, true)

	rr := env.do(t, "GET", "/version", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	var resp versionResponse
	decodeBody(t, rr, &resp)
	if resp.Version == "" {
		t.Error("version missing")
	}
}
