package propdex

import (
	"context"

	domanl "github.com/kailas-cloud/propdex/internal/domain/analysis"
	dombatch "github.com/kailas-cloud/propdex/internal/domain/batch"
	domexp "github.com/kailas-cloud/propdex/internal/domain/explain"
	"github.com/kailas-cloud/propdex/internal/domain/feature"
	dominter "github.com/kailas-cloud/propdex/internal/domain/interaction"
	"github.com/kailas-cloud/propdex/internal/domain/property"
	domrec "github.com/kailas-cloud/propdex/internal/domain/recommend"
	"github.com/kailas-cloud/propdex/internal/domain/score"
	domval "github.com/kailas-cloud/propdex/internal/domain/valuation"
	healthuc "github.com/kailas-cloud/propdex/internal/usecase/health"
)

// --- Mocks ---

type mockCatalog struct {
	upsertFn func(ctx context.Context, rec property.Record) (bool, error)
	getFn    func(ctx context.Context, id string) (property.Record, error)
	deleteFn func(ctx context.Context, id string) error
	listFn   func(ctx context.Context, cursor string, limit int) ([]property.Record, string, error)
	countFn  func(ctx context.Context) (int, error)
}

func (m *mockCatalog) Upsert(ctx context.Context, rec property.Record) (bool, error) {
	return m.upsertFn(ctx, rec)
}

func (m *mockCatalog) Get(ctx context.Context, id string) (property.Record, error) {
	return m.getFn(ctx, id)
}

func (m *mockCatalog) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

func (m *mockCatalog) List(ctx context.Context, cursor string, limit int) ([]property.Record, string, error) {
	return m.listFn(ctx, cursor, limit)
}

func (m *mockCatalog) Count(ctx context.Context) (int, error) {
	return m.countFn(ctx)
}

type mockBatch struct {
	upsertFn func(ctx context.Context, recs []property.Record) []dombatch.Result
	deleteFn func(ctx context.Context, ids []string) []dombatch.Result
}

func (m *mockBatch) Upsert(ctx context.Context, recs []property.Record) []dombatch.Result {
	return m.upsertFn(ctx, recs)
}

func (m *mockBatch) Delete(ctx context.Context, ids []string) []dombatch.Result {
	return m.deleteFn(ctx, ids)
}

type mockValuer struct {
	valueFn func(ctx context.Context, rec property.Record) (domval.Result, feature.Vector, error)
}

func (m *mockValuer) Value(ctx context.Context, rec property.Record) (domval.Result, feature.Vector, error) {
	return m.valueFn(ctx, rec)
}

type mockScorer struct {
	scoreFn func(ctx context.Context, rec property.Record, custom map[string]float64) (score.Result, feature.Vector, error)
	version string
}

func (m *mockScorer) Score(ctx context.Context, rec property.Record, custom map[string]float64) (score.Result, feature.Vector, error) {
	return m.scoreFn(ctx, rec, custom)
}

func (m *mockScorer) ModelVersion() string { return m.version }

type mockRecommender struct {
	recommendFn func(ctx context.Context, req domrec.Request) ([]domrec.Recommendation, error)
}

func (m *mockRecommender) Recommend(ctx context.Context, req domrec.Request) ([]domrec.Recommendation, error) {
	return m.recommendFn(ctx, req)
}

type mockExplainer struct {
	explainVectorFn func(ctx context.Context, vec feature.Vector, res domval.Result) (domexp.Explanation, error)
	explainStoredFn func(ctx context.Context, propertyID string) (domexp.Explanation, error)
	explainScoreFn  func(res score.Result) (domexp.Explanation, error)
}

func (m *mockExplainer) ExplainValuationVector(ctx context.Context, vec feature.Vector, res domval.Result) (domexp.Explanation, error) {
	return m.explainVectorFn(ctx, vec, res)
}

func (m *mockExplainer) ExplainStored(ctx context.Context, propertyID string) (domexp.Explanation, error) {
	return m.explainStoredFn(ctx, propertyID)
}

func (m *mockExplainer) ExplainScore(res score.Result) (domexp.Explanation, error) {
	return m.explainScoreFn(res)
}

type mockAnalyzer struct {
	analyzeFn func(ctx context.Context, req domanl.Request) (domanl.Result, error)
}

func (m *mockAnalyzer) Analyze(ctx context.Context, req domanl.Request) (domanl.Result, error) {
	return m.analyzeFn(ctx, req)
}

type mockInteractions struct {
	recordFn func(ctx context.Context, userID, propertyID string, kind dominter.Kind) (dominter.Event, error)
}

func (m *mockInteractions) Record(ctx context.Context, userID, propertyID string, kind dominter.Kind) (dominter.Event, error) {
	return m.recordFn(ctx, userID, propertyID, kind)
}

type mockHealth struct {
	checkFn func(ctx context.Context) healthuc.Report
}

func (m *mockHealth) Check(ctx context.Context) healthuc.Report {
	return m.checkFn(ctx)
}
