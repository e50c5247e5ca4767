// Package recommend ranks catalog properties for a seed property or a
// geographic point, blending content similarity with the collaborative
// engagement signal.
package recommend

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/kailas-cloud/propdex/internal/domain"
	"github.com/kailas-cloud/propdex/internal/domain/feature"
	"github.com/kailas-cloud/propdex/internal/domain/property"
	domrec "github.com/kailas-cloud/propdex/internal/domain/recommend"
	"github.com/kailas-cloud/propdex/internal/logger"
)

// Ranking defaults. Oversampling widens retrieval so the content floor and
// hard filters still leave enough candidates to fill the requested count.
const (
	defaultOversample    = 3
	defaultMinContentSim = 0.5
	defaultContentWeight = 0.7
	defaultCollabWeight  = 0.3

	propertyConfidenceFactor = 0.8
	locationConfidence       = 0.7
	minLocationSimilarity    = 0.1
)

// Service ranks catalog candidates for recommendation requests.
type Service struct {
	catalog      Catalog
	interactions Interactions
	builder      *feature.Builder

	oversample    int
	minContentSim float64
	contentWeight float64
	collabWeight  float64
}

// New creates a recommendation service. A nil interactions reader disables
// the collaborative signal and every strategy ranks on content alone.
func New(catalog Catalog, interactions Interactions, builder *feature.Builder) *Service {
	return &Service{
		catalog:       catalog,
		interactions:  interactions,
		builder:       builder,
		oversample:    defaultOversample,
		minContentSim: defaultMinContentSim,
		contentWeight: defaultContentWeight,
		collabWeight:  defaultCollabWeight,
	}
}

// WithTuning overrides the retrieval and blending knobs.
// Non-positive values keep their defaults.
func (s *Service) WithTuning(oversample int, minContentSim, contentWeight, collabWeight float64) *Service {
	if oversample > 0 {
		s.oversample = oversample
	}
	if minContentSim > 0 {
		s.minContentSim = minContentSim
	}
	if contentWeight > 0 {
		s.contentWeight = contentWeight
	}
	if collabWeight > 0 {
		s.collabWeight = collabWeight
	}
	return s
}

// ModelVersion returns the feature schema version candidates are ranked with.
func (s *Service) ModelVersion() string { return s.builder.Params().Version() }

// Recommend executes a validated request in its mode.
func (s *Service) Recommend(ctx context.Context, req domrec.Request) ([]domrec.Recommendation, error) {
	switch req.Mode() {
	case domrec.ModeProperty:
		return s.byProperty(ctx, req)
	case domrec.ModeLocation:
		return s.byLocation(ctx, req)
	default:
		return nil, domain.NewValidation("mode", fmt.Sprintf("unsupported mode %q", req.Mode()))
	}
}

// RecommendForRecord ranks candidates for an in-hand record without
// requiring it to be catalogued; the analysis pipeline uses it for request
// payloads that were never upserted. The record itself never surfaces in the
// results.
func (s *Service) RecommendForRecord(
	ctx context.Context, rec property.Record, strategy domrec.Strategy, maxResults int,
) ([]domrec.Recommendation, error) {
	req, err := domrec.NewByProperty(rec.ID(), strategy, maxResults, domrec.Filters{})
	if err != nil {
		return nil, err
	}
	return s.forSeed(ctx, rec, req)
}

func (s *Service) byProperty(ctx context.Context, req domrec.Request) ([]domrec.Recommendation, error) {
	seed, err := s.catalog.Get(ctx, req.SeedID())
	if err != nil {
		return nil, fmt.Errorf("get seed property: %w", err)
	}
	return s.forSeed(ctx, seed, req)
}

func (s *Service) forSeed(ctx context.Context, seed property.Record, req domrec.Request) ([]domrec.Recommendation, error) {
	vec, err := s.builder.Build(seed)
	if err != nil {
		return nil, fmt.Errorf("build seed features: %w", err)
	}

	expr, err := indexFilters(req.Filters())
	if err != nil {
		return nil, err
	}
	cands, err := s.catalog.SimilarByVector(ctx, vec.Values(), req.MaxResults()*s.oversample, expr, seed.ID())
	if err != nil {
		return nil, fmt.Errorf("retrieve similar candidates: %w", err)
	}
	cands = s.passingFilters(req.Filters(), cands)

	// Content floor: weakly similar candidates never surface, whatever the
	// strategy.
	type contentScored struct {
		id      string
		content float64
	}
	kept := make([]contentScored, 0, len(cands))
	for _, c := range cands {
		sim := contentSimilarity(seed, c.Record, s.builder.Params())
		if sim < s.minContentSim {
			continue
		}
		kept = append(kept, contentScored{id: c.Record.ID(), content: sim})
	}
	if len(kept) == 0 {
		return nil, nil
	}

	var collab []float64
	if req.Strategy() != domrec.StrategyContent {
		ids := make([]string, len(kept))
		for i, k := range kept {
			ids[i] = k.id
		}
		collab = s.collabFor(ctx, seed.ID(), ids)
	}

	entries := make([]rankEntry, len(kept))
	for i, k := range kept {
		sim := s.blended(req.Strategy(), k.content, collab, i)
		entries[i] = rankEntry{
			id:         k.id,
			similarity: sim,
			confidence: sim * propertyConfidenceFactor,
			reason:     fmt.Sprintf("Similar property characteristics (similarity: %.2f)", sim),
		}
	}
	return rank(entries, req.MaxResults())
}

func (s *Service) byLocation(ctx context.Context, req domrec.Request) ([]domrec.Recommendation, error) {
	expr, err := indexFilters(req.Filters())
	if err != nil {
		return nil, err
	}
	cands, err := s.catalog.Near(ctx, req.Latitude(), req.Longitude(), req.RadiusKM(),
		req.MaxResults()*s.oversample, expr)
	if err != nil {
		return nil, fmt.Errorf("retrieve nearby candidates: %w", err)
	}
	cands = s.passingFilters(req.Filters(), cands)

	entries := make([]rankEntry, 0, len(cands))
	for _, c := range cands {
		entries = append(entries, rankEntry{
			id:         c.Record.ID(),
			similarity: locationSimilarity(c.DistanceMeters, req.RadiusKM()),
			confidence: locationConfidence,
			reason:     fmt.Sprintf("Located %.1fkm from preferred location", c.DistanceMeters/1000),
		})
	}
	return rank(entries, req.MaxResults())
}

// blended applies the strategy to the two signals. An absent collaborative
// signal always reduces to content.
func (s *Service) blended(strategy domrec.Strategy, content float64, collab []float64, i int) float64 {
	if collab == nil {
		return content
	}
	switch strategy {
	case domrec.StrategyCollaborative:
		return collab[i]
	case domrec.StrategyContent:
		return content
	default:
		return (s.contentWeight*content + s.collabWeight*collab[i]) / (s.contentWeight + s.collabWeight)
	}
}

// collabFor loads the collaborative signal for the surviving candidates.
// Missing or erroring interaction history never fails the request.
func (s *Service) collabFor(ctx context.Context, seedID string, ids []string) []float64 {
	if s.interactions == nil {
		return nil
	}
	seedProfile, err := s.interactions.Profile(ctx, seedID)
	if err != nil {
		logger.FromContext(ctx).Warn("Collaborative signal unavailable",
			zap.String("property_id", seedID), zap.Error(err))
		return nil
	}
	if len(seedProfile) == 0 {
		return nil
	}
	profiles, err := s.interactions.Profiles(ctx, ids)
	if err != nil {
		logger.FromContext(ctx).Warn("Collaborative signal unavailable",
			zap.String("property_id", seedID), zap.Error(err))
		return nil
	}
	return collabScores(seedProfile, profiles)
}

// passingFilters re-checks the hard preference filters on the returned
// records. The index prefilter already excludes most violations; the
// in-process check is the source of truth.
func (s *Service) passingFilters(f domrec.Filters, cands []domrec.Candidate) []domrec.Candidate {
	params := s.builder.Params()
	out := make([]domrec.Candidate, 0, len(cands))
	for _, c := range cands {
		age := params.ReferenceYear() - yearBuiltOrDefault(c.Record, params)
		if age < 0 {
			age = 0
		}
		if f.Matches(c.Record, age) {
			out = append(out, c)
		}
	}
	return out
}

// rankEntry is a candidate scored and ready for ordering.
type rankEntry struct {
	id         string
	similarity float64
	confidence float64
	reason     string
}

// rank orders entries by similarity descending with id ascending as the
// deterministic tiebreak, truncates, and assigns 1-based ranks.
func rank(entries []rankEntry, maxResults int) ([]domrec.Recommendation, error) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].similarity != entries[j].similarity {
			return entries[i].similarity > entries[j].similarity
		}
		return entries[i].id < entries[j].id
	})
	if len(entries) > maxResults {
		entries = entries[:maxResults]
	}

	recs := make([]domrec.Recommendation, 0, len(entries))
	for i, e := range entries {
		rec, err := domrec.NewRecommendation(e.id, e.similarity, e.confidence, i+1, e.reason)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
