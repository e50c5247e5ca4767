package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/propdex/internal/db"
	"github.com/kailas-cloud/propdex/internal/db/filter"
	"github.com/kailas-cloud/propdex/internal/domain"
	"github.com/kailas-cloud/propdex/internal/domain/geo"
	"github.com/kailas-cloud/propdex/internal/domain/property"
	"github.com/kailas-cloud/propdex/internal/domain/recommend"
)

// candidateFields are the index fields returned with each retrieval hit,
// enough to re-check preference filters and rank without a second read.
var candidateFields = []string{
	fieldPropertyType, fieldBeds, fieldBaths, fieldSqft, fieldYearBuilt, fieldCity, fieldState,
}

// store is the consumer interface for the property catalog (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// Repo implements the property catalog over JSON documents plus a flat hash
// projection that feeds the two FT indexes.
type Repo struct {
	store store
}

// New creates a catalog repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// EnsureIndexes creates the feature and geolocation indexes if absent.
// Safe to call on every startup.
func (r *Repo) EnsureIndexes(ctx context.Context) error {
	for _, def := range []*db.IndexDefinition{featureIndex(), geoIndex()} {
		exists, err := r.store.IndexExists(ctx, def.Name)
		if err != nil {
			return fmt.Errorf("check index %s: %w", def.Name, err)
		}
		if exists {
			continue
		}
		if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
			return fmt.Errorf("create index %s: %w", def.Name, err)
		}
	}
	return nil
}

// Upsert stores the property document and its index projection.
// Returns true if the property was created rather than replaced.
func (r *Repo) Upsert(ctx context.Context, rec property.Record, features []float64) (bool, error) {
	key := docKey(rec.ID())

	doc := buildDoc(rec, time.Now().UnixMilli())
	data, err := json.Marshal(doc)
	if err != nil {
		return false, fmt.Errorf("marshal property %s: %w", rec.ID(), err)
	}

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check exists %s: %w", key, err)
	}

	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return false, fmt.Errorf("json.set %s: %w", key, err)
	}

	if err := r.store.HSet(ctx, indexKey(rec.ID()), buildIndexFields(rec, features)); err != nil {
		return false, fmt.Errorf("hset %s: %w", indexKey(rec.ID()), err)
	}

	return !exists, nil
}

// UpsertBulk stores many property documents and index projections in two
// pipelined round trips. recs[i] pairs with features[i]; all records share
// one updated_at timestamp.
func (r *Repo) UpsertBulk(ctx context.Context, recs []property.Record, features [][]float64) error {
	if len(recs) == 0 {
		return nil
	}
	if len(recs) != len(features) {
		return fmt.Errorf("record/feature count mismatch: %d vs %d", len(recs), len(features))
	}

	now := time.Now().UnixMilli()
	docs := make([]db.JSONSetItem, 0, len(recs))
	hashes := make([]db.HashSetItem, 0, len(recs))

	for i, rec := range recs {
		data, err := json.Marshal(buildDoc(rec, now))
		if err != nil {
			return fmt.Errorf("marshal property %s: %w", rec.ID(), err)
		}
		docs = append(docs, db.JSONSetItem{Key: docKey(rec.ID()), Path: "$", Data: data})
		hashes = append(hashes, db.HashSetItem{Key: indexKey(rec.ID()), Fields: buildIndexFields(rec, features[i])})
	}

	if err := r.store.JSONSetMulti(ctx, docs); err != nil {
		return fmt.Errorf("json.set bulk: %w", err)
	}
	if err := r.store.HSetMulti(ctx, hashes); err != nil {
		return fmt.Errorf("hset bulk: %w", err)
	}

	return nil
}

// Get returns a property record by id.
func (r *Repo) Get(ctx context.Context, id string) (property.Record, error) {
	raw, err := r.store.JSONGet(ctx, docKey(id), "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return property.Record{}, domain.ErrNotFound
		}
		return property.Record{}, fmt.Errorf("json.get %s: %w", docKey(id), err)
	}
	return parseDocResult(id, raw)
}

// Delete removes a property and its index projection.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := docKey(id)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrNotFound
	}

	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	if err := r.store.Del(ctx, indexKey(id)); err != nil {
		return fmt.Errorf("del %s: %w", indexKey(id), err)
	}
	return nil
}

// List returns property records with cursor-based pagination via FT.SEARCH.
func (r *Repo) List(ctx context.Context, cursor string, limit int) ([]property.Record, string, error) {
	if limit <= 0 {
		limit = 20
	}

	offset := 0
	if cursor != "" {
		parsed, err := strconv.Atoi(cursor)
		if err != nil || parsed < 0 {
			return nil, "", domain.NewValidation("cursor", fmt.Sprintf("invalid cursor %q", cursor))
		}
		offset = parsed
	}

	fetchCount := limit + 1

	result, err := r.store.SearchList(ctx, featureIndexName(), "*", offset, fetchCount, []string{fieldBeds})
	if err != nil {
		return nil, "", fmt.Errorf("search list: %w", err)
	}

	if result == nil || result.Total == 0 {
		return nil, "", nil
	}

	records := make([]property.Record, 0, limit)
	for i, entry := range result.Entries {
		if i >= limit {
			break
		}
		id := extractID(entry.Key)
		rec, err := r.Get(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue // projection outlived the document
			}
			return nil, "", err
		}
		records = append(records, rec)
	}

	var nextCursor string
	if len(result.Entries) > limit {
		nextCursor = strconv.Itoa(offset + limit)
	}

	return records, nextCursor, nil
}

// Count returns the number of indexed properties.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, featureIndexName(), "*")
	if err != nil {
		return 0, fmt.Errorf("search count: %w", err)
	}
	return n, nil
}

// FeatureVectors returns up to limit stored feature vectors for training.
func (r *Repo) FeatureVectors(ctx context.Context, limit int) ([][]float64, error) {
	result, err := r.store.SearchList(ctx, featureIndexName(), "*", 0, limit, []string{fieldVector})
	if err != nil {
		return nil, fmt.Errorf("search vectors: %w", err)
	}
	if result == nil {
		return nil, nil
	}

	vectors := make([][]float64, 0, len(result.Entries))
	for _, entry := range result.Entries {
		blob := entry.Fields[fieldVector]
		if blob == "" {
			continue
		}
		vec := bytesToVector(blob)
		if vec == nil {
			continue
		}
		vectors = append(vectors, toFloat64(vec))
	}
	return vectors, nil
}

// SimilarByVector returns the k nearest properties to the given feature
// vector (cosine similarity), excluding excludeID when set.
func (r *Repo) SimilarByVector(
	ctx context.Context, features []float64, k int,
	filters filter.Expression, excludeID string,
) ([]recommend.Candidate, error) {
	q := &db.KNNQuery{
		IndexName:    featureIndexName(),
		Filters:      filters,
		Vector:       toFloat32(features),
		K:            k,
		ReturnFields: candidateFields,
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}

	return parseFeatureCandidates(sr, excludeID), nil
}

// Near returns up to k properties within radiusKM of the point, nearest
// first. A zero radius matches only candidates at the exact point.
func (r *Repo) Near(
	ctx context.Context, lat, lon, radiusKM float64, k int,
	filters filter.Expression,
) ([]recommend.Candidate, error) {
	q := &db.KNNQuery{
		IndexName:    geoIndexName(),
		Filters:      filters,
		Vector:       geo.ToVector(lat, lon),
		K:            k,
		ReturnFields: candidateFields,
		RawScores:    true, // squared L2 distance, converted to meters below
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search geo: %w", err)
	}

	return parseGeoCandidates(sr, radiusKM*1000), nil
}

// parseFeatureCandidates converts feature-index hits (cosine similarity
// scores) into Candidates, dropping the seed itself.
func parseFeatureCandidates(sr *db.SearchResult, excludeID string) []recommend.Candidate {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}

	out := make([]recommend.Candidate, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		id := extractID(entry.Key)
		if id == "" || id == excludeID {
			continue
		}
		out = append(out, recommend.Candidate{
			Record: parseCandidateFields(id, entry.Fields),
			Score:  entry.Score,
		})
	}
	return out
}

// parseGeoCandidates converts geo-index hits into Candidates with arc
// distances, keeping only those inside the radius. The raw score is the
// squared L2 distance over the unit sphere. Epsilon absorbs float32
// round-off at the exact point.
func parseGeoCandidates(sr *db.SearchResult, maxMeters float64) []recommend.Candidate {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}

	const epsilonMeters = 1.0

	out := make([]recommend.Candidate, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		id := extractID(entry.Key)
		if id == "" {
			continue
		}
		meters := geo.L2ToHaversineMeters(math.Sqrt(entry.Score))
		if meters > maxMeters+epsilonMeters {
			continue
		}
		out = append(out, recommend.Candidate{
			Record:         parseCandidateFields(id, entry.Fields),
			Score:          entry.Score,
			DistanceMeters: meters,
		})
	}
	return out
}

func parseDocResult(id string, raw []byte) (property.Record, error) {
	// JSON.GET with $ returns an array with one element.
	var docs []propertyDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		var doc propertyDoc
		if err2 := json.Unmarshal(raw, &doc); err2 != nil {
			return property.Record{}, fmt.Errorf("unmarshal property %s: %w", id, err)
		}
		docs = []propertyDoc{doc}
	}
	if len(docs) == 0 {
		return property.Record{}, domain.ErrNotFound
	}
	doc := docs[0]
	if doc.ID == "" {
		doc.ID = id
	}
	return doc.toRecord(), nil
}

func extractID(key string) string {
	return strings.TrimPrefix(key, indexKeyPrefix())
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}
