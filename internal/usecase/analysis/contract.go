package analysis

import (
	"context"

	domanl "github.com/kailas-cloud/propdex/internal/domain/analysis"
	domexp "github.com/kailas-cloud/propdex/internal/domain/explain"
	"github.com/kailas-cloud/propdex/internal/domain/feature"
	"github.com/kailas-cloud/propdex/internal/domain/property"
	domrec "github.com/kailas-cloud/propdex/internal/domain/recommend"
	"github.com/kailas-cloud/propdex/internal/domain/score"
	domval "github.com/kailas-cloud/propdex/internal/domain/valuation"
)

// Valuer prices a property over its already built feature vector.
type Valuer interface {
	ValueVector(ctx context.Context, rec property.Record, vec feature.Vector) (domval.Result, error)
}

// Scorer computes the beneficiary score over an already built vector.
type Scorer interface {
	ScoreVector(vec feature.Vector, weights score.Weights) (score.Result, error)
}

// Recommender ranks similar catalog properties for the analyzed record,
// which need not be catalogued itself.
type Recommender interface {
	RecommendForRecord(
		ctx context.Context, rec property.Record, strategy domrec.Strategy, maxResults int,
	) ([]domrec.Recommendation, error)
}

// Explainer decomposes valuations and beneficiary scores.
type Explainer interface {
	ExplainValuationVector(ctx context.Context, vec feature.Vector, res domval.Result) (domexp.Explanation, error)
	ExplainScore(res score.Result) (domexp.Explanation, error)
}

// InsightGenerator produces the optional market narrative from the assembled
// deterministic numbers.
type InsightGenerator interface {
	Narrative(ctx context.Context, res domanl.Result) (string, error)
}
