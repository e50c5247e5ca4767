// Package analysis orchestrates the comprehensive pipeline: feature build,
// concurrent valuation and scoring, recommendations, explanations, the
// deterministic suitability tables, and the optional market narrative.
package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	domanl "github.com/kailas-cloud/propdex/internal/domain/analysis"
	"github.com/kailas-cloud/propdex/internal/domain/feature"
	domrec "github.com/kailas-cloud/propdex/internal/domain/recommend"
	"github.com/kailas-cloud/propdex/internal/domain/score"
	domval "github.com/kailas-cloud/propdex/internal/domain/valuation"
	"github.com/kailas-cloud/propdex/internal/logger"
	"github.com/kailas-cloud/propdex/internal/metrics"
)

// Fallback confidence weights for analyses without an AVM band: completeness
// dominates, vector quality stands in for score consistency.
const (
	fallbackCompletenessShare = 0.6
	fallbackQualityShare      = 0.4
	minConfidence             = 0.1
)

// Service runs the comprehensive analysis pipeline. A failed optional stage
// degrades to a trace note instead of failing the whole analysis.
type Service struct {
	builder     *feature.Builder
	valuer      Valuer
	scorer      Scorer
	recommender Recommender
	explainer   Explainer
	insight     InsightGenerator
}

// New creates the orchestrator. A nil recommender or explainer marks its
// stage skipped whenever a request asks for it.
func New(builder *feature.Builder, valuer Valuer, scorer Scorer, recommender Recommender, explainer Explainer) *Service {
	return &Service{
		builder:     builder,
		valuer:      valuer,
		scorer:      scorer,
		recommender: recommender,
		explainer:   explainer,
	}
}

// WithInsight attaches the optional market narrative generator.
func (s *Service) WithInsight(g InsightGenerator) *Service {
	s.insight = g
	return s
}

// Analyze executes a validated comprehensive-analysis request.
func (s *Service) Analyze(ctx context.Context, req domanl.Request) (domanl.Result, error) {
	started := time.Now()
	rec := req.Record()
	flags := req.Flags()
	log := logger.FromContext(ctx)

	res := domanl.Result{
		AnalysisID:  uuid.NewString(),
		PropertyID:  rec.ID(),
		GeneratedAt: started.UTC(),
	}
	trace := domanl.Trace{}.Append(domanl.StageReceived, domanl.StatusDone, "")

	buildStart := time.Now()
	vec, err := s.builder.Build(rec)
	if err != nil {
		return domanl.Result{}, fmt.Errorf("build features: %w", err)
	}
	observeStage(domanl.StageFeaturesBuilt, buildStart)
	trace = trace.Append(domanl.StageFeaturesBuilt, domanl.StatusDone, "")

	var (
		valRes   *domval.Result
		scoreRes *score.Result
		valErr   error
		scoreErr error
	)
	eg, egCtx := errgroup.WithContext(ctx)
	if flags.Valuation {
		eg.Go(func() error {
			defer observeStage(domanl.StageValuation, time.Now())
			r, verr := s.valuer.ValueVector(egCtx, rec, vec)
			if verr != nil {
				valErr = verr
				return nil
			}
			valRes = &r
			return nil
		})
	}
	if flags.Score {
		eg.Go(func() error {
			defer observeStage(domanl.StageScoring, time.Now())
			r, serr := s.scorer.ScoreVector(vec, req.Weights())
			if serr != nil {
				scoreErr = serr
				return nil
			}
			scoreRes = &r
			return nil
		})
	}
	_ = eg.Wait()

	trace = stageOutcome(trace, domanl.StageValuation, flags.Valuation, valErr)
	trace = stageOutcome(trace, domanl.StageScoring, flags.Score, scoreErr)
	if valErr != nil {
		log.Warn("Valuation stage degraded", zap.String("property_id", rec.ID()), zap.Error(valErr))
	}
	if scoreErr != nil {
		log.Warn("Scoring stage degraded", zap.String("property_id", rec.ID()), zap.Error(scoreErr))
	}
	res.Valuation = valRes
	res.Beneficiary = scoreRes

	res.ModelVersion = s.builder.Params().Version()
	if valRes != nil {
		res.ModelVersion = valRes.ModelVersion()
	}

	trace = s.recommendStage(ctx, &res, req, flags.Recommendations, trace, log)
	trace = s.explainStage(ctx, &res, vec, flags.Explanations, trace, log)

	attrs := rec.Location().Attrs()
	suit := domanl.ComputeSuitability(attrs)
	res.Suitability = suit
	res.Predictions = domanl.PredictValueChanges(attrs)
	res.RiskFactors = domanl.IdentifyRisks(attrs, suit)
	res.Opportunities = domanl.IdentifyOpportunities(attrs, suit)

	// Without a beneficiary score the verdict falls back to the neutral
	// midpoint and the suitability-derived safety signal.
	beneficiary, safety := score.NeutralComponent, suit.Safety
	if scoreRes != nil {
		beneficiary = scoreRes.Overall()
		safety = scoreRes.Component(score.ComponentSafety)
	}
	res.Verdict = domanl.Decide(suit.Overall, beneficiary, safety, suit.Disaster, req.Tolerance())

	res.Confidence = fallbackConfidence(vec)
	if valRes != nil {
		res.Confidence = valRes.Confidence()
	}

	outlook := suit.Overall
	if scoreRes != nil {
		outlook = scoreRes.Overall()
	}
	res.Summary = domanl.BuildSummary(res.ValuationExplanation, res.BeneficiaryExplanation, outlook)

	trace = s.insightStage(ctx, &res, flags.MarketInsight, trace, log)

	res.Trace = trace.Append(domanl.StageAssembled, domanl.StatusDone, "")
	res.ElapsedMS = time.Since(started).Milliseconds()
	metrics.AnalysesTotal.WithLabelValues(string(res.Verdict)).Inc()
	return res, nil
}

func (s *Service) recommendStage(
	ctx context.Context, res *domanl.Result, req domanl.Request,
	requested bool, trace domanl.Trace, log *zap.Logger,
) domanl.Trace {
	switch {
	case !requested:
		return trace.Append(domanl.StageRecommendations, domanl.StatusSkipped, "")
	case s.recommender == nil:
		return trace.Append(domanl.StageRecommendations, domanl.StatusSkipped, "recommender not configured")
	}
	defer observeStage(domanl.StageRecommendations, time.Now())

	recs, err := s.recommender.RecommendForRecord(ctx, req.Record(), domrec.StrategyHybrid, req.MaxRecommendations())
	if err != nil {
		log.Warn("Recommendation stage degraded", zap.String("property_id", res.PropertyID), zap.Error(err))
		return trace.Append(domanl.StageRecommendations, domanl.StatusDegraded, err.Error())
	}
	res.Recommendations = recs
	return trace.Append(domanl.StageRecommendations, domanl.StatusDone, "")
}

func (s *Service) explainStage(
	ctx context.Context, res *domanl.Result, vec feature.Vector,
	requested bool, trace domanl.Trace, log *zap.Logger,
) domanl.Trace {
	switch {
	case !requested:
		return trace.Append(domanl.StageExplanations, domanl.StatusSkipped, "")
	case s.explainer == nil:
		return trace.Append(domanl.StageExplanations, domanl.StatusSkipped, "explainer not configured")
	case res.Valuation == nil && res.Beneficiary == nil:
		return trace.Append(domanl.StageExplanations, domanl.StatusSkipped, "no valuation or score to explain")
	}
	defer observeStage(domanl.StageExplanations, time.Now())

	var failures []string
	if res.Valuation != nil {
		exp, err := s.explainer.ExplainValuationVector(ctx, vec, *res.Valuation)
		if err != nil {
			failures = append(failures, err.Error())
		} else {
			res.ValuationExplanation = &exp
		}
	}
	if res.Beneficiary != nil {
		exp, err := s.explainer.ExplainScore(*res.Beneficiary)
		if err != nil {
			failures = append(failures, err.Error())
		} else {
			res.BeneficiaryExplanation = &exp
		}
	}
	if len(failures) > 0 {
		log.Warn("Explanation stage degraded", zap.String("property_id", res.PropertyID),
			zap.Strings("failures", failures))
		return trace.Append(domanl.StageExplanations, domanl.StatusDegraded, strings.Join(failures, "; "))
	}
	return trace.Append(domanl.StageExplanations, domanl.StatusDone, "")
}

func (s *Service) insightStage(
	ctx context.Context, res *domanl.Result, requested bool, trace domanl.Trace, log *zap.Logger,
) domanl.Trace {
	switch {
	case !requested:
		return trace.Append(domanl.StageMarketInsight, domanl.StatusSkipped, "")
	case s.insight == nil:
		return trace.Append(domanl.StageMarketInsight, domanl.StatusSkipped, "insight generation not configured")
	}
	defer observeStage(domanl.StageMarketInsight, time.Now())

	narrative, err := s.insight.Narrative(ctx, *res)
	if err != nil {
		log.Warn("Market insight stage degraded", zap.String("property_id", res.PropertyID), zap.Error(err))
		return trace.Append(domanl.StageMarketInsight, domanl.StatusDegraded, err.Error())
	}
	res.MarketInsight = narrative
	return trace.Append(domanl.StageMarketInsight, domanl.StatusDone, "")
}

// observeStage records the duration of a stage that actually ran.
func observeStage(stage domanl.Stage, start time.Time) {
	metrics.AnalysisStageDuration.WithLabelValues(string(stage)).Observe(time.Since(start).Seconds())
}

func stageOutcome(t domanl.Trace, stage domanl.Stage, requested bool, err error) domanl.Trace {
	switch {
	case !requested:
		return t.Append(stage, domanl.StatusSkipped, "")
	case err != nil:
		return t.Append(stage, domanl.StatusDegraded, err.Error())
	default:
		return t.Append(stage, domanl.StatusDone, "")
	}
}

// fallbackConfidence grades an analysis on data quality alone when no AVM
// uncertainty band is available.
func fallbackConfidence(vec feature.Vector) float64 {
	c := fallbackCompletenessShare*vec.Completeness() + fallbackQualityShare*vec.DataQuality()
	if c < minConfidence {
		return minConfidence
	}
	if c > 1 {
		return 1
	}
	return c
}
