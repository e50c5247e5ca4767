package propdex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/propdex/internal/db"
	dbRedis "github.com/kailas-cloud/propdex/internal/db/redis"
	dbValkey "github.com/kailas-cloud/propdex/internal/db/valkey"
	domanl "github.com/kailas-cloud/propdex/internal/domain/analysis"
	dombatch "github.com/kailas-cloud/propdex/internal/domain/batch"
	domexp "github.com/kailas-cloud/propdex/internal/domain/explain"
	"github.com/kailas-cloud/propdex/internal/domain/feature"
	dominter "github.com/kailas-cloud/propdex/internal/domain/interaction"
	"github.com/kailas-cloud/propdex/internal/domain/property"
	domrec "github.com/kailas-cloud/propdex/internal/domain/recommend"
	"github.com/kailas-cloud/propdex/internal/domain/score"
	domval "github.com/kailas-cloud/propdex/internal/domain/valuation"
	"github.com/kailas-cloud/propdex/internal/model"
	catalogrepo "github.com/kailas-cloud/propdex/internal/repository/catalog"
	interactionrepo "github.com/kailas-cloud/propdex/internal/repository/interaction"
	valuationrepo "github.com/kailas-cloud/propdex/internal/repository/valuation"
	analysisuc "github.com/kailas-cloud/propdex/internal/usecase/analysis"
	batchuc "github.com/kailas-cloud/propdex/internal/usecase/batch"
	cataloguc "github.com/kailas-cloud/propdex/internal/usecase/catalog"
	explainuc "github.com/kailas-cloud/propdex/internal/usecase/explain"
	healthuc "github.com/kailas-cloud/propdex/internal/usecase/health"
	interactionuc "github.com/kailas-cloud/propdex/internal/usecase/interaction"
	recommenduc "github.com/kailas-cloud/propdex/internal/usecase/recommend"
	scoringuc "github.com/kailas-cloud/propdex/internal/usecase/scoring"
	usageuc "github.com/kailas-cloud/propdex/internal/usecase/usage"
	valuationuc "github.com/kailas-cloud/propdex/internal/usecase/valuation"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultValuationTTL     = 24 * time.Hour
)

// Use-case contracts consumed by the facades. Defined here so tests can
// substitute fakes without touching the internal packages.
type catalogUseCase interface {
	Upsert(ctx context.Context, rec property.Record) (bool, error)
	Get(ctx context.Context, id string) (property.Record, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, cursor string, limit int) ([]property.Record, string, error)
	Count(ctx context.Context) (int, error)
}

type batchUseCase interface {
	Upsert(ctx context.Context, recs []property.Record) []dombatch.Result
	Delete(ctx context.Context, ids []string) []dombatch.Result
}

type valuationUseCase interface {
	Value(ctx context.Context, rec property.Record) (domval.Result, feature.Vector, error)
}

type scoringUseCase interface {
	Score(ctx context.Context, rec property.Record, custom map[string]float64) (score.Result, feature.Vector, error)
	ModelVersion() string
}

type recommendUseCase interface {
	Recommend(ctx context.Context, req domrec.Request) ([]domrec.Recommendation, error)
}

type explainUseCase interface {
	ExplainValuationVector(ctx context.Context, vec feature.Vector, res domval.Result) (domexp.Explanation, error)
	ExplainStored(ctx context.Context, propertyID string) (domexp.Explanation, error)
	ExplainScore(res score.Result) (domexp.Explanation, error)
}

type analysisUseCase interface {
	Analyze(ctx context.Context, req domanl.Request) (domanl.Result, error)
}

type interactionUseCase interface {
	Record(ctx context.Context, userID, propertyID string, kind dominter.Kind) (dominter.Event, error)
}

// Client is the embedded property analysis engine. It owns the database
// connection and the valuation model built at startup. Safe for concurrent
// use; create one per process and Close it when done.
type Client struct {
	store db.Store

	catalogSvc     catalogUseCase
	batchSvc       batchUseCase
	valuationSvc   valuationUseCase
	scoringSvc     scoringUseCase
	recommendSvc   recommendUseCase
	explainSvc     explainUseCase
	analysisSvc    analysisUseCase
	interactionSvc interactionUseCase
	healthSvc      healthUseCase
	usageSvc       usageUseCase

	weights score.Weights
	obs     *observer
}

// New connects to the database, builds the valuation model and returns a
// ready client. A database option (WithValkey or WithRedis) is required.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		modelVersion: feature.DefaultParams().Version(),
		valuationTTL: defaultValuationTTL,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("propdex: database address required (use WithValkey or WithRedis)")
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("propdex: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}

	c, err := wireClient(ctx, store, cfg, obs)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "valkey":
		store, err := dbValkey.NewStore(dbValkey.Config{Addrs: cfg.addrs, Password: cfg.password})
		if err != nil {
			return nil, fmt.Errorf("propdex: create valkey store: %w", err)
		}
		return store, nil
	case "redis":
		store, err := dbRedis.NewStore(dbRedis.Config{Addrs: cfg.addrs, Password: cfg.password})
		if err != nil {
			return nil, fmt.Errorf("propdex: create redis store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("propdex: unknown driver %q", cfg.driver)
	}
}

// buildArtifact assembles the valuation artifact the client starts with:
// the heuristic pricer, or a forest trained on a synthetic population when
// WithForestModel was given.
func buildArtifact(cfg *clientConfig) (model.Artifact, error) {
	if cfg.forestSamples <= 0 {
		return model.NewHeuristic(cfg.modelVersion), nil
	}
	tc := model.DefaultTrainConfig(cfg.modelVersion)
	if cfg.forestTrees > 0 {
		tc.Trees = cfg.forestTrees
	}
	samples, targets := model.SyntheticPopulation(cfg.forestSamples, tc.Seed)
	forest, err := model.TrainForest(tc, samples, targets)
	if err != nil {
		return nil, fmt.Errorf("propdex: train valuation model: %w", err)
	}
	return forest, nil
}

func wireClient(ctx context.Context, store db.Store, cfg *clientConfig, obs *observer) (*Client, error) {
	defaults, err := score.NewWeightsFromMap(cfg.scoringWeights)
	if err != nil {
		return nil, fmt.Errorf("propdex: scoring weights: %w", err)
	}

	artifact, err := buildArtifact(cfg)
	if err != nil {
		return nil, err
	}
	registry := model.NewRegistry()
	if err := registry.Register(artifact); err != nil {
		return nil, fmt.Errorf("propdex: register model: %w", err)
	}
	if err := registry.Rotate(artifact.Version()); err != nil {
		return nil, fmt.Errorf("propdex: activate model: %w", err)
	}

	builder := feature.NewBuilder(feature.DefaultParams())

	catalogRepo := catalogrepo.New(store)
	valuationRepo := valuationrepo.New(store, cfg.valuationTTL)
	interactionRepo := interactionrepo.New(store)

	catalogSvc := cataloguc.New(catalogRepo, builder)
	if err := catalogSvc.EnsureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("propdex: ensure catalog indexes: %w", err)
	}

	valuationSvc := valuationuc.New(builder, registry, valuationRepo)
	scoringSvc := scoringuc.New(builder, defaults)
	recommendSvc := recommenduc.New(catalogRepo, interactionRepo, builder).
		WithTuning(cfg.recOversample, cfg.recMinContentSim, cfg.recContentWeight, cfg.recCollabWeight)
	explainSvc := explainuc.New(builder, registry, valuationRepo)

	return &Client{
		store:          store,
		catalogSvc:     catalogSvc,
		batchSvc:       batchuc.New(catalogRepo, builder).WithMaxBatchSize(cfg.maxBatchSize),
		valuationSvc:   valuationSvc,
		scoringSvc:     scoringSvc,
		recommendSvc:   recommendSvc,
		explainSvc:     explainSvc,
		analysisSvc:    analysisuc.New(builder, valuationSvc, scoringSvc, recommendSvc, explainSvc),
		interactionSvc: interactionuc.New(interactionRepo),
		healthSvc:      healthuc.New(store, registry, nil),
		usageSvc:       usageuc.New(nil, ""),
		weights:        defaults,
		obs:            obs,
	}, nil
}

// Close releases the database connection. The client is unusable afterwards.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	return c.store.Ping(ctx)
}

// Properties returns the catalog facade.
func (c *Client) Properties() *PropertyService {
	return &PropertyService{svc: c.catalogSvc, batch: c.batchSvc, obs: c.obs}
}

// Valuation returns the pricing facade.
func (c *Client) Valuation() *ValuationService {
	return &ValuationService{valuer: c.valuationSvc, explainer: c.explainSvc, obs: c.obs}
}

// Scoring returns the beneficiary scoring facade.
func (c *Client) Scoring() *ScoringService {
	return &ScoringService{scorer: c.scoringSvc, explainer: c.explainSvc, obs: c.obs}
}

// Recommendations returns the similar-property facade.
func (c *Client) Recommendations() *RecommendationService {
	return &RecommendationService{svc: c.recommendSvc, obs: c.obs}
}

// Analysis returns the comprehensive analysis facade.
func (c *Client) Analysis() *AnalysisService {
	return &AnalysisService{svc: c.analysisSvc, defaults: c.weights, obs: c.obs}
}

// Interactions returns the interaction recording facade.
func (c *Client) Interactions() *InteractionService {
	return &InteractionService{svc: c.interactionSvc, obs: c.obs}
}
