package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/propdex/internal/config"
	"github.com/kailas-cloud/propdex/internal/db"
	dbRedis "github.com/kailas-cloud/propdex/internal/db/redis"
	dbValkey "github.com/kailas-cloud/propdex/internal/db/valkey"
	"github.com/kailas-cloud/propdex/internal/domain"
	"github.com/kailas-cloud/propdex/internal/domain/feature"
	"github.com/kailas-cloud/propdex/internal/domain/score"
	logpkg "github.com/kailas-cloud/propdex/internal/logger"
	"github.com/kailas-cloud/propdex/internal/metrics"
	"github.com/kailas-cloud/propdex/internal/model"
	budgetrepo "github.com/kailas-cloud/propdex/internal/repository/budget"
	catalogrepo "github.com/kailas-cloud/propdex/internal/repository/catalog"
	interactionrepo "github.com/kailas-cloud/propdex/internal/repository/interaction"
	valuationrepo "github.com/kailas-cloud/propdex/internal/repository/valuation"
	chiTransport "github.com/kailas-cloud/propdex/internal/transport/chi"
	openaiInsight "github.com/kailas-cloud/propdex/internal/transport/openai"
	analysisuc "github.com/kailas-cloud/propdex/internal/usecase/analysis"
	cataloguc "github.com/kailas-cloud/propdex/internal/usecase/catalog"
	explainuc "github.com/kailas-cloud/propdex/internal/usecase/explain"
	healthuc "github.com/kailas-cloud/propdex/internal/usecase/health"
	insightuc "github.com/kailas-cloud/propdex/internal/usecase/insight"
	interactionuc "github.com/kailas-cloud/propdex/internal/usecase/interaction"
	recommenduc "github.com/kailas-cloud/propdex/internal/usecase/recommend"
	scoringuc "github.com/kailas-cloud/propdex/internal/usecase/scoring"
	usageuc "github.com/kailas-cloud/propdex/internal/usecase/usage"
	valuationuc "github.com/kailas-cloud/propdex/internal/usecase/valuation"
	"github.com/kailas-cloud/propdex/internal/version"
)

// maxTrainingVectors caps how many stored feature vectors one training run
// pulls from the catalog.
const maxTrainingVectors = 10000

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting propdex analysis engine",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("model_mode", cfg.Model.Mode),
	)

	// Create database store based on driver
	var store db.Store
	switch cfg.Database.Driver {
	case "valkey":
		store, err = dbValkey.NewStore(dbValkey.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
	case "redis":
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
	default:
		logger.Fatal("Unknown database driver", zap.String("driver", cfg.Database.Driver))
	}
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register engine metrics explicitly (no init())
	metrics.RegisterEngineMetrics()

	builder := feature.NewBuilder(feature.DefaultParams())

	catalogRepo := catalogrepo.New(store)
	if err := catalogRepo.EnsureIndexes(ctx); err != nil {
		logger.Fatal("Failed to create catalog indexes", zap.Error(err))
	}

	// Train and rotate in the valuation model before serving traffic, so
	// every request sees one immutable artifact.
	registry := model.NewRegistry()
	artifact, trained, err := trainArtifact(ctx, cfg.Model, catalogRepo, logger)
	if err != nil {
		logger.Fatal("Model training failed", zap.Error(err))
	}
	if err := registry.Register(artifact); err != nil {
		logger.Fatal("Failed to register model artifact", zap.Error(err))
	}
	if err := registry.Rotate(artifact.Version()); err != nil {
		logger.Fatal("Failed to activate model artifact", zap.Error(err))
	}
	metrics.ModelTrainingSamples.WithLabelValues(artifact.Version()).Set(float64(trained))
	metrics.ActiveModelInfo.WithLabelValues(artifact.Version()).Set(1)
	logger.Info("Valuation model ready",
		zap.String("mode", cfg.Model.Mode),
		zap.String("model_version", artifact.Version()),
		zap.Int("training_samples", trained),
	)

	// Create repositories (domain-native, no adapters)
	valuationRepo := valuationrepo.New(store, time.Duration(cfg.Model.ValuationTTLSec)*time.Second)
	interactionRepo := interactionrepo.New(store)

	scoringDefaults, err := score.NewWeightsFromMap(cfg.Scoring.Weights)
	if err != nil {
		logger.Fatal("Invalid scoring weights", zap.Error(err))
	}

	// Create use case services
	valuationSvc := valuationuc.New(builder, registry, valuationRepo)
	scoringSvc := scoringuc.New(builder, scoringDefaults)
	recommendSvc := recommenduc.New(catalogRepo, interactionRepo, builder).WithTuning(
		cfg.Recommend.KNNOversample,
		cfg.Recommend.MinContentSimilarity,
		cfg.Recommend.ContentWeight,
		cfg.Recommend.CollabWeight,
	)
	explainSvc := explainuc.New(builder, registry, valuationRepo)
	analysisSvc := analysisuc.New(builder, valuationSvc, scoringSvc, recommendSvc, explainSvc)
	catalogSvc := cataloguc.New(catalogRepo, builder)
	interactionSvc := interactionuc.New(interactionRepo)

	// Market insight chain — composition root
	var budget *insightuc.BudgetTracker
	var insightChecker healthuc.InsightChecker
	if cfg.Insight.Enabled {
		budgetCfg := cfg.Insight.Budget
		if budgetCfg.DailyCallLimit > 0 || budgetCfg.MonthlyCallLimit > 0 {
			action := insightuc.BudgetActionWarn
			if budgetCfg.Action == "reject" {
				action = insightuc.BudgetActionReject
			}
			budget = insightuc.NewBudgetTracker(
				budgetCfg.DailyCallLimit, budgetCfg.MonthlyCallLimit, action, logger,
			)
			// Connect persistence store — loads current counters from DB.
			budgetStore := budgetrepo.New(store, 48*time.Hour, 62*24*time.Hour)
			budget.WithStore(ctx, budgetStore)
		}

		narrator := openaiInsight.NewNarrator(&openaiInsight.Config{
			APIKey:    cfg.Insight.APIKey,
			BaseURL:   cfg.Insight.BaseURL,
			Model:     cfg.Insight.Model,
			MaxTokens: cfg.Insight.MaxTokens,
			Provider:  "openai",
			Logger:    logger,
		})

		// Each narrative call gets its own deadline, independent of the
		// request context.
		var generator domain.InsightGenerator = &timeoutGenerator{
			inner:   narrator,
			timeout: time.Duration(cfg.Insight.TimeoutSec) * time.Second,
		}

		insightSvc := insightuc.New(generator, "openai", cfg.Insight.Model, logger)
		if budget != nil {
			insightSvc = insightSvc.WithBudget(budget)
		}
		analysisSvc = analysisSvc.WithInsight(insightSvc)
		insightChecker = narrator

		logger.Info("Market insight enabled",
			zap.String("model", cfg.Insight.Model),
			zap.Int64("daily_call_limit", budgetCfg.DailyCallLimit),
			zap.Int64("monthly_call_limit", budgetCfg.MonthlyCallLimit),
		)
	}

	// Pass nil interface (not typed nil pointer!) if budget is not configured.
	// Go gotcha: (*BudgetTracker)(nil) wrapped in BudgetReader != nil.
	var budgetReader usageuc.BudgetReader
	if budget != nil {
		budgetReader = budget
	}
	usageSvc := usageuc.New(budgetReader, cfg.Insight.Model)

	// Health service
	healthSvc := healthuc.New(store, registry, insightChecker)

	// Create chi server
	server := chiTransport.NewServer(
		analysisSvc, valuationSvc, scoringSvc, recommendSvc, explainSvc,
		interactionSvc, catalogSvc, usageSvc, healthSvc, logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// trainArtifact builds the configured valuation artifact: the closed-form
// heuristic surface, or a forest fitted on catalog feature vectors when
// enough are stored and on the seeded synthetic population otherwise.
func trainArtifact(
	ctx context.Context,
	mcfg config.ModelConfig,
	catalog *catalogrepo.Repo,
	logger *zap.Logger,
) (model.Artifact, int, error) {
	if mcfg.Mode == "heuristic" {
		return model.NewHeuristic(mcfg.Version), 0, nil
	}

	samples, targets := trainingSet(ctx, mcfg, catalog, logger)

	forest, err := model.TrainForest(model.TrainConfig{
		Trees:       mcfg.Trees,
		MaxDepth:    mcfg.MaxDepth,
		MinLeaf:     mcfg.MinLeaf,
		Seed:        mcfg.Seed,
		Calibration: mcfg.Calibration,
		Version:     mcfg.Version,
	}, samples, targets)
	if err != nil {
		return nil, 0, err
	}
	return forest, len(samples), nil
}

// trainingSet prefers stored catalog vectors, labeled by the heuristic value
// surface; a thin or unreadable catalog falls back to the synthetic
// population so the engine always boots with a working model.
func trainingSet(
	ctx context.Context,
	mcfg config.ModelConfig,
	catalog *catalogrepo.Repo,
	logger *zap.Logger,
) ([][]float64, []float64) {
	count, err := catalog.Count(ctx)
	if err != nil {
		logger.Warn("Catalog count failed, training on synthetic population", zap.Error(err))
		return model.SyntheticPopulation(mcfg.SyntheticSamples, mcfg.Seed)
	}
	if count < mcfg.MinCatalogSamples {
		logger.Info("Catalog below training threshold, using synthetic population",
			zap.Int("catalog_size", count),
			zap.Int("required", mcfg.MinCatalogSamples),
		)
		return model.SyntheticPopulation(mcfg.SyntheticSamples, mcfg.Seed)
	}

	vectors, err := catalog.FeatureVectors(ctx, maxTrainingVectors)
	if err != nil || len(vectors) < model.MinTrainSamples {
		logger.Warn("Catalog vectors unavailable, training on synthetic population",
			zap.Int("vectors", len(vectors)),
			zap.Error(err),
		)
		return model.SyntheticPopulation(mcfg.SyntheticSamples, mcfg.Seed)
	}

	labeler := model.NewHeuristic(mcfg.Version)
	samples := make([][]float64, 0, len(vectors))
	targets := make([]float64, 0, len(vectors))
	for _, vec := range vectors {
		value, _, err := labeler.Predict(vec)
		if err != nil {
			continue // stored vector from an older feature schema
		}
		samples = append(samples, vec)
		targets = append(targets, value)
	}
	if len(samples) < model.MinTrainSamples {
		logger.Warn("Too few usable catalog vectors, training on synthetic population",
			zap.Int("usable", len(samples)),
		)
		return model.SyntheticPopulation(mcfg.SyntheticSamples, mcfg.Seed)
	}

	logger.Info("Training on catalog vectors", zap.Int("samples", len(samples)))
	return samples, targets
}

// timeoutGenerator bounds each insight generation call.
type timeoutGenerator struct {
	inner   domain.InsightGenerator
	timeout time.Duration
}

func (g *timeoutGenerator) Generate(ctx context.Context, prompt string) (domain.InsightResult, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.inner.Generate(ctx, prompt)
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]map[string]string{
						"error": {
							"code":    "internal_error",
							"message": "internal error",
						},
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
