package propdex

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the client.
type Option interface {
	apply(*clientConfig)
}

type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver   string
	addrs    []string
	password string

	modelVersion  string
	forestTrees   int
	forestSamples int

	scoringWeights map[string]float64

	recOversample    int
	recMinContentSim float64
	recContentWeight float64
	recCollabWeight  float64

	valuationTTL time.Duration
	maxBatchSize int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithValkey connects to a Valkey instance. Password may be empty.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis connects to a Redis instance. Password may be empty.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithModelVersion overrides the version label of the valuation artifact
// built at startup. Default: the feature schema version.
func WithModelVersion(version string) Option {
	return optionFunc(func(c *clientConfig) {
		c.modelVersion = version
	})
}

// WithForestModel trains a calibrated regression forest on a synthetic
// population during New instead of using the heuristic pricer. trees <= 0
// keeps the default forest size; samples is the population size and must be
// at least the training minimum.
func WithForestModel(trees, samples int) Option {
	return optionFunc(func(c *clientConfig) {
		c.forestTrees = trees
		c.forestSamples = samples
	})
}

// WithScoringWeights overlays the default beneficiary weights. Keys are
// component names; values must lie in [0, 10]. Unknown keys fail New.
func WithScoringWeights(weights map[string]float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.scoringWeights = weights
	})
}

// WithRecommendTuning adjusts the hybrid recommender. Zero values keep the
// corresponding default.
func WithRecommendTuning(oversample int, minContentSim, contentWeight, collabWeight float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.recOversample = oversample
		c.recMinContentSim = minContentSim
		c.recContentWeight = contentWeight
		c.recCollabWeight = collabWeight
	})
}

// WithValuationTTL sets the retention of persisted valuation snapshots.
// Default: 24h. Zero or negative disables expiry.
func WithValuationTTL(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.valuationTTL = ttl
	})
}

// WithMaxBatchSize caps the number of items per batch call. Default: 500.
func WithMaxBatchSize(size int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxBatchSize = size
	})
}

// WithLogger sets the logger for SDK operations. Default: no logging.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK operation metrics on reg.
// Default: no metrics.
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
