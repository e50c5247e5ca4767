package propdex

// AnalysisOption configures one comprehensive analysis run.
type AnalysisOption interface {
	applyAnalysis(*analysisConfig)
}

type analysisOptionFunc func(*analysisConfig)

func (f analysisOptionFunc) applyAnalysis(c *analysisConfig) { f(c) }

type analysisConfig struct {
	tolerance          RiskTolerance
	weights            map[string]float64
	maxRecommendations int
	radiusKM           float64

	skipValuation       bool
	skipScore           bool
	skipRecommendations bool
	skipExplanations    bool
}

// WithRiskTolerance sets the verdict thresholds. Default: medium.
func WithRiskTolerance(t RiskTolerance) AnalysisOption {
	return analysisOptionFunc(func(c *analysisConfig) {
		c.tolerance = t
	})
}

// WithWeights overlays the client scoring weights for this run only.
func WithWeights(weights map[string]float64) AnalysisOption {
	return analysisOptionFunc(func(c *analysisConfig) {
		c.weights = weights
	})
}

// WithMaxRecommendations caps the similar-property list.
// Default: 10, capped at 50.
func WithMaxRecommendations(n int) AnalysisOption {
	return analysisOptionFunc(func(c *analysisConfig) {
		c.maxRecommendations = n
	})
}

// WithRecommendationRadius sets the candidate radius in kilometres for the
// recommendation stage. Default: 10, capped at 100.
func WithRecommendationRadius(km float64) AnalysisOption {
	return analysisOptionFunc(func(c *analysisConfig) {
		c.radiusKM = km
	})
}

// WithoutValuation skips the valuation stage.
func WithoutValuation() AnalysisOption {
	return analysisOptionFunc(func(c *analysisConfig) {
		c.skipValuation = true
	})
}

// WithoutScore skips the beneficiary scoring stage. The verdict then rests
// on valuation confidence and suitability alone.
func WithoutScore() AnalysisOption {
	return analysisOptionFunc(func(c *analysisConfig) {
		c.skipScore = true
	})
}

// WithoutRecommendations skips the similar-property stage.
func WithoutRecommendations() AnalysisOption {
	return analysisOptionFunc(func(c *analysisConfig) {
		c.skipRecommendations = true
	})
}

// WithoutExplanations skips the explanation stages and the summary built
// from them.
func WithoutExplanations() AnalysisOption {
	return analysisOptionFunc(func(c *analysisConfig) {
		c.skipExplanations = true
	})
}
