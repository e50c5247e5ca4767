package metrics

import "github.com/prometheus/client_golang/prometheus"

// Engine Prometheus metrics.
var (
	AnalysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "propdex",
			Name:      "analyses_total",
			Help:      "Total comprehensive analyses by verdict",
		},
		[]string{"verdict"},
	)

	AnalysisStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "propdex",
			Name:      "analysis_stage_duration_seconds",
			Help:      "Analysis pipeline stage duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"stage"},
	)

	PredictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "propdex",
			Name:      "predictions_total",
			Help:      "Total valuation and scoring predictions",
		},
		[]string{"kind", "status"},
	)

	ModelTrainingSamples = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "propdex",
			Name:      "model_training_samples",
			Help:      "Training set size of the registered model artifact",
		},
		[]string{"version"},
	)

	ActiveModelInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "propdex",
			Name:      "model_active_info",
			Help:      "Active model artifact (1 = active)",
		},
		[]string{"version"},
	)

	InsightRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "propdex",
			Name:      "insight_requests_total",
			Help:      "Total market-insight generation requests",
		},
		[]string{"provider", "model", "status"},
	)

	InsightRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "propdex",
			Name:      "insight_request_duration_seconds",
			Help:      "Market-insight request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider", "model"},
	)

	InsightTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "propdex",
			Name:      "insight_tokens_total",
			Help:      "Total market-insight tokens consumed",
		},
		[]string{"provider", "model", "type"},
	)

	InsightErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "propdex",
			Name:      "insight_errors_total",
			Help:      "Total market-insight errors",
		},
		[]string{"provider", "model", "error_type"},
	)

	InsightBudgetCallsRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "propdex",
			Name:      "insight_budget_calls_remaining",
			Help:      "Remaining insight call budget",
		},
		[]string{"provider", "period"},
	)
)

var engineMetricsRegistered bool

// RegisterEngineMetrics registers the engine Prometheus metrics. Must be
// called once from main.
func RegisterEngineMetrics() {
	if engineMetricsRegistered {
		return
	}
	prometheus.MustRegister(AnalysesTotal)
	prometheus.MustRegister(AnalysisStageDuration)
	prometheus.MustRegister(PredictionsTotal)
	prometheus.MustRegister(ModelTrainingSamples)
	prometheus.MustRegister(ActiveModelInfo)
	prometheus.MustRegister(InsightRequestsTotal)
	prometheus.MustRegister(InsightRequestDuration)
	prometheus.MustRegister(InsightTokensTotal)
	prometheus.MustRegister(InsightErrorsTotal)
	prometheus.MustRegister(InsightBudgetCallsRemaining)
	engineMetricsRegistered = true
}
