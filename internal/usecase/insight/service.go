// Package insight turns assembled analysis numbers into a short market
// narrative via a chat-completion provider. Generation is optional and
// budgeted; the deterministic pipeline never depends on it.
package insight

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/propdex/internal/domain"
	domanl "github.com/kailas-cloud/propdex/internal/domain/analysis"
	"github.com/kailas-cloud/propdex/internal/metrics"
)

// BudgetChecker gates generation calls and tracks usage.
// Call Check before generating, Record after success.
type BudgetChecker interface {
	Check(ctx context.Context) error
	Record(tokens int64)
	RemainingDaily() int64
	RemainingMonthly() int64
}

// Service produces market narratives over assembled analysis results.
// Transport metrics (requests, duration, tokens) are recorded in
// transport/openai; this layer owns budget enforcement and budget gauges.
type Service struct {
	generator domain.InsightGenerator
	provider  string
	model     string
	budget    BudgetChecker
	logger    *zap.Logger
}

// New creates an insight service over the given generator. provider and
// model label the budget gauges and logs.
func New(generator domain.InsightGenerator, provider, model string, logger *zap.Logger) *Service {
	return &Service{
		generator: generator,
		provider:  provider,
		model:     model,
		logger:    logger,
	}
}

// WithBudget attaches a call budget checked before every generation.
func (s *Service) WithBudget(budget BudgetChecker) *Service {
	s.budget = budget
	return s
}

// Narrative renders the analysis prompt and asks the provider for a grounded
// market summary.
func (s *Service) Narrative(ctx context.Context, res domanl.Result) (string, error) {
	if s.budget != nil {
		if err := s.budget.Check(ctx); err != nil {
			s.logger.Warn("Insight budget check failed",
				zap.String("provider", s.provider),
				zap.String("property_id", res.PropertyID),
				zap.Error(err),
			)
			return "", fmt.Errorf("budget check: %w", err)
		}
	}

	start := time.Now()
	out, err := s.generator.Generate(ctx, BuildPrompt(res))
	if err != nil {
		return "", err
	}

	narrative := strings.TrimSpace(out.Narrative)
	if narrative == "" {
		return "", fmt.Errorf("%w: empty narrative", domain.ErrInsightProviderError)
	}

	if s.budget != nil {
		// One generation call per narrative regardless of token count.
		s.budget.Record(int64(out.TotalTokens))

		remaining := metrics.InsightBudgetCallsRemaining
		remaining.WithLabelValues(s.provider, "daily").Set(float64(s.budget.RemainingDaily()))
		remaining.WithLabelValues(s.provider, "monthly").Set(float64(s.budget.RemainingMonthly()))
	}

	s.logger.Debug("Market insight generated",
		zap.String("provider", s.provider),
		zap.String("model", out.Model),
		zap.String("property_id", res.PropertyID),
		zap.Int("total_tokens", out.TotalTokens),
		zap.Duration("duration", time.Since(start)),
	)
	return narrative, nil
}
