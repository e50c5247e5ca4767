package domain

import "context"

// InsightGenerator is the shared market-narrative contract between layers.
type InsightGenerator interface {
	Generate(ctx context.Context, prompt string) (InsightResult, error)
}

// HealthChecker verifies insight provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// InsightResult carries a generated narrative and its token usage through
// the decorator chain.
type InsightResult struct {
	Narrative        string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
