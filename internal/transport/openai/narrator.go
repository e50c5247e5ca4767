package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/propdex/internal/domain"
	"github.com/kailas-cloud/propdex/internal/metrics"
)

const systemPrompt = "You are a real estate market analyst. Summarize the supplied " +
	"analysis for an investor in three to five sentences. Use only the numbers provided."

// Narrator is a market-insight provider using the OpenAI-compatible chat API
// (e.g. Nebius).
type Narrator struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	user        string
	provider    string
	logger      *zap.Logger
}

// Config holds the insight provider settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	User        string
	Provider    string
	Logger      *zap.Logger
}

// NewNarrator creates an OpenAI-compatible insight provider.
func NewNarrator(cfg *Config) *Narrator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL

	return &Narrator{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		user:        cfg.User,
		provider:    cfg.Provider,
		logger:      cfg.Logger,
	}
}

// Generate implements domain.InsightGenerator. Returns the narrative and
// usage with transport-level metrics.
func (n *Narrator) Generate(ctx context.Context, prompt string) (domain.InsightResult, error) {
	req := openai.ChatCompletionRequest{
		Model: n.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: n.temperature,
		User:        n.user,
	}
	if n.maxTokens > 0 {
		req.MaxTokens = n.maxTokens
	}

	start := time.Now()

	resp, err := n.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.InsightRequestsTotal.WithLabelValues(n.provider, n.model, "error").Inc()
		metrics.InsightErrorsTotal.WithLabelValues(n.provider, n.model, "api_error").Inc()
		return domain.InsightResult{}, parseAPIError(err)
	}

	if len(resp.Choices) == 0 {
		metrics.InsightRequestsTotal.WithLabelValues(n.provider, n.model, "error").Inc()
		metrics.InsightErrorsTotal.WithLabelValues(n.provider, n.model, "empty_response").Inc()
		return domain.InsightResult{}, fmt.Errorf("empty completion response: %w", domain.ErrInsightProviderError)
	}

	// Record success metrics
	metrics.InsightRequestsTotal.WithLabelValues(n.provider, n.model, "success").Inc()
	metrics.InsightRequestDuration.WithLabelValues(n.provider, n.model).Observe(duration.Seconds())

	usage := resp.Usage
	if usage.TotalTokens > 0 {
		metrics.InsightTokensTotal.WithLabelValues(n.provider, n.model, "prompt").Add(float64(usage.PromptTokens))
		metrics.InsightTokensTotal.WithLabelValues(n.provider, n.model, "completion").Add(float64(usage.CompletionTokens))
		metrics.InsightTokensTotal.WithLabelValues(n.provider, n.model, "total").Add(float64(usage.TotalTokens))
	}

	return domain.InsightResult{
		Narrative:        resp.Choices[0].Message.Content,
		Model:            resp.Model,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		TotalTokens:      usage.TotalTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (n *Narrator) HealthCheck(ctx context.Context) error {
	if _, err := n.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrInsightProviderError for correct 502 mapping.
func parseAPIError(err error) error {
	wrap := domain.ErrInsightProviderError

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail != "" {
			return fmt.Errorf("insight API error %d: %s: %w",
				reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("insight API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("insight API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("insight request failed: %w", wrap)
}

// extractDetail extracts the "detail" field from a JSON error body (Nebius error format).
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
