package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client talks to a propdex server over its JSON API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a Client for the server at baseURL, e.g.
// "http://localhost:8080".
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("propdex: base URL required")
	}

	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	if cfg.timeout > 0 {
		hc.Timeout = cfg.timeout
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     cfg.apiKey,
		httpClient: hc,
	}, nil
}

// Properties returns the catalog service.
func (c *Client) Properties() *PropertyService {
	return &PropertyService{client: c}
}

// Valuation returns the valuation service.
func (c *Client) Valuation() *ValuationService {
	return &ValuationService{client: c}
}

// Scoring returns the beneficiary scoring service.
func (c *Client) Scoring() *ScoringService {
	return &ScoringService{client: c}
}

// Recommendations returns the recommendation service.
func (c *Client) Recommendations() *RecommendationService {
	return &RecommendationService{client: c}
}

// Analysis returns the analysis pipeline service.
func (c *Client) Analysis() *AnalysisService {
	return &AnalysisService{client: c}
}

// Interactions returns the user interaction service.
func (c *Client) Interactions() *InteractionService {
	return &InteractionService{client: c}
}

// send performs one HTTP round trip. The caller owns the response body.
func (c *Client) send(ctx context.Context, method, path string, in any) (*http.Response, error) {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	return resp, nil
}

// do sends a request and decodes a 2xx response into out when out is
// non-nil. Non-2xx responses come back as *APIError.
func (c *Client) do(ctx context.Context, method, path string, in, out any) (int, error) {
	resp, err := c.send(ctx, method, path, in)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return resp.StatusCode, parseAPIError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}
