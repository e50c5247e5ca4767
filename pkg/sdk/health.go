package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Liveness checks that the server process is up.
func (c *Client) Liveness(ctx context.Context) (Health, error) {
	var out Health
	if _, err := c.do(ctx, http.MethodGet, "/healthz", nil, &out); err != nil {
		return Health{}, fmt.Errorf("liveness: %w", err)
	}
	return out, nil
}

// Readiness reports per-component health. A degraded server answers
// 503 but the report is still returned with a nil error so callers can
// inspect the failing checks.
func (c *Client) Readiness(ctx context.Context) (Health, error) {
	resp, err := c.send(ctx, http.MethodGet, "/readyz", nil)
	if err != nil {
		return Health{}, fmt.Errorf("readiness: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusServiceUnavailable {
		return Health{}, fmt.Errorf("readiness: %w", parseAPIError(resp))
	}
	var out Health
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Health{}, fmt.Errorf("readiness: decode response: %w", err)
	}
	return out, nil
}

// Version reports the server build information.
func (c *Client) Version(ctx context.Context) (VersionInfo, error) {
	var out VersionInfo
	if _, err := c.do(ctx, http.MethodGet, "/version", nil, &out); err != nil {
		return VersionInfo{}, fmt.Errorf("version: %w", err)
	}
	return out, nil
}
