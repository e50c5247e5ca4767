package sdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Usage reports insight generation usage and budget state for a period
// (PeriodDay, PeriodMonth or PeriodTotal). An empty period keeps the
// server default of a month.
func (c *Client) Usage(ctx context.Context, period string) (UsageReport, error) {
	path := "/v1/usage"
	if period != "" {
		path += "?period=" + url.QueryEscape(period)
	}
	var out UsageReport
	if _, err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return UsageReport{}, fmt.Errorf("get usage: %w", err)
	}
	return out, nil
}
