package propdex

import (
	"context"
	"time"

	healthuc "github.com/kailas-cloud/propdex/internal/usecase/health"
)

// HealthStatus reports the state of the client's components. Status is
// "ok", "degraded" or "error"; Checks holds one "ok"/"error" entry per
// component.
type HealthStatus struct {
	Status string
	Checks map[string]string
}

// Health checks the database and the valuation model.
func (c *Client) Health(ctx context.Context) HealthStatus {
	start := time.Now()
	defer func() { c.obs.observe("health", start, nil) }()

	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for name, result := range report.Checks {
		checks[name] = string(result)
	}
	return HealthStatus{Status: string(report.Status), Checks: checks}
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}
