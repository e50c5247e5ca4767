package propdex

import (
	"context"
	"time"

	domusage "github.com/kailas-cloud/propdex/internal/domain/usage"
)

// UsagePeriod selects the reporting window of a usage report.
type UsagePeriod string

const (
	UsageDay   UsagePeriod = "day"
	UsageMonth UsagePeriod = "month"
	UsageTotal UsagePeriod = "total"
)

// UsageMetrics counts the insight calls of the reporting window.
type UsageMetrics struct {
	InsightRequests  int
	Tokens           int
	CostMillidollars int
}

// BudgetStatus reports the insight call budget. A zero CallsLimit means no
// budget is enforced.
type BudgetStatus struct {
	CallsLimit     int
	CallsRemaining int
	IsExhausted    bool
	ResetsAt       time.Time
}

// UsageReport is the insight usage of one reporting window.
type UsageReport struct {
	Period      UsagePeriod
	PeriodStart time.Time
	PeriodEnd   time.Time
	Model       string
	Metrics     UsageMetrics
	Budget      BudgetStatus
}

// Usage reports insight usage for a period. The embedded client runs no
// insight provider, so counters stay zero and no budget is enforced.
func (c *Client) Usage(ctx context.Context, period UsagePeriod) UsageReport {
	start := time.Now()
	defer func() { c.obs.observe("usage", start, nil) }()

	report := c.usageSvc.GetReport(ctx, domusage.Period(period))
	m := report.Metrics()
	b := report.Budget()
	return UsageReport{
		Period:      UsagePeriod(report.Period()),
		PeriodStart: time.UnixMilli(report.PeriodStart()).UTC(),
		PeriodEnd:   time.UnixMilli(report.PeriodEnd()).UTC(),
		Model:       report.Model(),
		Metrics: UsageMetrics{
			InsightRequests:  m.InsightRequests(),
			Tokens:           m.Tokens(),
			CostMillidollars: m.CostMillidollars(),
		},
		Budget: BudgetStatus{
			CallsLimit:     b.CallsLimit(),
			CallsRemaining: b.CallsRemaining(),
			IsExhausted:    b.IsExhausted(),
			ResetsAt:       time.UnixMilli(b.ResetsAt()).UTC(),
		},
	}
}

type usageUseCase interface {
	GetReport(ctx context.Context, period domusage.Period) domusage.Report
}
