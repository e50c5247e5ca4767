package usage

import (
	"testing"

	"github.com/kailas-cloud/propdex/internal/domain/usage/budget"
	"github.com/kailas-cloud/propdex/internal/domain/usage/metrics"
)

func TestNewReport(t *testing.T) {
	m := metrics.New(42, 18000, 9)
	b := budget.New(500, 458, false, 1700000000000)

	r := NewReport(PeriodMonth, 1700000000, 1702600000, "gpt-4o-mini", m, b)

	if r.Period() != PeriodMonth {
		t.Errorf("Period() = %q", r.Period())
	}
	if r.PeriodStart() != 1700000000 {
		t.Errorf("PeriodStart() = %d", r.PeriodStart())
	}
	if r.PeriodEnd() != 1702600000 {
		t.Errorf("PeriodEnd() = %d", r.PeriodEnd())
	}
	if r.Model() != "gpt-4o-mini" {
		t.Errorf("Model() = %q", r.Model())
	}
	if r.Metrics().InsightRequests() != 42 {
		t.Errorf("Metrics().InsightRequests() = %d", r.Metrics().InsightRequests())
	}
	if r.Budget().CallsLimit() != 500 {
		t.Errorf("Budget().CallsLimit() = %d", r.Budget().CallsLimit())
	}
}

func TestPeriodConstants(t *testing.T) {
	if PeriodDay != "day" {
		t.Errorf("PeriodDay = %q", PeriodDay)
	}
	if PeriodMonth != "month" {
		t.Errorf("PeriodMonth = %q", PeriodMonth)
	}
	if PeriodTotal != "total" {
		t.Errorf("PeriodTotal = %q", PeriodTotal)
	}
}
