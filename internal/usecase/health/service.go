package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db      DBPinger
	models  ModelReader
	insight InsightChecker
}

// New creates a Service. models and insight can be nil.
func New(db DBPinger, models ModelReader, insight InsightChecker) *Service {
	return &Service{db: db, models: models, insight: insight}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
	} else {
		checks["database"] = CheckOK
	}

	if s.models != nil {
		if s.models.ActiveVersion() == "" {
			checks["model"] = CheckError
		} else {
			checks["model"] = CheckOK
		}
	}

	if s.insight != nil {
		if err := s.insight.HealthCheck(ctx); err != nil {
			checks["insight"] = CheckError
		} else {
			checks["insight"] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}
