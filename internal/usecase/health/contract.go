package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// ModelReader reports the active valuation model version ("" if none).
type ModelReader interface {
	ActiveVersion() string
}

// InsightChecker checks insight provider availability.
type InsightChecker interface {
	HealthCheck(ctx context.Context) error
}
