package propdex

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// sdkMetrics holds the instruments shared by all facade methods.
type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "propdex",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "SDK operations by name and status.",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "propdex",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "SDK operation latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers c, or swaps in the collector already on the
// registry when a second client shares it.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	err := reg.Register(*c)
	if err == nil {
		return nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(T); ok {
			*c = existing
			return nil
		}
	}
	return err
}

// observer carries the optional logger and metrics used by every facade
// method. A nil observer records nothing.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg != nil {
		m, err := newSDKMetrics(reg)
		if err != nil {
			return nil, fmt.Errorf("propdex: register metrics: %w", err)
		}
		o.metrics = m
	}
	return o, nil
}

// observeBatch records one finished bulk operation. Per-item failures are
// surfaced in the log line and the "partial" status, not as an error.
func (o *observer) observeBatch(op string, start time.Time, ok, failed int) {
	if o == nil {
		return
	}
	elapsed := time.Since(start)
	if o.metrics != nil {
		status := "ok"
		if failed > 0 {
			status = "partial"
		}
		o.metrics.operations.WithLabelValues(op, status).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(elapsed.Seconds())
	}
	if o.logger == nil {
		return
	}
	o.logger.Debug("batch completed", "op", op, "duration", elapsed, "ok", ok, "failed", failed)
}

// observe records one finished operation. Safe on a nil receiver.
func (o *observer) observe(op string, start time.Time, err error) {
	if o == nil {
		return
	}
	elapsed := time.Since(start)
	if o.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		o.metrics.operations.WithLabelValues(op, status).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(elapsed.Seconds())
	}
	if o.logger == nil {
		return
	}
	if err != nil {
		o.logger.Warn("operation failed", "op", op, "duration", elapsed, "error", err)
		return
	}
	o.logger.Debug("operation completed", "op", op, "duration", elapsed)
}
