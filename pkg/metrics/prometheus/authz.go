// Package prometheus implements the metrics interfaces with Prometheus
// collectors registered on metrics.GetRegistry().
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/rowguard/pkg/metrics"
)

// authzMetrics is the Prometheus implementation of metrics.AuthzMetrics.
type authzMetrics struct {
	decisions      *prometheus.CounterVec
	operationTime  *prometheus.HistogramVec
	logins         *prometheus.CounterVec
	activeSessions prometheus.Gauge
	poolResets     prometheus.Counter
}

// NewAuthzMetrics creates Prometheus-backed authorization metrics.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewAuthzMetrics() metrics.AuthzMetrics {
	if !metrics.IsEnabled() {
		return nil
	}
	return newAuthzMetrics(metrics.GetRegistry())
}

func newAuthzMetrics(reg prometheus.Registerer) *authzMetrics {
	return &authzMetrics{
		decisions: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "rowguard_policy_decisions_total",
				Help: "Total number of policy decisions by operation, collection and outcome",
			},
			[]string{"operation", "collection", "decision"},
		),
		operationTime: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rowguard_operation_duration_seconds",
				Help:    "Duration of guarded operations including authorization reads",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
			},
			[]string{"operation", "collection"},
		),
		logins: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "rowguard_logins_total",
				Help: "Total number of login attempts by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		activeSessions: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "rowguard_active_sessions",
				Help: "Number of connections currently bound to an identity",
			},
		),
		poolResets: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "rowguard_pool_session_resets_total",
				Help: "Total number of session resets performed by the connection pool",
			},
		),
	}
}

func (m *authzMetrics) RecordDecision(operation, collection, decision string) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(operation, collection, decision).Inc()
}

func (m *authzMetrics) RecordOperation(operation, collection string, duration time.Duration) {
	if m == nil {
		return
	}
	m.operationTime.WithLabelValues(operation, collection).Observe(duration.Seconds())
}

func (m *authzMetrics) RecordLogin(kind, outcome string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(kind, outcome).Inc()
}

func (m *authzMetrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

func (m *authzMetrics) RecordPoolReset() {
	if m == nil {
		return
	}
	m.poolResets.Inc()
}
