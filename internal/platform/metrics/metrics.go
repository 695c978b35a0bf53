// Package metrics holds the Prometheus instruments for the lifecycle core.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics aggregates all instruments so services take one dependency.
type Metrics struct {
	AccountsCreated     prometheus.Counter
	AccountsDeleted     prometheus.Counter
	InvoicesProvisioned prometheus.Counter
	SagaCompensations   *prometheus.CounterVec
	InconsistentStates  prometheus.Counter
	SagaDuration        *prometheus.HistogramVec
	RequestDuration     *prometheus.HistogramVec
}

// New creates and registers all instruments on the default registerer.
func New() *Metrics {
	return &Metrics{
		AccountsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "innkeeper_accounts_created_total",
			Help: "Total staff accounts provisioned.",
		}),
		AccountsDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "innkeeper_accounts_deleted_total",
			Help: "Total staff accounts fully removed.",
		}),
		InvoicesProvisioned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "innkeeper_invoices_provisioned_total",
			Help: "Total invoices created with their line items.",
		}),
		SagaCompensations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "innkeeper_saga_compensated_runs_total",
			Help: "Saga runs that ended in compensation, by operation.",
		}, []string{"operation"}),
		InconsistentStates: promauto.NewCounter(prometheus.CounterOpts{
			Name: "innkeeper_inconsistent_states_total",
			Help: "Terminal inconsistent states requiring operator intervention.",
		}),
		SagaDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "innkeeper_saga_duration_seconds",
			Help:    "Wall-clock duration of saga runs, by operation.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "innkeeper_http_request_duration_seconds",
			Help:    "HTTP request latency, by method, route, and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// ObserveSaga is the saga executor's observer hook.
func (m *Metrics) ObserveSaga(operation string, d time.Duration, compensated bool) {
	m.SagaDuration.WithLabelValues(operation).Observe(d.Seconds())
	if compensated {
		m.SagaCompensations.WithLabelValues(operation).Inc()
	}
}
