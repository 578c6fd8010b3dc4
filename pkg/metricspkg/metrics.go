// Package metricspkg provides prometheus collectors for ledger operations.
package metricspkg

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the prometheus registry and transaction metrics.
type Collector struct {
	registry            *prometheus.Registry
	transactionsTotal   *prometheus.CounterVec
	transactionsFailed  *prometheus.CounterVec
	transactionDuration prometheus.Histogram
}

// NewCollector returns a Collector with its own registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	return &Collector{
		registry: registry,
		transactionsTotal: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_transactions_total",
			Help: "Total number of committed ledger mutations",
		}, []string{"operation"}),
		transactionsFailed: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_transactions_failed_total",
			Help: "Total number of failed ledger mutations",
		}, []string{"operation"}),
		transactionDuration: promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
			Name:    "ledger_transaction_duration_seconds",
			Help:    "Time spent applying a ledger mutation",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// RecordTransaction records the outcome and duration of one mutating operation.
func (c *Collector) RecordTransaction(operation string, duration time.Duration, success bool) {
	if success {
		c.transactionsTotal.WithLabelValues(operation).Inc()
	} else {
		c.transactionsFailed.WithLabelValues(operation).Inc()
	}

	c.transactionDuration.Observe(duration.Seconds())
}

// Handler returns the http handler exposing the registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
