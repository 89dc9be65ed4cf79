// Package metrics exposes the Prometheus collectors updated by collections.
//
// Every method is safe to call on a nil *Metrics, which records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gedoc"

// Metrics groups the collectors of a database.
type Metrics struct {
	// QueryPlans counts executed plans.
	// Labels: collection, plan (FULL_SCAN, INDEX_SCAN, TEXT_INDEX_SCAN)
	QueryPlans *prometheus.CounterVec

	// OperationDuration measures time spent inside the collection lock.
	// Labels: collection, operation (insert, update, find, ...)
	OperationDuration *prometheus.HistogramVec

	// Documents tracks live documents.
	// Labels: collection
	Documents *prometheus.GaugeVec
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		QueryPlans: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_plans_total",
			Help:      "Query plans executed by plan type",
		}, []string{"collection", "plan"}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of collection operations in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"collection", "operation"}),
		Documents: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "documents",
			Help:      "Live documents per collection",
		}, []string{"collection"}),
	}
}

// RecordPlan counts one execution of plan on collection.
func (m *Metrics) RecordPlan(collection, plan string) {
	if m == nil {
		return
	}
	m.QueryPlans.WithLabelValues(collection, plan).Inc()
}

// RecordOperation observes the duration of an operation.
func (m *Metrics) RecordOperation(collection, operation string, d time.Duration) {
	if m == nil {
		return
	}
	m.OperationDuration.WithLabelValues(collection, operation).Observe(d.Seconds())
}

// SetDocuments sets the number of live documents of collection.
func (m *Metrics) SetDocuments(collection string, n int) {
	if m == nil {
		return
	}
	m.Documents.WithLabelValues(collection).Set(float64(n))
}

// Forget removes every series of collection.
func (m *Metrics) Forget(collection string) {
	if m == nil {
		return
	}
	labels := prometheus.Labels{"collection": collection}
	m.QueryPlans.DeletePartialMatch(labels)
	m.OperationDuration.DeletePartialMatch(labels)
	m.Documents.DeletePartialMatch(labels)
}
