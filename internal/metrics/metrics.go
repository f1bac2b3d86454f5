package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timevault_mutations_total",
		Help: "Count of committed mutations by entity and action",
	}, []string{"entity", "action"})

	conflictsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timevault_interval_conflicts_total",
		Help: "Count of mutations rejected by the overlap invariant",
	}, []string{"op"})

	batchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timevault_batches_total",
		Help: "Count of batch submissions by result",
	}, []string{"result"})

	batchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "timevault_batch_size",
		Help:    "Number of candidates per batch submission",
		Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
	})

	commitDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "timevault_commit_duration_seconds",
		Help:    "Duration of overlap-checked write transactions",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	auditFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "timevault_audit_failures_total",
		Help: "Count of audit events that could not be delivered",
	})
)

// ObserveMutation records a committed mutation.
func ObserveMutation(entity, action string) {
	mutationsTotal.WithLabelValues(entity, action).Inc()
}

// ObserveConflict records a mutation rejected by the overlap invariant.
func ObserveConflict(op string) {
	conflictsTotal.WithLabelValues(op).Inc()
}

// ObserveBatch records a batch submission outcome and its size.
func ObserveBatch(result string, size int) {
	batchesTotal.WithLabelValues(result).Inc()
	batchSize.Observe(float64(size))
}

// ObserveCommit records the duration of an overlap-checked write transaction.
func ObserveCommit(op string, duration time.Duration) {
	commitDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// ObserveAuditFailure records an audit event that could not be delivered.
func ObserveAuditFailure() {
	auditFailuresTotal.Inc()
}
