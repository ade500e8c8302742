// Package metrics exposes Prometheus collectors for supply profile evaluation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "supply_"

// Metrics bundles evaluation metrics.
type Metrics struct {
	EvaluationsTotal   *prometheus.CounterVec
	EvaluationDuration *prometheus.HistogramVec
	SkippedEntries     prometheus.Counter
}

// New constructs the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EvaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "evaluations_total",
				Help: "Total supply evaluations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		EvaluationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "evaluation_duration_seconds",
				Help:    "Supply evaluation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		SkippedEntries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "skipped_schedule_entries_total",
			Help: "Total schedule elements skipped while parsing profiles",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.EvaluationsTotal,
			m.EvaluationDuration,
			m.SkippedEntries,
		)
	}
	return m
}

// ObserveEvaluation records one evaluation outcome.
func (m *Metrics) ObserveEvaluation(operation, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.EvaluationsTotal.WithLabelValues(operation, outcome).Inc()
	m.EvaluationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// AddSkippedEntries counts schedule elements dropped by the parser.
func (m *Metrics) AddSkippedEntries(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.SkippedEntries.Add(float64(count))
}
