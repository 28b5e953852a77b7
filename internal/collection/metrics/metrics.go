package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the transition engine.
type Metrics struct {
	Transitions        *prometheus.CounterVec
	TransitionFailures *prometheus.CounterVec
}

// New creates and registers all transition engine metrics.
func New() *Metrics {
	return &Metrics{
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "recircle_collection_transitions_total",
			Help: "Total applied collection status transitions by from and to status",
		}, []string{"from", "to"}),

		TransitionFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "recircle_collection_transition_failures_total",
			Help: "Total rejected collection transitions by reason",
		}, []string{"reason"}),
	}
}

// RecordTransition counts an applied transition.
func (m *Metrics) RecordTransition(from, to string) {
	if m != nil {
		m.Transitions.WithLabelValues(from, to).Inc()
	}
}

// RecordFailure counts a rejected transition.
func (m *Metrics) RecordFailure(reason string) {
	if m != nil {
		m.TransitionFailures.WithLabelValues(reason).Inc()
	}
}
