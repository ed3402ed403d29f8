// Package metrics exposes run counters for long fuzz sessions on a
// prometheus registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts what a run did. A nil *Metrics is a no-op, so callers
// without a registry skip instrumentation entirely.
type Metrics struct {
	repsTotal        prometheus.Counter
	repFailuresTotal prometheus.Counter
	playoutsPruned   prometheus.Counter
	filterRetries    prometheus.Counter
	shrinksTotal     prometheus.Counter
}

// New registers the run counters on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		repsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "repcheck_reps_total",
			Help: "Test reps executed, across ordered and random passes.",
		}),
		repFailuresTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "repcheck_rep_failures_total",
			Help: "Reps whose test failed.",
		}),
		playoutsPruned: factory.NewCounter(prometheus.CounterOpts{
			Name: "repcheck_playouts_pruned_total",
			Help: "Playouts abandoned by trackers or filters.",
		}),
		filterRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "repcheck_filter_retries_total",
			Help: "Playouts retried because an accept filter rejected the value.",
		}),
		shrinksTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "repcheck_shrinks_total",
			Help: "Shrink searches started for failing reps.",
		}),
	}
}

// IncReps counts one executed rep.
func (m *Metrics) IncReps() {
	if m != nil {
		m.repsTotal.Inc()
	}
}

// IncRepFailures counts one failing rep.
func (m *Metrics) IncRepFailures() {
	if m != nil {
		m.repFailuresTotal.Inc()
	}
}

// IncPlayoutsPruned counts one abandoned playout.
func (m *Metrics) IncPlayoutsPruned() {
	if m != nil {
		m.playoutsPruned.Inc()
	}
}

// IncFilterRetries counts one playout retried after a filter rejection.
func (m *Metrics) IncFilterRetries() {
	if m != nil {
		m.filterRetries.Inc()
	}
}

// IncShrinks counts one shrink search.
func (m *Metrics) IncShrinks() {
	if m != nil {
		m.shrinksTotal.Inc()
	}
}
