package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Transition outcomes.
const (
	OutcomeCommitted = "committed"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

// EngagementMetrics counts lifecycle transitions and notification delivery.
type EngagementMetrics struct {
	transitions *prometheus.CounterVec
	fanout      *prometheus.CounterVec
	dispatch    *prometheus.CounterVec
}

// NewEngagementMetrics registers the engagement metrics on the provided registerer.
func NewEngagementMetrics(reg prometheus.Registerer) *EngagementMetrics {
	if reg == nil {
		return &EngagementMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "engagement_transitions_total",
		Help:      "Engagement lifecycle transitions by kind and outcome.",
	}, []string{"kind", "outcome"})
	fanout := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "engagement_fanout_total",
		Help:      "Notification fan-out attempts by status.",
	}, []string{"status"})
	dispatch := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "outbox_dispatch_total",
		Help:      "Outbox events handled by the dispatcher by result.",
	}, []string{"event_type", "result"})
	reg.MustRegister(transitions, fanout, dispatch)
	return &EngagementMetrics{
		transitions: transitions,
		fanout:      fanout,
		dispatch:    dispatch,
	}
}

// ObserveTransition records a transition attempt.
func (m *EngagementMetrics) ObserveTransition(kind, outcome string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(kind), normalizeLabel(outcome)).Inc()
}

// ObserveFanout records the status of a notification fan-out.
func (m *EngagementMetrics) ObserveFanout(status string) {
	if m == nil || m.fanout == nil {
		return
	}
	m.fanout.WithLabelValues(normalizeLabel(status)).Inc()
}

// ObserveDispatch records how the dispatcher handled an outbox event.
func (m *EngagementMetrics) ObserveDispatch(eventType, result string) {
	if m == nil || m.dispatch == nil {
		return
	}
	m.dispatch.WithLabelValues(normalizeLabel(eventType), normalizeLabel(result)).Inc()
}
