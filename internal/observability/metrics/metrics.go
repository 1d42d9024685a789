// Package metrics exposes Prometheus collectors for the experiment server.
package metrics

import (
	"time"

	"github.com/ashureev/fslsm-tutor/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// ExperimentMetrics exposes counters/histograms for participant progression and chat.
type ExperimentMetrics struct {
	groupsAssigned    *prometheus.CounterVec
	stageTransitions  *prometheus.CounterVec
	chatTurns         *prometheus.CounterVec
	completionLatency *prometheus.HistogramVec
}

// NewExperimentMetrics registers collectors with reg, or the default registerer when nil.
func NewExperimentMetrics(reg prometheus.Registerer) *ExperimentMetrics {
	m := &ExperimentMetrics{
		groupsAssigned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tutor",
			Subsystem: "experiment",
			Name:      "groups_assigned_total",
			Help:      "Participants assigned to each experimental condition",
		}, []string{"group"}),
		stageTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tutor",
			Subsystem: "experiment",
			Name:      "stage_transitions_total",
			Help:      "Stage transitions by destination stage",
		}, []string{"to"}),
		chatTurns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tutor",
			Subsystem: "chat",
			Name:      "turns_total",
			Help:      "Chat turns by condition and gateway outcome",
		}, []string{"group", "outcome"}),
		completionLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tutor",
			Subsystem: "gateway",
			Name:      "latency_seconds",
			Help:      "Latency of completion calls to the assistant endpoint",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.groupsAssigned, m.stageTransitions, m.chatTurns, m.completionLatency)
	return m
}

func outcomeLabel(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}

// ObserveGroupAssigned counts a new participant in group.
func (m *ExperimentMetrics) ObserveGroupAssigned(group domain.Group) {
	if m == nil {
		return
	}
	m.groupsAssigned.WithLabelValues(string(group)).Inc()
}

// ObserveTransition counts a stage change.
func (m *ExperimentMetrics) ObserveTransition(_, to domain.Stage) {
	if m == nil {
		return
	}
	m.stageTransitions.WithLabelValues(string(to)).Inc()
}

// ObserveChatTurn counts a completed chat turn.
func (m *ExperimentMetrics) ObserveChatTurn(group domain.Group, ok bool) {
	if m == nil {
		return
	}
	m.chatTurns.WithLabelValues(string(group), outcomeLabel(ok)).Inc()
}

// ObserveCompletion records the duration of a gateway call.
func (m *ExperimentMetrics) ObserveCompletion(d time.Duration, ok bool) {
	if m == nil {
		return
	}
	m.completionLatency.WithLabelValues(outcomeLabel(ok)).Observe(d.Seconds())
}
