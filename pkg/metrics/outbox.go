package metrics

import "github.com/prometheus/client_golang/prometheus"

// OutboxMetrics counts relay outcomes per event type.
type OutboxMetrics struct {
	published *prometheus.CounterVec
	failed    *prometheus.CounterVec
	batches   prometheus.Counter
}

func NewOutboxMetrics(reg prometheus.Registerer) *OutboxMetrics {
	if reg == nil {
		return nil
	}
	m := &OutboxMetrics{
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "outbox",
			Name:      "published_total",
			Help:      "Outbox rows appended to their stream.",
		}, []string{"event_type"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "outbox",
			Name:      "publish_failures_total",
			Help:      "Failed relay attempts; terminal=true rows are not retried.",
		}, []string{"event_type", "terminal"}),
		batches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "outbox",
			Name:      "batches_total",
			Help:      "Non-empty batches processed by the relay.",
		}),
	}
	reg.MustRegister(m.published, m.failed, m.batches)
	return m
}

func (m *OutboxMetrics) Published(eventType string) {
	if m == nil {
		return
	}
	m.published.WithLabelValues(normalizeLabel(eventType)).Inc()
}

func (m *OutboxMetrics) Failed(eventType string, terminal bool) {
	if m == nil {
		return
	}
	label := "false"
	if terminal {
		label = "true"
	}
	m.failed.WithLabelValues(normalizeLabel(eventType), label).Inc()
}

func (m *OutboxMetrics) Batch() {
	if m == nil {
		return
	}
	m.batches.Inc()
}
