package metrics

import "github.com/prometheus/client_golang/prometheus"

// HoneypotMetrics exposes counters/gauges/histograms for the message
// pipeline, session lifecycle, and callback delivery.
type HoneypotMetrics struct {
	messagesTotal     *prometheus.CounterVec
	messageLatency    *prometheus.HistogramVec
	activeSessions    prometheus.Gauge
	sessionsCompleted prometheus.Counter
	intelItemsTotal   *prometheus.CounterVec
	callbackTotal     *prometheus.CounterVec
	callbackAttempts  prometheus.Histogram
}

func NewHoneypotMetrics(reg prometheus.Registerer) *HoneypotMetrics {
	m := &HoneypotMetrics{
		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "honeypot",
			Subsystem: "api",
			Name:      "messages_total",
			Help:      "Total analyzed messages by outcome",
		}, []string{"status"}),
		messageLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "honeypot",
			Subsystem: "api",
			Name:      "message_latency_seconds",
			Help:      "Latency of message analysis and engagement",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "honeypot",
			Subsystem: "sessions",
			Name:      "active",
			Help:      "Currently active engagement sessions",
		}),
		sessionsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "honeypot",
			Subsystem: "sessions",
			Name:      "completed_total",
			Help:      "Total completed engagement sessions",
		}),
		intelItemsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "honeypot",
			Subsystem: "intel",
			Name:      "items_total",
			Help:      "Total extracted intelligence items by kind",
		}, []string{"kind"}),
		callbackTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "honeypot",
			Subsystem: "callback",
			Name:      "deliveries_total",
			Help:      "Total final-result callback deliveries by outcome",
		}, []string{"outcome"}),
		callbackAttempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "honeypot",
			Subsystem: "callback",
			Name:      "attempts",
			Help:      "Attempts used per callback delivery",
			Buckets:   []float64{1, 2, 3, 4, 5},
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.messagesTotal, m.messageLatency,
		m.activeSessions, m.sessionsCompleted,
		m.intelItemsTotal,
		m.callbackTotal, m.callbackAttempts,
	)
	return m
}

func (m *HoneypotMetrics) ObserveMessage(status string, seconds float64) {
	if m == nil {
		return
	}
	m.messagesTotal.WithLabelValues(status).Inc()
	m.messageLatency.WithLabelValues(status).Observe(seconds)
}

func (m *HoneypotMetrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

func (m *HoneypotMetrics) ObserveSessionCompleted() {
	if m == nil {
		return
	}
	m.sessionsCompleted.Inc()
}

func (m *HoneypotMetrics) ObserveIntelItem(kind string) {
	if m == nil {
		return
	}
	m.intelItemsTotal.WithLabelValues(kind).Inc()
}

func (m *HoneypotMetrics) ObserveCallback(outcome string, attempts int) {
	if m == nil {
		return
	}
	m.callbackTotal.WithLabelValues(outcome).Inc()
	m.callbackAttempts.Observe(float64(attempts))
}
