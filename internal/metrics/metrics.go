package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcomes of a notification attempt, used as the result label.
const (
	ResultSent           = "sent"
	ResultRejected       = "rejected"
	ResultTransportError = "transport_error"
	ResultMisconfigured  = "misconfigured"
)

// Metrics holds the Prometheus collectors of the notification pipeline.
type Metrics struct {
	Notifications    *prometheus.CounterVec
	NotificationTime prometheus.Histogram
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "postdiaspora",
				Name:      "notifications_total",
				Help:      "Notifications sent to Diaspora, by result",
			},
			[]string{"result"},
		),
		NotificationTime: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "postdiaspora",
				Name:      "notification_duration_seconds",
				Help:      "Duration of the HTTP exchange with the Diaspora pod",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}
	reg.MustRegister(m.Notifications, m.NotificationTime)
	return m
}

// Observe counts one notification attempt. A nil Metrics discards it.
func (m *Metrics) Observe(result string) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveDuration(seconds float64) {
	if m == nil {
		return
	}
	m.NotificationTime.Observe(seconds)
}
