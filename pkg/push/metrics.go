package push

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dmitrymomot/pushkit/pkg/status"
)

// Metrics collects pipeline counters. A nil *Metrics records nothing.
type Metrics struct {
	messages       *prometheus.CounterVec
	fetches        *prometheus.CounterVec
	statuses       *prometheus.CounterVec
	events         *prometheus.CounterVec
	styles         *prometheus.CounterVec
	renderDuration prometheus.Histogram
}

// NewMetrics registers the pipeline collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		messages: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pushkit",
			Name:      "messages_total",
			Help:      "Inbound push messages by outcome.",
		}, []string{"result"}),
		fetches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pushkit",
			Name:      "image_fetches_total",
			Help:      "Image fetches by outcome.",
		}, []string{"result"}),
		statuses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pushkit",
			Name:      "status_reports_total",
			Help:      "Lifecycle status reports handed to the reporter.",
		}, []string{"status", "result"}),
		events: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pushkit",
			Name:      "interaction_events_total",
			Help:      "Click and dismiss events received.",
		}, []string{"kind"}),
		styles: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pushkit",
			Name:      "rendered_styles_total",
			Help:      "Rendered notifications by final style.",
		}, []string{"style"}),
		renderDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "pushkit",
			Name:      "pipeline_duration_seconds",
			Help:      "Time from message receipt to render.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) message(result string) {
	if m == nil {
		return
	}
	m.messages.WithLabelValues(result).Inc()
}

func (m *Metrics) fetch(ok bool) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(outcome(ok)).Inc()
}

func (m *Metrics) statusReport(s status.Status, ok bool) {
	if m == nil {
		return
	}
	m.statuses.WithLabelValues(s.String(), outcome(ok)).Inc()
}

func (m *Metrics) event(kind EventKind) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) rendered(style StyleKind, d time.Duration) {
	if m == nil {
		return
	}
	m.styles.WithLabelValues(style.String()).Inc()
	m.renderDuration.Observe(d.Seconds())
}

func outcome(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}
