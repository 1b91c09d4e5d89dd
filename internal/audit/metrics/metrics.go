package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the audit sink.
type Metrics struct {
	Recorded      *prometheus.CounterVec
	Dropped       prometheus.Counter
	WriteFailures prometheus.Counter
	QueueDepth    prometheus.Gauge
}

// New creates a Metrics instance with all audit sink metrics registered.
func New() *Metrics {
	return &Metrics{
		Recorded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nidgw_audit_records_total",
			Help: "Audit records accepted by the sink, by outcome",
		}, []string{"outcome"}),

		Dropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nidgw_audit_records_dropped_total",
			Help: "Audit records dropped because the sink buffer was full",
		}),

		WriteFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nidgw_audit_write_failures_total",
			Help: "Audit store writes that failed (logged, never propagated)",
		}),

		QueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "nidgw_audit_queue_depth",
			Help: "Records currently buffered in the sink",
		}),
	}
}

// IncRecorded counts an accepted record.
func (m *Metrics) IncRecorded(outcome string) {
	if m != nil {
		m.Recorded.WithLabelValues(outcome).Inc()
	}
}

// IncDropped counts a record lost to a full buffer.
func (m *Metrics) IncDropped() {
	if m != nil {
		m.Dropped.Inc()
	}
}

// IncWriteFailure counts a failed persistence attempt.
func (m *Metrics) IncWriteFailure() {
	if m != nil {
		m.WriteFailures.Inc()
	}
}

// SetQueueDepth reports the buffered record count.
func (m *Metrics) SetQueueDepth(n int) {
	if m != nil {
		m.QueueDepth.Set(float64(n))
	}
}
