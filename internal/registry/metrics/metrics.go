package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the registry client.
type Metrics struct {
	// Verification outcomes by classification
	Outcomes *prometheus.CounterVec

	// Registry call latency by operation ("login", "verify")
	CallLatency *prometheus.HistogramVec

	// Credential refreshes and failures
	TokenRefreshes     prometheus.Counter
	TokenRefreshErrors prometheus.Counter
	CircuitTransitions *prometheus.CounterVec
	InlineFailures     prometheus.Counter
}

// New creates a Metrics instance with all registry client metrics registered.
func New() *Metrics {
	return &Metrics{
		Outcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nidgw_registry_outcomes_total",
			Help: "Total verification outcomes by classification",
		}, []string{"outcome"}), // outcome: "matched", "mismatched", "unauthorized", "rejected", "error"

		CallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nidgw_registry_call_duration_seconds",
			Help:    "Duration of outbound registry calls by operation",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"operation"}),

		TokenRefreshes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nidgw_registry_token_refreshes_total",
			Help: "Total credential refresh exchanges performed",
		}),

		TokenRefreshErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nidgw_registry_token_refresh_errors_total",
			Help: "Total failed credential refresh exchanges",
		}),

		CircuitTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nidgw_registry_circuit_transitions_total",
			Help: "Circuit breaker transitions by direction",
		}, []string{"direction"}), // direction: "opened", "closed"

		InlineFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nidgw_registry_photo_inline_failures_total",
			Help: "Photo inlining failures (non-fatal to verification)",
		}),
	}
}

// ObserveCall records the duration of a registry call.
func (m *Metrics) ObserveCall(operation string, d time.Duration) {
	if m != nil {
		m.CallLatency.WithLabelValues(operation).Observe(d.Seconds())
	}
}

// IncOutcome records a verification outcome classification.
func (m *Metrics) IncOutcome(outcome string) {
	if m != nil {
		m.Outcomes.WithLabelValues(outcome).Inc()
	}
}

// IncTokenRefresh records a credential exchange.
func (m *Metrics) IncTokenRefresh(failed bool) {
	if m == nil {
		return
	}
	m.TokenRefreshes.Inc()
	if failed {
		m.TokenRefreshErrors.Inc()
	}
}

// IncCircuit records a breaker transition.
func (m *Metrics) IncCircuit(direction string) {
	if m != nil {
		m.CircuitTransitions.WithLabelValues(direction).Inc()
	}
}

// IncInlineFailure records a failed photo inline.
func (m *Metrics) IncInlineFailure() {
	if m != nil {
		m.InlineFailures.Inc()
	}
}
