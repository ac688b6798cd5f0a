package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder counts donation workflow outcomes and backend failures.
type Recorder struct {
	outcomes      *prometheus.CounterVec
	orderFailures *prometheus.CounterVec
	confirmations *prometheus.CounterVec
	checkouts     *prometheus.CounterVec
}

func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "donations",
			Name:      "workflow_outcomes_total",
			Help:      "Donation workflow outcomes by entry point.",
		}, []string{"entry_point", "outcome"}),
		orderFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "donations",
			Name:      "order_failures_total",
			Help:      "Order creation failures by error kind.",
		}, []string{"entry_point", "kind"}),
		confirmations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "donations",
			Name:      "confirmations_total",
			Help:      "Confirmation calls by reported status and result.",
		}, []string{"status", "result"}),
		checkouts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "donations",
			Name:      "checkout_results_total",
			Help:      "Payment sheet outcomes by provider.",
		}, []string{"provider", "kind"}),
	}
}

// NewNopRecorder returns a recorder bound to a private registry.
func NewNopRecorder() *Recorder {
	return NewRecorder(prometheus.NewRegistry())
}

func (r *Recorder) Outcome(entryPoint, outcome string) {
	if r == nil {
		return
	}
	r.outcomes.WithLabelValues(entryPoint, outcome).Inc()
}

func (r *Recorder) OrderFailure(entryPoint, kind string) {
	if r == nil {
		return
	}
	r.orderFailures.WithLabelValues(entryPoint, kind).Inc()
}

func (r *Recorder) Confirmation(status string, ok bool) {
	if r == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	r.confirmations.WithLabelValues(status, result).Inc()
}

func (r *Recorder) Checkout(provider, kind string) {
	if r == nil {
		return
	}
	r.checkouts.WithLabelValues(provider, kind).Inc()
}
