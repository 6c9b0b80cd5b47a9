// Package metrics holds the Prometheus instruments of the relocation service. The
// instruments are registered on a caller-supplied registry; nothing is registered
// globally.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "relocation"

// Result label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

type Metrics struct {
	// Decisions counts driver responses by outcome: accepted, declined,
	// already_assigned, invalid_offer, lock_timeout, error.
	Decisions *prometheus.CounterVec
	// DecisionLatency observes the full decide transaction, lock wait included.
	DecisionLatency prometheus.Histogram
	// Transitions counts lifecycle operations by operation and result.
	Transitions *prometheus.CounterVec
	// Notifications counts post-commit intents by intent name and result.
	Notifications *prometheus.CounterVec
	OffersCreated prometheus.Counter
	OffersExpired *prometheus.CounterVec
}

// New creates and registers all instruments on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		Decisions: f.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "offer_decisions_total", Help: "Driver offer decisions by outcome"},
			[]string{"outcome"},
		),
		DecisionLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "offer_decision_duration_seconds",
			Help:      "Duration of the offer decision transaction",
			Buckets:   prometheus.DefBuckets,
		}),
		Transitions: f.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "job_transitions_total", Help: "Job lifecycle operations by result"},
			[]string{"operation", "result"},
		),
		Notifications: f.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "notifications_total", Help: "Post-commit notification intents by result"},
			[]string{"intent", "result"},
		),
		OffersCreated: f.NewCounter(
			prometheus.CounterOpts{Namespace: namespace, Name: "offers_created_total", Help: "Offers created"},
		),
		OffersExpired: f.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "offers_expired_total", Help: "Offers expired by cause"},
			[]string{"cause"},
		),
	}
}

// NewNop returns instruments registered on a private registry, for tests and tools
// that do not expose metrics.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

func Result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}
