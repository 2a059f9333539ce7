// Package metrics holds the Prometheus collectors of the organizer.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Outcome label values.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

type Metrics struct {
	Intents      *prometheus.CounterVec
	SaveFailures *prometheus.CounterVec
	Imports      *prometheus.CounterVec
	LoadWarnings prometheus.Counter
	Assigned     prometheus.Gauge
	Delivered    prometheus.Gauge
}

// New creates the collectors and registers them on reg. A nil reg skips registration.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Intents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "organizer",
			Name:      "intents_total",
			Help:      "Intents handled, by intent and outcome.",
		}, []string{"intent", "outcome"}),
		SaveFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "organizer",
			Name:      "save_failures_total",
			Help:      "Failed state flushes, by kind.",
		}, []string{"kind"}),
		Imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "organizer",
			Name:      "imports_total",
			Help:      "Import attempts, by outcome.",
		}, []string{"outcome"}),
		LoadWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "organizer",
			Name:      "load_warnings_total",
			Help:      "Loads that fell back to defaults.",
		}),
		Assigned: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "organizer",
			Name:      "assigned_packages",
			Help:      "Packages currently assigned to a zone.",
		}),
		Delivered: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "organizer",
			Name:      "delivered_packages",
			Help:      "Assigned packages marked delivered.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.Intents, m.SaveFailures, m.Imports, m.LoadWarnings, m.Assigned, m.Delivered)
	}
	return m
}
