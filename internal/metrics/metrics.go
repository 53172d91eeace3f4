package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for donor triage and registration.
type Metrics struct {
	// Triage verdicts by status
	TriageOutcome *prometheus.CounterVec

	// Deferral length of temporary verdicts
	DeferralDays prometheus.Histogram

	// Registration attempts by result: "stored", "invalid", "error"
	Registrations *prometheus.CounterVec

	EvaluateLatency prometheus.Histogram
}

// New registers all donor metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TriageOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sangria_triage_outcomes_total",
			Help: "Total triage verdicts by status",
		}, []string{"status"}),

		DeferralDays: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "sangria_triage_deferral_days",
			Help:    "Deferral length of temporarily ineligible verdicts",
			Buckets: []float64{7, 30, 60, 90, 180, 365},
		}),

		Registrations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sangria_donor_registrations_total",
			Help: "Donor registration attempts by result",
		}, []string{"result"}),

		EvaluateLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "sangria_triage_evaluate_duration_seconds",
			Help:    "Duration of a triage evaluation",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005},
		}),
	}
}

// ObserveVerdict records a triage outcome and, for temporary deferrals, its length.
func (m *Metrics) ObserveVerdict(status string, deferralDays int, d time.Duration) {
	if m == nil {
		return
	}
	m.TriageOutcome.WithLabelValues(status).Inc()
	if deferralDays > 0 && status == "inapto_temporario" {
		m.DeferralDays.Observe(float64(deferralDays))
	}
	m.EvaluateLatency.Observe(d.Seconds())
}

// IncrementRegistration records a registration attempt result.
func (m *Metrics) IncrementRegistration(result string) {
	if m != nil {
		m.Registrations.WithLabelValues(result).Inc()
	}
}
