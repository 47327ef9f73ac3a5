package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the registration ledger.
type Metrics struct {
	Created           prometheus.Counter
	DuplicateRejected prometheus.Counter
	CapacityRejected  prometheus.Counter
	RegisterDuration  prometheus.Histogram
}

// New creates a new Metrics instance with all ledger metrics registered.
func New() *Metrics {
	return &Metrics{
		Created: promauto.NewCounter(prometheus.CounterOpts{
			Name: "campuspass_registrations_created_total",
			Help: "Total number of registrations successfully created",
		}),
		DuplicateRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "campuspass_registrations_duplicate_rejected_total",
			Help: "Registration attempts rejected because the participant was already registered",
		}),
		CapacityRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "campuspass_registrations_capacity_rejected_total",
			Help: "Registration attempts rejected because the event was at capacity",
		}),
		RegisterDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "campuspass_register_duration_seconds",
			Help:    "Duration of register operations including credential issuance",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// ObserveRegister records the duration of a register operation.
// Call with time.Now() captured at the start of the operation.
func (m *Metrics) ObserveRegister(start time.Time) {
	m.RegisterDuration.Observe(time.Since(start).Seconds())
}
