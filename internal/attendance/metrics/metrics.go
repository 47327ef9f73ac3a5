package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for attendance check-in.
type Metrics struct {
	CheckIns          prometheus.Counter
	RepeatCheckIns    prometheus.Counter
	InvalidCredential prometheus.Counter
	MarkDuration      prometheus.Histogram
}

// New creates a new Metrics instance with all check-in metrics registered.
func New() *Metrics {
	return &Metrics{
		CheckIns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "campuspass_checkins_total",
			Help: "Total number of first-time attendance check-ins",
		}),
		RepeatCheckIns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "campuspass_checkins_repeat_total",
			Help: "Check-in attempts against credentials already marked attended",
		}),
		InvalidCredential: promauto.NewCounter(prometheus.CounterOpts{
			Name: "campuspass_checkins_invalid_credential_total",
			Help: "Check-in attempts that presented an unknown credential",
		}),
		MarkDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "campuspass_checkin_duration_seconds",
			Help:    "Duration of attendance mark operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// ObserveMark records the duration of a mark operation.
// Call with time.Now() captured at the start of the operation.
func (m *Metrics) ObserveMark(start time.Time) {
	m.MarkDuration.Observe(time.Since(start).Seconds())
}
