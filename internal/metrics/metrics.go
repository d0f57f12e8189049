package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "appointments",
			Name:      "booking_attempts_total",
			Help:      "Count of booking attempts by outcome.",
		},
		[]string{"outcome"},
	)

	flashFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "appointments",
			Name:      "flash_failures_total",
			Help:      "Count of flash messages that could not be stored or read.",
		},
	)
)

// Register registers metrics with the default registry (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingAttempts, flashFailures)
	})
}

// IncBooking counts one booking attempt. outcome is a booking reason or "error".
func IncBooking(outcome string) {
	bookingAttempts.WithLabelValues(outcome).Inc()
}

func IncFlashFailure() {
	flashFailures.Inc()
}
