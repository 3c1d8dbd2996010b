package delivery

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for channel delivery attempts
var (
	// deliveryAttemptsTotal tracks sender invocations per channel and result
	deliveryAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delivery_channel_attempts_total",
			Help: "Total number of channel delivery attempts",
		},
		[]string{"channel", "result"}, // result: success|failure|error|panic
	)

	// deliveryDuration tracks time spent inside a sender
	deliveryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "delivery_channel_duration_seconds",
			Help:    "Channel delivery duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
		[]string{"channel"},
	)

	// chainExhaustedTotal counts chain runs where no channel succeeded
	chainExhaustedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "delivery_chain_exhausted_total",
			Help: "Total number of delivery chain runs without a successful channel",
		},
	)
)

const (
	resultSuccess = "success"
	resultFailure = "failure"
	resultError   = "error"
	resultPanic   = "panic"
)

// recordAttempt records one sender invocation.
func recordAttempt(channel, result string, d time.Duration) {
	deliveryAttemptsTotal.WithLabelValues(channel, result).Inc()
	deliveryDuration.WithLabelValues(channel).Observe(d.Seconds())
}

func recordExhausted() {
	chainExhaustedTotal.Inc()
}
