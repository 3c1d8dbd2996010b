package dispatch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	attemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_attempts_total",
			Help: "Total number of delivery attempts by outcome",
		},
		[]string{"outcome"},
	)

	deliveredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_delivered_total",
			Help: "Total number of notifications delivered by channel",
		},
		[]string{"channel"},
	)

	attemptDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dispatch_attempt_duration_seconds",
			Help:    "Duration of a delivery attempt including the row lock",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		},
	)
)

func recordAttempt(o Outcome, d time.Duration) {
	attemptsTotal.WithLabelValues(o.String()).Inc()
	attemptDuration.Observe(d.Seconds())
}

func recordDelivered(channel string) {
	deliveredTotal.WithLabelValues(channel).Inc()
}
