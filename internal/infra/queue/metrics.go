package queue

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the dispatcher and sweeper
var (
	jobsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_jobs_processed_total",
			Help: "Total number of jobs processed by outcome",
		},
		[]string{"outcome"},
	)

	retriesScheduledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "queue_retries_scheduled_total",
			Help: "Total number of delivery retries scheduled",
		},
	)

	// retriesExhaustedTotal counts notifications left undelivered for good
	retriesExhaustedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "queue_retries_exhausted_total",
			Help: "Total number of notifications that used up their retry budget",
		},
	)

	// receiveErrorsTotal counts failed Next calls on a running dispatcher
	receiveErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_receive_errors_total",
			Help: "Total number of failed job receives by reason",
		},
		[]string{"reason"}, // reason: backend|malformed
	)

	jobsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "queue_jobs_in_flight",
			Help: "Number of delivery attempts currently running",
		},
	)

	sweepRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_sweep_runs_total",
			Help: "Total number of recovery sweeps by status",
		},
		[]string{"status"}, // status: success|failure
	)

	sweepResubmittedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "queue_sweep_resubmitted_total",
			Help: "Total number of notifications resubmitted by the recovery sweep",
		},
	)
)
