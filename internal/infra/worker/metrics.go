package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"notify-dispatch/internal/pkg/config"
)

// WorkerMetrics are process-level worker metrics. Per-job metrics live in
// the queue package.
type WorkerMetrics struct {
	*config.ConfigMetrics

	// QueueDepth is the number of jobs waiting, sampled by the health server.
	QueueDepth prometheus.Gauge

	// Ready is 1 once the dispatcher and sweeper are running.
	Ready prometheus.Gauge

	// StartTimestamp is the Unix time the worker started.
	StartTimestamp prometheus.Gauge
}

// NewWorkerMetrics registers on the default registry.
func NewWorkerMetrics() *WorkerMetrics {
	return NewWorkerMetricsWith(prometheus.DefaultRegisterer)
}

func NewWorkerMetricsWith(reg prometheus.Registerer) *WorkerMetrics {
	f := promauto.With(reg)
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetricsWith(reg, "worker"),
		QueueDepth: f.NewGauge(prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Number of delivery jobs waiting in the queue",
		}),
		Ready: f.NewGauge(prometheus.GaugeOpts{
			Name: "worker_ready",
			Help: "1 when the worker is consuming jobs",
		}),
		StartTimestamp: f.NewGauge(prometheus.GaugeOpts{
			Name: "worker_start_timestamp",
			Help: "Unix timestamp of worker start",
		}),
	}
}

func (m *WorkerMetrics) RecordStart() {
	m.StartTimestamp.SetToCurrentTime()
}

func (m *WorkerMetrics) SetQueueDepth(n int) {
	m.QueueDepth.Set(float64(n))
}

func (m *WorkerMetrics) SetReady(ready bool) {
	if ready {
		m.Ready.Set(1)
		return
	}
	m.Ready.Set(0)
}
