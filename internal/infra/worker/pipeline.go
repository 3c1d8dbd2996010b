package worker

import (
	"context"
	"log/slog"
	"time"

	"notify-dispatch/internal/infra/queue"
	"notify-dispatch/internal/repository"
	"notify-dispatch/internal/usecase/dispatch"
)

const depthSampleInterval = 15 * time.Second

// Pipeline consumes one queue: a dispatcher running the orchestrator and a
// sweeper resubmitting notifications that fell out of the queue.
type Pipeline struct {
	Dispatcher *queue.Dispatcher
	Sweeper    *queue.Sweeper

	queue   queue.Queue
	metrics *WorkerMetrics
	logger  *slog.Logger
}

// NewPipeline wires the orchestrator to q. metrics may be nil.
func NewPipeline(
	q queue.Queue,
	notifications repository.NotificationRepository,
	chain dispatch.Deliverer,
	cfg *WorkerConfig,
	metrics *WorkerMetrics,
	logger *slog.Logger,
) *Pipeline {
	orch := dispatch.NewOrchestrator(notifications, chain)
	d := queue.NewDispatcher(q, orch, cfg.DispatcherConfig(), logger)
	s := queue.NewSweeper(notifications, q, cfg.SweeperConfig(), d.Active, logger)
	return &Pipeline{
		Dispatcher: d,
		Sweeper:    s,
		queue:      q,
		metrics:    metrics,
		logger:     logger,
	}
}

// Run starts the sweeper and consumes jobs until ctx is done. It returns
// after running attempts and any in-progress sweep have finished.
func (p *Pipeline) Run(ctx context.Context) error {
	if err := p.Sweeper.Start(); err != nil {
		return err
	}
	defer func() { <-p.Sweeper.Stop().Done() }()

	if p.metrics != nil {
		go p.sampleDepth(ctx)
		p.metrics.SetReady(true)
		defer p.metrics.SetReady(false)
	}
	return p.Dispatcher.Run(ctx)
}

func (p *Pipeline) sampleDepth(ctx context.Context) {
	ticker := time.NewTicker(depthSampleInterval)
	defer ticker.Stop()
	for {
		n, err := p.queue.Len(ctx)
		if err == nil {
			p.metrics.SetQueueDepth(n)
		} else if ctx.Err() == nil {
			p.logger.Warn("queue depth unavailable", slog.Any("error", err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
