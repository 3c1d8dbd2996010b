package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"notify-dispatch/internal/config"
	hhttp "notify-dispatch/internal/handler/http"
	pgRepo "notify-dispatch/internal/infra/adapter/persistence/postgres"
	"notify-dispatch/internal/infra/db"
	"notify-dispatch/internal/infra/queue"
	workerPkg "notify-dispatch/internal/infra/worker"
	"notify-dispatch/internal/observability/logging"
	"notify-dispatch/internal/observability/tracing"
	"notify-dispatch/internal/resilience/circuitbreaker"
	"notify-dispatch/internal/usecase/delivery"
)

func waitForMigrations(logger *slog.Logger, database *sql.DB) {
	const probe = "SELECT 1 FROM notifications LIMIT 1"
	for i := 0; i < 10; i++ {
		if _, err := database.Exec(probe); err == nil {
			return
		}
		logger.Info("waiting for migrations, retrying in 3s", slog.Int("attempt", i+1))
		time.Sleep(3 * time.Second)
	}
	logger.Error("migrations did not complete in time")
	os.Exit(1)
}

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	tp := tracing.Install("notify-worker", tracing.SampleRatioFromEnv(logger))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Fail-open: malformed values fall back to defaults and are counted.
	workerMetrics := workerPkg.NewWorkerMetrics()
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	workerMetrics.RecordStart()
	logger.Info("worker configuration loaded",
		slog.String("sweep_schedule", workerConfig.SweepSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Int("concurrency", workerConfig.Concurrency),
		slog.Duration("attempt_timeout", workerConfig.AttemptTimeout),
		slog.Int("max_retries", workerConfig.MaxRetries),
		slog.String("queue_backend", workerConfig.QueueBackend),
		slog.Int("health_port", workerConfig.HealthPort))

	channelsCfg, err := config.LoadChannelsConfig()
	if err != nil {
		logger.Error("invalid channel configuration", slog.Any("error", err))
		os.Exit(1)
	}
	chain := delivery.NewDefaultChain(*channelsCfg)
	logger.Info("delivery chain configured",
		slog.String("transport", channelsCfg.Transport),
		slog.Any("channels", chain.Channels()))

	database := initDatabase(ctx, logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	healthServer := workerPkg.NewHealthServer(fmt.Sprintf(":%d", workerConfig.HealthPort), logger)
	healthServer.AddCheck("database", database.PingContext)
	healthServer.Mount("GET /health/channels", &hhttp.ChannelsHandler{Chain: chain, Config: channelsCfg})

	q, closeQueue := openQueue(logger, workerConfig, healthServer)
	defer closeQueue()

	go func() {
		if err := healthServer.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	notifications := pgRepo.NewNotificationRepo(circuitbreaker.NewDBCircuitBreaker(database))
	pipeline := workerPkg.NewPipeline(q, notifications, chain, workerConfig, workerMetrics, logger)

	healthServer.SetReady(true)
	logger.Info("worker started")
	if err := pipeline.Run(ctx); err != nil {
		healthServer.SetReady(false)
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
	healthServer.SetReady(false)
	logger.Info("worker stopped")
}

// initDatabase opens the database and waits for the API to finish migrating.
// The worker has no in-memory mode: the API and worker must share a store.
func initDatabase(ctx context.Context, logger *slog.Logger) *sql.DB {
	openCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	database, err := db.Open(openCtx)
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	waitForMigrations(logger, database)
	return database
}

// openQueue connects to the shared Redis queue. With the memory backend the
// worker only sees what its own sweeper resubmits from the database.
func openQueue(logger *slog.Logger, cfg *workerPkg.WorkerConfig, health *workerPkg.HealthServer) (queue.Queue, func()) {
	if cfg.QueueBackend != workerPkg.QueueRedis {
		logger.Warn("worker using in-memory queue; jobs arrive only through the recovery sweep")
		q := queue.NewMemoryQueue()
		return q, func() { _ = q.Close() }
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	health.AddCheck("redis", func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
	logger.Info("using redis queue",
		slog.String("addr", cfg.RedisAddr),
		slog.String("key", cfg.RedisKey))
	return queue.NewRedisQueue(client, cfg.RedisKey), func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close redis client", slog.Any("error", err))
		}
	}
}
