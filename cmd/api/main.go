package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"notify-dispatch/internal/config"
	hhttp "notify-dispatch/internal/handler/http"
	pgRepo "notify-dispatch/internal/infra/adapter/persistence/postgres"
	"notify-dispatch/internal/infra/adapter/persistence/memory"
	"notify-dispatch/internal/infra/db"
	"notify-dispatch/internal/infra/queue"
	workerPkg "notify-dispatch/internal/infra/worker"
	"notify-dispatch/internal/observability/logging"
	"notify-dispatch/internal/observability/tracing"
	"notify-dispatch/internal/repository"
	"notify-dispatch/internal/resilience/circuitbreaker"
	"notify-dispatch/internal/usecase/delivery"
	notifUC "notify-dispatch/internal/usecase/notification"
	envcfg "notify-dispatch/pkg/config"

	_ "notify-dispatch/docs" // swagger docs
)

// @title           Notify Dispatch API
// @version         1.0
// @description     Stores notifications for registered recipients and delivers them over email, Telegram or SMS with retries.

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	tp := tracing.Install("notify-api", tracing.SampleRatioFromEnv(logger))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	version := envcfg.GetEnvString("VERSION", "dev")

	channelsCfg, err := config.LoadChannelsConfig()
	if err != nil {
		logger.Error("invalid channel configuration", slog.Any("error", err))
		os.Exit(1)
	}
	chain := delivery.NewDefaultChain(*channelsCfg)
	logger.Info("delivery chain configured",
		slog.String("transport", channelsCfg.Transport),
		slog.Any("channels", chain.Channels()))

	workerCfg, err := workerPkg.LoadConfigFromEnv(logger, nil)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}

	st := openStore(logger)
	defer st.close()

	q, closeQueue := openQueue(logger, workerCfg)
	defer closeQueue()
	if st.db == nil && workerCfg.QueueBackend == workerPkg.QueueRedis {
		logger.Warn("redis queue with an in-memory store: a separate worker cannot see these notifications")
	}

	svc := &notifUC.Service{
		Recipients:    st.recipients,
		Notifications: st.notifications,
		Queue:         q,
		Chain:         chain,
	}

	routerCfg := hhttp.RouterConfig{
		Logger:         logger,
		Service:        svc,
		Channels:       channelsCfg,
		Queue:          q,
		Version:        version,
		CORS:           hhttp.LoadCORSConfig(),
		RequestTimeout: envcfg.GetEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
	}
	if st.db != nil {
		routerCfg.DB = st.db
	}

	root := http.NewServeMux()
	root.Handle("/swagger/", httpSwagger.WrapHandler)
	root.Handle("/", hhttp.NewRouter(routerCfg))

	runServer(logger, root, version, func(ctx context.Context) func() {
		// Nobody else can see an in-memory queue, so this process consumes it.
		if workerCfg.QueueBackend != workerPkg.QueueMemory {
			return func() {}
		}
		return startEmbeddedPipeline(ctx, logger, q, st.notifications, chain, workerCfg)
	})
}

type store struct {
	recipients    repository.RecipientRepository
	notifications repository.NotificationRepository
	db            *sql.DB
	close         func()
}

// openStore uses Postgres when DATABASE_URL is set and an in-memory store
// otherwise.
func openStore(logger *slog.Logger) store {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	database, err := db.Open(ctx)
	if errors.Is(err, db.ErrMissingDSN) {
		logger.Warn("DATABASE_URL not set, using in-memory store; data is lost on restart")
		mem := memory.NewStore()
		return store{
			recipients:    mem.Recipients(),
			notifications: mem.Notifications(),
			close:         func() {},
		}
	}
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}

	guarded := circuitbreaker.NewDBCircuitBreaker(database)
	return store{
		recipients:    pgRepo.NewRecipientRepo(guarded),
		notifications: pgRepo.NewNotificationRepo(guarded),
		db:            database,
		close: func() {
			if err := database.Close(); err != nil {
				logger.Error("failed to close database", slog.Any("error", err))
			}
		},
	}
}

type apiQueue interface {
	notifUC.Submitter
	queue.Queue
}

func openQueue(logger *slog.Logger, cfg *workerPkg.WorkerConfig) (apiQueue, func()) {
	if cfg.QueueBackend == workerPkg.QueueRedis {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		logger.Info("using redis queue",
			slog.String("addr", cfg.RedisAddr),
			slog.String("key", cfg.RedisKey))
		return queue.NewRedisQueue(client, cfg.RedisKey), func() {
			if err := client.Close(); err != nil {
				logger.Error("failed to close redis client", slog.Any("error", err))
			}
		}
	}

	q := queue.NewMemoryQueue()
	logger.Info("using in-memory queue")
	return q, func() { _ = q.Close() }
}

// startEmbeddedPipeline runs the dispatcher and sweeper in this process and
// returns a function that waits for them to stop after ctx is cancelled.
func startEmbeddedPipeline(
	ctx context.Context,
	logger *slog.Logger,
	q queue.Queue,
	notifications repository.NotificationRepository,
	chain *delivery.Chain,
	cfg *workerPkg.WorkerConfig,
) func() {
	p := workerPkg.NewPipeline(q, notifications, chain, cfg, nil, logger.With(slog.String("component", "dispatcher")))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := p.Run(ctx); err != nil {
			logger.Error("embedded dispatcher stopped", slog.Any("error", err))
		}
	}()
	logger.Info("embedded dispatcher started",
		slog.Int("concurrency", cfg.Concurrency),
		slog.String("sweep_schedule", cfg.SweepSchedule))
	return wg.Wait
}

// runServer serves until SIGINT or SIGTERM, then drains HTTP requests
// before stopping background work.
func runServer(logger *slog.Logger, handler http.Handler, version string, background func(context.Context) func()) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	waitBackground := background(ctx)

	addr := fmt.Sprintf(":%d", envcfg.GetEnvInt("PORT", 8080))
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}

	cancel()
	waitBackground()
	logger.Info("server stopped")
}
