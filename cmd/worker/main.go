package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/jigneshshiyal/SmartResumeAgent/internal/config"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/metrics"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/staging"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/storage"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/tasks"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/worker"
)

func main() {
	cfg := config.MustLoad()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	storageClient, err := storage.NewClient(startupCtx, cfg.MinIO)
	if err != nil {
		log.Fatalf("init storage client: %v", err)
	}
	logger.Info("storage client ready", slog.String("bucket", cfg.MinIO.Bucket))

	redisAddr := cfg.Redis.Addr()
	redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("close redis client failed", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(startupCtx).Err(); err != nil {
		log.Fatalf("ping redis: %v", err)
	}

	// worker 只负责清理，不投递新的清理任务。
	stager := staging.New(
		storageClient,
		staging.NewRedisIndex(redisClient),
		nil,
		staging.Options{Prefix: cfg.Staging.Prefix, TTL: cfg.Staging.TTL, Logger: logger},
	)

	sweeper, err := worker.NewStagingSweeper(stager, cfg.Staging.SweepSpec, logger)
	if err != nil {
		log.Fatalf("init staging sweeper: %v", err)
	}

	server := asynq.NewServer(asynq.RedisClientOpt{Addr: redisAddr}, asynq.Config{
		Concurrency: cfg.Worker.Concurrency,
	})

	mux := asynq.NewServeMux()
	mux.Use(metrics.AsynqMetricsMiddleware())
	mux.Handle(tasks.TypeStagingPurge, worker.NewPurgeTaskHandler(stager, logger))

	if err := server.Start(mux); err != nil {
		log.Fatalf("start worker server: %v", err)
	}
	sweeper.Start()

	opsMux := http.NewServeMux()
	opsMux.Handle("/metrics", promhttp.Handler())
	opsMux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("worker health check failed", slog.String("dependency", "redis"), slog.Any("error", err))
			http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
			return
		}
		if err := storageClient.Ping(ctx); err != nil {
			logger.Warn("worker health check failed", slog.String("dependency", "storage"), slog.Any("error", err))
			http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	})
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Worker.MetricsPort),
		Handler:           opsMux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("worker metrics server stopped", slog.Any("error", err))
		}
	}()

	logger.Info("worker service started",
		slog.String("redis_addr", redisAddr),
		slog.String("sweep_spec", cfg.Staging.SweepSpec),
		slog.Int("metrics_port", cfg.Worker.MetricsPort),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down worker")
	sweeper.Stop()
	server.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsServer.Shutdown(ctx)
}
