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
	"github.com/redis/go-redis/v9"

	"github.com/jigneshshiyal/SmartResumeAgent/internal/api"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/auth"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/config"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/customizer"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/database"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/extractor"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/llm"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/pdf"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/scan"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/service"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/staging"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/storage"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/store"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/tasks"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/vision"
)

func main() {
	cfg := config.MustLoad()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}
	logger.Info("database ready",
		slog.String("host", cfg.Database.Host),
		slog.Int("port", cfg.Database.Port),
		slog.String("db", cfg.Database.Name),
	)

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

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})
	defer func() {
		if err := asynqClient.Close(); err != nil {
			logger.Error("close asynq client failed", slog.Any("error", err))
		}
	}()

	tokens, ephemeral, err := auth.NewTokenServiceFromConfig(cfg.Auth)
	if err != nil {
		log.Fatalf("init token service: %v", err)
	}
	if ephemeral {
		logger.Warn("jwt key paths not configured, using an ephemeral key pair; tokens will not survive a restart")
	}

	gemini := llm.NewGemini(llm.GeminiOptions{
		BaseURL: cfg.Oracle.GeminiBaseURL,
		APIKey:  cfg.Oracle.GeminiAPIKey,
		Model:   cfg.Oracle.GeminiModel,
		Timeout: cfg.Oracle.Timeout,
	})
	if cfg.Oracle.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY is empty; remote generation will fail and chat will use the local model")
	}
	ollama := llm.NewOllama(cfg.Oracle.OllamaBaseURL, cfg.Oracle.OllamaModel, cfg.Oracle.Timeout)
	remote := llm.Instrument(gemini)
	chatOracle := llm.NewFallback(remote, llm.Instrument(ollama), logger)

	converter, err := pdf.New(pdf.Options{
		Engine:     cfg.Render.Engine,
		ChromePath: cfg.Render.ChromePath,
		Timeout:    cfg.Render.Timeout,
	})
	if err != nil {
		log.Fatalf("init pdf converter: %v", err)
	}

	stager := staging.New(
		storageClient,
		staging.NewRedisIndex(redisClient),
		tasks.NewPurgeScheduler(asynqClient),
		staging.Options{Prefix: cfg.Staging.Prefix, TTL: cfg.Staging.TTL, Logger: logger},
	)

	svc := service.New(service.Deps{
		Store:      store.New(db),
		Passwords:  auth.NewPasswordHasher(cfg.Auth.BcryptCost),
		Tokens:     tokens,
		Extractor:  extractor.New(remote),
		Customizer: customizer.New(remote),
		Renderer:   vision.New(remote),
		Converter:  converter,
		Stager:     stager,
		Originals:  storageClient,
		Scanner:    scan.New(cfg.Clamd.Addr),
		Logger:     logger,
	})

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("get sql db: %v", err)
	}
	router := api.NewRouter(cfg.API, logger, map[string]api.HealthCheck{
		"database": sqlDB.PingContext,
		"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		"storage":  storageClient.Ping,
	})
	api.RegisterRoutes(router, cfg, svc, tokens, chatOracle, redisClient)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.API.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("api listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("failed to start api server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down api server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("api server shutdown failed", slog.Any("error", err))
	}
}
