package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"aiResume/internal/config"
	"aiResume/internal/metrics"
	"aiResume/internal/storage"
	"aiResume/internal/tasks"
	"aiResume/internal/worker"
)

func main() {
	cfg := config.MustLoad()

	logger := cfg.Log.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	if !cfg.RedisEnabled() {
		log.Fatalf("worker requires REDIS_ADDR")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	generated, err := openGeneratedStore(ctx, cfg)
	if err != nil {
		log.Fatalf("init storage: %v", err)
	}
	logger.Info("storage ready", slog.String("driver", cfg.Storage.Driver))

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("close redis client failed", slog.Any("error", err))
		}
	}()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("ping redis: %v", err)
	}

	if cfg.Cleanup.Retention > 0 {
		sweeper := worker.NewSweeper(generated, cfg.Cleanup.Retention, cfg.Cleanup.Schedule, logger)
		if err := sweeper.Start(ctx); err != nil {
			log.Fatalf("start cleanup sweeper: %v", err)
		}
		defer sweeper.Stop()
	} else {
		logger.Info("file retention disabled, generated files are kept")
	}

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 4,
		Logger:      asynqLogger{logger.With(slog.String("component", "asynq"))},
	})

	mux := asynq.NewServeMux()
	mux.Use(metrics.AsynqMetricsMiddleware())
	mux.Handle(tasks.TypeGeneratedCleanup, worker.NewCleanupTaskHandler(generated, cfg.Cleanup.Retention, logger))

	if err := server.Start(mux); err != nil {
		log.Fatalf("start worker server: %v", err)
	}
	logger.Info("worker service started", slog.String("redis_addr", cfg.Redis.Addr))

	<-ctx.Done()
	server.Shutdown()
	logger.Info("worker service stopped")
}

func openGeneratedStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	if cfg.Storage.Driver == "minio" {
		client, err := storage.NewMinIOClient(ctx, cfg.MinIO)
		if err != nil {
			return nil, err
		}
		return storage.NewMinIOStore(client, cfg.MinIO, "generated"), nil
	}
	return storage.NewLocalStore(cfg.Storage.GeneratedDir)
}

// asynqLogger adapts slog to asynq.Logger.
type asynqLogger struct {
	l *slog.Logger
}

func (a asynqLogger) Debug(args ...any) { a.l.Debug(fmt.Sprint(args...)) }
func (a asynqLogger) Info(args ...any)  { a.l.Info(fmt.Sprint(args...)) }
func (a asynqLogger) Warn(args ...any)  { a.l.Warn(fmt.Sprint(args...)) }
func (a asynqLogger) Error(args ...any) { a.l.Error(fmt.Sprint(args...)) }
func (a asynqLogger) Fatal(args ...any) {
	a.l.Error(fmt.Sprint(args...))
	os.Exit(1)
}
