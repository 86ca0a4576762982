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

	"aiResume/internal/api"
	"aiResume/internal/api/middleware"
	"aiResume/internal/config"
	"aiResume/internal/drafts"
	"aiResume/internal/export"
	"aiResume/internal/generation"
	"aiResume/internal/storage"
	"aiResume/internal/tasks"
	"aiResume/internal/worker"
)

func main() {
	cfg := config.MustLoad()

	logger := cfg.Log.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := api.RegisterValidators(); err != nil {
		log.Fatalf("register validators: %v", err)
	}

	generated, uploads, err := openStores(ctx, cfg)
	if err != nil {
		log.Fatalf("init storage: %v", err)
	}
	logger.Info("storage ready", slog.String("driver", cfg.Storage.Driver))

	renderer, err := export.NewRenderer(cfg.PDF.Engine, cfg.PDF.ChromePath, logger)
	if err != nil {
		log.Fatalf("init pdf renderer: %v", err)
	}

	handler := &api.Handler{
		Generator:      generation.NewService(cfg.GeminiAPIKey, generation.NewGeminiFactory(cfg.Gemini.Model), cfg.Gemini.Timeout, logger),
		Exporter:       export.NewService(generated, renderer, cfg.PDF.Timeout, logger),
		Generated:      generated,
		Uploads:        uploads,
		MaxUploadBytes: cfg.Storage.MaxUploadBytes,
	}
	if cfg.Clamd.Addr != "" {
		handler.Scanner = api.NewClamdScanner(cfg.Clamd.Addr)
	}
	if !handler.Generator.Configured() {
		logger.Warn("gemini api key not configured, generation requests will fail until GEMINI_API_KEY is set")
	}

	generationLimit := middleware.HourlyRateLimit(nil, "generation", 0, nil)
	if cfg.RedisEnabled() {
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

		taskClient := asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer taskClient.Close()

		handler.Drafts = drafts.NewRedisStore(redisClient, cfg.Drafts.TTL)
		if scheduler := tasks.NewCleanupScheduler(taskClient, cfg.Cleanup.Retention); scheduler != nil {
			handler.Cleanup = scheduler
		}
		generationLimit = middleware.HourlyRateLimit(redisClient, "generation", cfg.Generation.RateLimit, nil)
		logger.Info("redis ready", slog.String("addr", cfg.Redis.Addr))
	} else {
		memDrafts := drafts.NewMemoryStore(cfg.Drafts.TTL)
		handler.Drafts = memDrafts
		go purgeDrafts(ctx, memDrafts, logger)

		if cfg.Cleanup.Retention > 0 {
			sweeper := worker.NewSweeper(generated, cfg.Cleanup.Retention, cfg.Cleanup.Schedule, logger)
			if err := sweeper.Start(ctx); err != nil {
				log.Fatalf("start cleanup sweeper: %v", err)
			}
			defer sweeper.Stop()
		}
	}

	router, err := api.NewRouter(logger, cfg.API.TrustedProxies)
	if err != nil {
		log.Fatalf("init router: %v", err)
	}
	api.RegisterRoutes(router, handler, generationLimit)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.API.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
		}
	}()

	logger.Info("api listening", slog.String("addr", server.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("failed to start api server: %v", err)
	}
	logger.Info("api stopped")
}

func openStores(ctx context.Context, cfg *config.Config) (generated, uploads storage.Store, err error) {
	if cfg.Storage.Driver == "minio" {
		client, err := storage.NewMinIOClient(ctx, cfg.MinIO)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewMinIOStore(client, cfg.MinIO, "generated"), storage.NewMinIOStore(client, cfg.MinIO, "uploads"), nil
	}

	gen, err := storage.NewLocalStore(cfg.Storage.GeneratedDir)
	if err != nil {
		return nil, nil, err
	}
	up, err := storage.NewLocalStore(cfg.Storage.UploadsDir)
	if err != nil {
		return nil, nil, err
	}
	return gen, up, nil
}

// purgeDrafts drops expired in-memory drafts so abandoned ones do not accumulate.
func purgeDrafts(ctx context.Context, store *drafts.MemoryStore, logger *slog.Logger) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := store.Purge(); n > 0 {
				logger.Debug("purged expired drafts", slog.Int("count", n))
			}
		}
	}
}
