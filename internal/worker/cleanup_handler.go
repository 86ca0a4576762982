package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"aiResume/internal/metrics"
	"aiResume/internal/storage"
	"aiResume/internal/tasks"
)

// CleanupTaskHandler 负责消费导出文件清理任务。
type CleanupTaskHandler struct {
	store     storage.Store
	retention time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewCleanupTaskHandler 创建任务处理器。
func NewCleanupTaskHandler(store storage.Store, retention time.Duration, logger *slog.Logger) *CleanupTaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CleanupTaskHandler{store: store, retention: retention, logger: logger, now: time.Now}
}

// ProcessTask 实现 asynq.Handler。
// A file re-exported under the same name after the task was enqueued is younger than
// the retention and is kept; the sweep removes it later.
func (h *CleanupTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload tasks.CleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		h.logger.Error("unmarshal task payload failed", slog.Any("error", err))
		return fmt.Errorf("decode cleanup payload: %v: %w", err, asynq.SkipRetry)
	}

	log := h.logger.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.String("file", payload.Filename),
	)

	rc, info, err := h.store.Open(ctx, payload.Filename)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("file already gone, skipping task")
			return nil
		}
		log.Error("stat generated file failed", slog.Any("error", err))
		return err
	}
	_ = rc.Close()

	if h.retention > 0 && !info.ModTime.IsZero() && h.now().Sub(info.ModTime) < h.retention {
		log.Info("file was re-exported, keeping it", slog.Time("mod_time", info.ModTime))
		return nil
	}

	if err := h.store.Delete(ctx, payload.Filename); err != nil {
		log.Error("delete generated file failed", slog.Any("error", err))
		return err
	}
	metrics.AddDeleted("task", 1)
	log.Info("generated file deleted")
	return nil
}
