package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// 任务类型常量，确保队列生产者与消费者一致。
const (
	TypeGeneratedCleanup = "generated:cleanup"
)

// CleanupPayload 描述需要过期删除的导出文件。
type CleanupPayload struct {
	Filename      string `json:"filename"`
	CorrelationID string `json:"correlation_id"`
}

// NewCleanupTask 构造一个导出文件清理任务。
func NewCleanupTask(filename, correlationID string) (*asynq.Task, error) {
	payload, err := json.Marshal(CleanupPayload{
		Filename:      filename,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeGeneratedCleanup, payload, asynq.MaxRetry(3)), nil
}

// Enqueuer is the producer side of asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// CleanupScheduler enqueues delayed deletions of exported files.
type CleanupScheduler struct {
	client    Enqueuer
	retention time.Duration
}

// NewCleanupScheduler returns nil when retention is disabled; a nil scheduler is a no-op.
func NewCleanupScheduler(client Enqueuer, retention time.Duration) *CleanupScheduler {
	if client == nil || retention <= 0 {
		return nil
	}
	return &CleanupScheduler{client: client, retention: retention}
}

// Schedule enqueues deletion of filename after the retention period.
func (s *CleanupScheduler) Schedule(ctx context.Context, filename, correlationID string) error {
	if s == nil {
		return nil
	}
	task, err := NewCleanupTask(filename, correlationID)
	if err != nil {
		return fmt.Errorf("build cleanup task: %w", err)
	}
	if _, err := s.client.EnqueueContext(ctx, task, asynq.ProcessIn(s.retention)); err != nil {
		return fmt.Errorf("enqueue cleanup for %q: %w", filename, err)
	}
	return nil
}
