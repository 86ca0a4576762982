package tasks

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingEnqueuer struct {
	tasks []*asynq.Task
	opts  [][]asynq.Option
}

func (r *recordingEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	r.tasks = append(r.tasks, task)
	r.opts = append(r.opts, opts)
	return &asynq.TaskInfo{ID: "1", Type: task.Type()}, nil
}

func TestCleanupScheduler_EnqueuesDelayedTask(t *testing.T) {
	rec := &recordingEnqueuer{}
	s := NewCleanupScheduler(rec, 2*time.Hour)
	require.NotNil(t, s)

	require.NoError(t, s.Schedule(context.Background(), "resume_Jane_Doe.pdf", "cid-1"))
	require.Len(t, rec.tasks, 1)
	assert.Equal(t, TypeGeneratedCleanup, rec.tasks[0].Type())

	var payload CleanupPayload
	require.NoError(t, json.Unmarshal(rec.tasks[0].Payload(), &payload))
	assert.Equal(t, CleanupPayload{Filename: "resume_Jane_Doe.pdf", CorrelationID: "cid-1"}, payload)

	require.Len(t, rec.opts[0], 1)
	assert.Equal(t, asynq.ProcessInOpt, rec.opts[0][0].Type())
	assert.Equal(t, 2*time.Hour, rec.opts[0][0].Value())
}

func TestCleanupScheduler_DisabledIsNoop(t *testing.T) {
	rec := &recordingEnqueuer{}
	assert.Nil(t, NewCleanupScheduler(rec, 0))
	assert.Nil(t, NewCleanupScheduler(nil, time.Hour))

	var s *CleanupScheduler
	assert.NoError(t, s.Schedule(context.Background(), "a.pdf", ""))
	assert.Empty(t, rec.tasks)
}
