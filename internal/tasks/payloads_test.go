package tasks

import (
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingEnqueuer struct {
	task *asynq.Task
	opts []asynq.Option
}

func (r *recordingEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	r.task = task
	r.opts = opts
	return &asynq.TaskInfo{}, nil
}

func TestSchedulePurge(t *testing.T) {
	rec := &recordingEnqueuer{}
	require.NoError(t, NewPurgeScheduler(rec).SchedulePurge("abc.pdf", "cid-1", time.Hour))

	require.NotNil(t, rec.task)
	assert.Equal(t, TypeStagingPurge, rec.task.Type())

	payload, err := ParseStagingPurgePayload(rec.task)
	require.NoError(t, err)
	assert.Equal(t, "abc.pdf", payload.Name)
	assert.Equal(t, "cid-1", payload.CorrelationID)

	var processIn time.Duration
	for _, o := range rec.opts {
		if o.Type() == asynq.ProcessInOpt {
			processIn = o.Value().(time.Duration)
		}
	}
	assert.Equal(t, time.Hour, processIn)
}

func TestParseStagingPurgePayloadRejectsGarbage(t *testing.T) {
	_, err := ParseStagingPurgePayload(asynq.NewTask(TypeStagingPurge, []byte("{")))
	assert.Error(t, err)
}
