package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// 任务类型常量，确保队列生产者与消费者一致。
const (
	TypeStagingPurge = "staging:purge"
)

// StagingPurgePayload 描述需要清理的暂存 PDF。
type StagingPurgePayload struct {
	Name          string `json:"name"`
	CorrelationID string `json:"correlation_id"`
}

// NewStagingPurgeTask 构造一个暂存 PDF 清理任务。
func NewStagingPurgeTask(name, correlationID string) (*asynq.Task, error) {
	payload, err := json.Marshal(StagingPurgePayload{
		Name:          name,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeStagingPurge, payload, asynq.MaxRetry(3)), nil
}

// ParseStagingPurgePayload 解析任务负载。
func ParseStagingPurgePayload(t *asynq.Task) (StagingPurgePayload, error) {
	var p StagingPurgePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return StagingPurgePayload{}, fmt.Errorf("unmarshal %s payload: %w", t.Type(), err)
	}
	return p, nil
}

// Enqueuer 是 asynq.Client 中本项目用到的部分。
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// PurgeScheduler 在暂存有效期到达后投递清理任务。
type PurgeScheduler struct {
	client Enqueuer
}

func NewPurgeScheduler(client Enqueuer) *PurgeScheduler {
	return &PurgeScheduler{client: client}
}

// SchedulePurge 投递一个延迟执行的清理任务。
func (s *PurgeScheduler) SchedulePurge(name, correlationID string, after time.Duration) error {
	task, err := NewStagingPurgeTask(name, correlationID)
	if err != nil {
		return err
	}
	if _, err := s.client.Enqueue(task, asynq.ProcessIn(after), asynq.TaskID("purge:"+name)); err != nil {
		return fmt.Errorf("enqueue %s: %w", TypeStagingPurge, err)
	}
	return nil
}
