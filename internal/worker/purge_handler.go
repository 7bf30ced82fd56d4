package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/jigneshshiyal/SmartResumeAgent/internal/metrics"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/staging"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/tasks"
)

// Purger 由 staging.Stager 实现。
type Purger interface {
	Purge(ctx context.Context, name string) error
}

// PurgeTaskHandler 消费暂存 PDF 的到期清理任务。
type PurgeTaskHandler struct {
	purger Purger
	logger *slog.Logger
}

// NewPurgeTaskHandler 创建任务处理器。
func NewPurgeTaskHandler(purger Purger, logger *slog.Logger) *PurgeTaskHandler {
	return &PurgeTaskHandler{purger: purger, logger: logger}
}

// ProcessTask 实现 asynq.Handler。
func (h *PurgeTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	payload, err := tasks.ParseStagingPurgePayload(t)
	if err != nil {
		h.logger.Error("unmarshal task payload failed", slog.Any("error", err))
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	log := h.logger.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.String("staged_pdf", payload.Name),
	)
	if !staging.ValidName(payload.Name) {
		log.Warn("invalid staged name, dropping task")
		return fmt.Errorf("%w: invalid staged name %q", asynq.SkipRetry, payload.Name)
	}

	if err := h.purger.Purge(ctx, payload.Name); err != nil {
		log.Error("purge staged pdf failed", slog.Any("error", err))
		return err
	}

	metrics.AddStagedPurged("task", 1)
	log.Info("staged pdf purged")
	return nil
}
