package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jigneshshiyal/SmartResumeAgent/internal/metrics"
)

// Sweeper 由 staging.Stager 实现。
type Sweeper interface {
	Sweep(ctx context.Context, now time.Time) (int, error)
}

// StagingSweeper 按 cron 表达式周期性清理过期或孤立的暂存 PDF，兜底延迟任务丢失的情况。
type StagingSweeper struct {
	sweeper Sweeper
	logger  *slog.Logger
	timeout time.Duration
	now     func() time.Time
	cron    *cron.Cron
}

// NewStagingSweeper 校验 cron 表达式并注册任务，调用 Start 后开始执行。
func NewStagingSweeper(sweeper Sweeper, spec string, logger *slog.Logger) (*StagingSweeper, error) {
	s := &StagingSweeper{
		sweeper: sweeper,
		logger:  logger,
		timeout: 5 * time.Minute,
		now:     time.Now,
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}
	if _, err := s.cron.AddFunc(spec, s.RunOnce); err != nil {
		return nil, fmt.Errorf("parse sweep spec %q: %w", spec, err)
	}
	return s, nil
}

// RunOnce 执行一次清理。
func (s *StagingSweeper) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	n, err := s.sweeper.Sweep(ctx, s.now())
	if n > 0 {
		metrics.AddStagedPurged("sweep", n)
	}
	if err != nil {
		s.logger.Error("staging sweep failed", slog.Int("removed", n), slog.Any("error", err))
		return
	}
	s.logger.Info("staging sweep finished", slog.Int("removed", n))
}

func (s *StagingSweeper) Start() { s.cron.Start() }

// Stop 停止调度并等待正在执行的清理结束。
func (s *StagingSweeper) Stop() {
	<-s.cron.Stop().Done()
}
