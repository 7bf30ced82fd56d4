package llm

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jigneshshiyal/SmartResumeAgent/internal/metrics"
)

// Fallback 先调用主模型，失败后切换到备用模型。
// 流式调用仅在主模型尚未推送任何片段时切换。
type Fallback struct {
	primary   Model
	secondary Model
	logger    *slog.Logger
}

func NewFallback(primary, secondary Model, logger *slog.Logger) *Fallback {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fallback{primary: primary, secondary: secondary, logger: logger}
}

func (f *Fallback) Name() string {
	return f.primary.Name() + "+" + f.secondary.Name()
}

func (f *Fallback) Generate(ctx context.Context, req Request) (string, error) {
	text, err := f.primary.Generate(ctx, req)
	if err == nil {
		return text, nil
	}
	if ctx.Err() != nil {
		return "", err
	}
	f.logger.Warn("primary model failed, falling back",
		slog.String("primary", f.primary.Name()),
		slog.String("secondary", f.secondary.Name()),
		slog.Any("error", err),
	)
	metrics.IncOracleFallback("generate")
	text, err2 := f.secondary.Generate(ctx, req)
	if err2 != nil {
		return "", errors.Join(err, err2)
	}
	return text, nil
}

func (f *Fallback) Stream(ctx context.Context, messages []Message, emit func(string) error) error {
	emitted := false
	err := f.primary.Stream(ctx, messages, func(fragment string) error {
		emitted = true
		return emit(fragment)
	})
	if err == nil || emitted || ctx.Err() != nil {
		return err
	}
	f.logger.Warn("primary model stream failed, falling back",
		slog.String("primary", f.primary.Name()),
		slog.String("secondary", f.secondary.Name()),
		slog.Any("error", err),
	)
	metrics.IncOracleFallback("stream")
	if err2 := f.secondary.Stream(ctx, messages, emit); err2 != nil {
		return errors.Join(err, err2)
	}
	return nil
}

// Instrumented 为模型调用记录耗时与结果。
type Instrumented struct {
	Model
}

func Instrument(m Model) Instrumented {
	return Instrumented{Model: m}
}

func (i Instrumented) Generate(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	text, err := i.Model.Generate(ctx, req)
	metrics.ObserveOracleCall(i.Model.Name(), "generate", err, time.Since(start))
	return text, err
}

func (i Instrumented) Stream(ctx context.Context, messages []Message, emit func(string) error) error {
	start := time.Now()
	err := i.Model.Stream(ctx, messages, emit)
	metrics.ObserveOracleCall(i.Model.Name(), "stream", err, time.Since(start))
	return err
}
