package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jigneshshiyal/SmartResumeAgent/internal/metrics"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/tasks"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakePurger struct {
	purged []string
	err    error
}

func (f *fakePurger) Purge(_ context.Context, name string) error {
	if f.err != nil {
		return f.err
	}
	f.purged = append(f.purged, name)
	return nil
}

const stagedName = "3f2c8a4e-7b1d-4c5e-9a6f-0d1e2f3a4b5c.pdf"

func TestPurgeTaskHandler(t *testing.T) {
	p := &fakePurger{}
	h := NewPurgeTaskHandler(p, discard)

	task, err := tasks.NewStagingPurgeTask(stagedName, "cid-1")
	require.NoError(t, err)

	require.NoError(t, h.ProcessTask(context.Background(), task))
	assert.Equal(t, []string{stagedName}, p.purged)
}

func TestPurgeTaskHandlerSkipsRetryOnBadPayload(t *testing.T) {
	h := NewPurgeTaskHandler(&fakePurger{}, discard)

	err := h.ProcessTask(context.Background(), asynq.NewTask(tasks.TypeStagingPurge, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	task, err := tasks.NewStagingPurgeTask("../etc/passwd", "")
	require.NoError(t, err)
	err = h.ProcessTask(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestPurgeTaskHandlerRetriesStoreErrors(t *testing.T) {
	storeErr := errors.New("minio unavailable")
	h := NewPurgeTaskHandler(&fakePurger{err: storeErr}, discard)

	task, err := tasks.NewStagingPurgeTask(stagedName, "")
	require.NoError(t, err)

	err = h.ProcessTask(context.Background(), task)
	assert.ErrorIs(t, err, storeErr)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

type fakeSweeper struct {
	calls []time.Time
	n     int
	err   error
}

func (f *fakeSweeper) Sweep(_ context.Context, now time.Time) (int, error) {
	f.calls = append(f.calls, now)
	return f.n, f.err
}

func TestStagingSweeperRunOnce(t *testing.T) {
	fs := &fakeSweeper{n: 2}
	s, err := NewStagingSweeper(fs, "@every 15m", discard)
	require.NoError(t, err)

	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	s.RunOnce()
	fs.err = errors.New("list failed")
	s.RunOnce()

	assert.Equal(t, []time.Time{fixed, fixed}, fs.calls)
}

func TestStagingSweeperRejectsBadSpec(t *testing.T) {
	_, err := NewStagingSweeper(&fakeSweeper{}, "every now and then", discard)
	assert.Error(t, err)
}

func TestStagingSweeperStartStop(t *testing.T) {
	s, err := NewStagingSweeper(&fakeSweeper{}, "@every 1h", discard)
	require.NoError(t, err)
	s.Start()
	s.Stop()
}

func TestPurgeHandlerBehindMetricsMiddleware(t *testing.T) {
	p := &fakePurger{}
	h := metrics.AsynqMetricsMiddleware()(NewPurgeTaskHandler(p, discard))

	task, err := tasks.NewStagingPurgeTask(stagedName, "cid-2")
	require.NoError(t, err)
	require.NoError(t, h.ProcessTask(context.Background(), task))
	assert.Len(t, p.purged, 1)
}
