// Package staging 管理生成的 PDF 暂存：UUID 命名、带有效期，过期后由 worker 清理。
package staging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jigneshshiyal/SmartResumeAgent/internal/apperror"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/storage"
)

// ObjectStore 是暂存依赖的对象存储操作，由 storage.Client 实现。
type ObjectStore interface {
	PutBytes(ctx context.Context, key string, data []byte, contentType string) error
	ReadObject(ctx context.Context, key string) ([]byte, error)
	DeleteObject(ctx context.Context, key string) error
	ListObjects(ctx context.Context, prefix string) ([]storage.ObjectMeta, error)
}

// Index 记录仍在有效期内的暂存文件。
type Index interface {
	Mark(ctx context.Context, name string, ttl time.Duration) error
	Exists(ctx context.Context, name string) (bool, error)
	Remove(ctx context.Context, name string) error
}

// PurgeScheduler 在有效期结束后安排清理。
type PurgeScheduler interface {
	SchedulePurge(name, correlationID string, after time.Duration) error
}

type Stager struct {
	objects   ObjectStore
	index     Index
	scheduler PurgeScheduler
	prefix    string
	ttl       time.Duration
	logger    *slog.Logger
}

type Options struct {
	Prefix string
	TTL    time.Duration
	Logger *slog.Logger
}

func New(objects ObjectStore, index Index, scheduler PurgeScheduler, opts Options) *Stager {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "staged-pdfs/"
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Stager{objects: objects, index: index, scheduler: scheduler, prefix: prefix, ttl: ttl, logger: logger}
}

// TTL 返回暂存有效期。
func (s *Stager) TTL() time.Duration { return s.ttl }

// ValidName 判断是否为服务端生成的暂存文件名（<uuid>.pdf）。
func ValidName(name string) bool {
	id, ok := strings.CutSuffix(name, ".pdf")
	if !ok {
		return false
	}
	parsed, err := uuid.Parse(id)
	return err == nil && parsed.String() == id
}

func (s *Stager) key(name string) string {
	return s.prefix + name
}

// Stage 保存 PDF 并返回文件名。清理任务投递失败不影响本次暂存，依赖定时清扫兜底。
func (s *Stager) Stage(ctx context.Context, pdf []byte, correlationID string) (string, error) {
	name := uuid.NewString() + ".pdf"
	if err := s.objects.PutBytes(ctx, s.key(name), pdf, "application/pdf"); err != nil {
		return "", fmt.Errorf("stage pdf: %w", err)
	}
	if err := s.index.Mark(ctx, name, s.ttl); err != nil {
		_ = s.objects.DeleteObject(ctx, s.key(name))
		return "", fmt.Errorf("index staged pdf: %w", err)
	}
	if s.scheduler != nil {
		if err := s.scheduler.SchedulePurge(name, correlationID, s.ttl); err != nil {
			s.logger.Warn("schedule staged pdf purge failed",
				slog.String("name", name),
				slog.Any("error", err),
			)
		}
	}
	return name, nil
}

// Open 返回仍在有效期内的暂存 PDF；名称非法、已过期或不存在时返回 NotFound。
func (s *Stager) Open(ctx context.Context, name string) ([]byte, error) {
	if !ValidName(name) {
		return nil, apperror.NotFound("staged file")
	}
	ok, err := s.index.Exists(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("lookup staged pdf: %w", err)
	}
	if !ok {
		return nil, apperror.NotFound("staged file")
	}
	data, err := s.objects.ReadObject(ctx, s.key(name))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, apperror.NotFound("staged file")
		}
		return nil, fmt.Errorf("read staged pdf: %w", err)
	}
	return data, nil
}

// Purge 删除暂存文件及其索引，可重复调用。
func (s *Stager) Purge(ctx context.Context, name string) error {
	if !ValidName(name) {
		return fmt.Errorf("purge: invalid staged name %q", name)
	}
	if err := s.index.Remove(ctx, name); err != nil {
		return fmt.Errorf("purge index: %w", err)
	}
	if err := s.objects.DeleteObject(ctx, s.key(name)); err != nil {
		return fmt.Errorf("purge object: %w", err)
	}
	return nil
}

// Sweep 删除超过有效期且索引中已不存在的对象，返回删除数量。
func (s *Stager) Sweep(ctx context.Context, now time.Time) (int, error) {
	objects, err := s.objects.ListObjects(ctx, s.prefix)
	if err != nil {
		return 0, fmt.Errorf("sweep list: %w", err)
	}
	removed := 0
	var errs []error
	for _, obj := range objects {
		if now.Sub(obj.LastModified) < s.ttl {
			continue
		}
		name := path.Base(obj.Key)
		if ValidName(name) {
			live, err := s.index.Exists(ctx, name)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if live {
				continue
			}
		}
		if err := s.objects.DeleteObject(ctx, obj.Key); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}
