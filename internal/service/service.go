// Package service 编排账号、简历上传、定制与渲染流程，是 HTTP 层与各适配器之间的一层。
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/jigneshshiyal/SmartResumeAgent/internal/auth"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/pdf"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/resume"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/scan"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/store"
)

type Extractor interface {
	Extract(ctx context.Context, filename string, data []byte) (resume.Data, error)
}

type Customizer interface {
	Customize(ctx context.Context, original resume.Data, jobPost string) (resume.Data, error)
}

type Renderer interface {
	Render(ctx context.Context, image []byte, filename string, resumeJSON []byte) (string, error)
}

type Stager interface {
	Stage(ctx context.Context, pdf []byte, correlationID string) (string, error)
	Open(ctx context.Context, name string) ([]byte, error)
}

// Originals 保存上传的简历原件。
type Originals interface {
	PutBytes(ctx context.Context, key string, data []byte, contentType string) error
	DeleteObject(ctx context.Context, key string) error
}

type Tokens interface {
	IssueAccessToken(userID uint, username string) (string, error)
	AccessTokenTTL() time.Duration
}

type Deps struct {
	Store      *store.Store
	Passwords  auth.PasswordHasher
	Tokens     Tokens
	Extractor  Extractor
	Customizer Customizer
	Renderer   Renderer
	Converter  pdf.Converter
	Stager     Stager
	Originals  Originals
	Scanner    scan.Scanner
	Logger     *slog.Logger
}

type Service struct {
	store      *store.Store
	passwords  auth.PasswordHasher
	tokens     Tokens
	extractor  Extractor
	customizer Customizer
	renderer   Renderer
	converter  pdf.Converter
	stager     Stager
	originals  Originals
	scanner    scan.Scanner
	logger     *slog.Logger
}

func New(d Deps) *Service {
	if d.Scanner == nil {
		d.Scanner = scan.Nop{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &Service{
		store:      d.Store,
		passwords:  d.Passwords,
		tokens:     d.Tokens,
		extractor:  d.Extractor,
		customizer: d.Customizer,
		renderer:   d.Renderer,
		converter:  d.Converter,
		stager:     d.Stager,
		originals:  d.Originals,
		scanner:    d.Scanner,
		logger:     d.Logger,
	}
}
