package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/jigneshshiyal/SmartResumeAgent/internal/apperror"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/database"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/docparse"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/resume"
)

// Source 标识渲染使用原始简历还是定制版本。
type Source string

const (
	SourceOriginal   Source = "original"
	SourceCustomized Source = "customized"
)

// ParseSource 校验客户端传入的 source，空值视为 original。
func ParseSource(raw string) (Source, error) {
	switch Source(strings.ToLower(strings.TrimSpace(raw))) {
	case "", SourceOriginal:
		return SourceOriginal, nil
	case SourceCustomized:
		return SourceCustomized, nil
	default:
		return "", apperror.Validation(fmt.Sprintf("invalid source %q, expected original or customized", raw))
	}
}

// cleanFilename 只保留客户端文件名的最后一段。
func cleanFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return name
}

// UploadResume 保存原件、抽取结构化数据并落库。任一步失败都不会留下记录或原件。
func (s *Service) UploadResume(ctx context.Context, username, filename string, data []byte) (resume.Data, error) {
	user, err := s.store.UserByUsername(ctx, username)
	if err != nil {
		return resume.Data{}, err
	}

	filename = cleanFilename(filename)
	if filename == "" || len(data) == 0 {
		return resume.Data{}, apperror.Validation("a non-empty resume file is required")
	}
	if !docparse.Supported(filename) {
		return resume.Data{}, apperror.Validation(fmt.Sprintf("unsupported file type %q, expected one of %s",
			filepath.Ext(filename), strings.Join(docparse.SupportedExtensions, ", ")))
	}
	if err := s.scanner.Scan(ctx, data); err != nil {
		return resume.Data{}, err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	objectKey := fmt.Sprintf("resumes/%d/%s%s", user.ID, uuid.NewString(), ext)
	if err := s.originals.PutBytes(ctx, objectKey, data, contentTypeFor(ext)); err != nil {
		return resume.Data{}, fmt.Errorf("store original: %w", err)
	}
	log := s.logger.With(slog.Uint64("user_id", uint64(user.ID)), slog.String("object_key", objectKey))

	extracted, err := s.extractor.Extract(ctx, filename, data)
	if err != nil {
		s.discardOriginal(ctx, log, objectKey)
		return resume.Data{}, err
	}

	payload, err := extracted.JSON()
	if err != nil {
		s.discardOriginal(ctx, log, objectKey)
		return resume.Data{}, fmt.Errorf("encode extracted data: %w", err)
	}
	row := database.Resume{
		Filename:      filename,
		ObjectKey:     objectKey,
		ExtractedData: datatypes.JSON(payload),
		UserID:        user.ID,
	}
	if err := s.store.CreateResume(ctx, &row); err != nil {
		s.discardOriginal(ctx, log, objectKey)
		return resume.Data{}, err
	}

	log.Info("resume uploaded", slog.Uint64("resume_id", uint64(row.ID)))
	return extracted, nil
}

func (s *Service) discardOriginal(ctx context.Context, log *slog.Logger, key string) {
	// 请求可能已被取消，清理仍需执行
	if err := s.originals.DeleteObject(context.WithoutCancel(ctx), key); err != nil {
		log.Warn("delete uploaded original failed", slog.Any("error", err))
	}
}

func contentTypeFor(ext string) string {
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	if ext == ".docx" {
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return "application/octet-stream"
}

// CustomizeResult 是一次定制的结果。
type CustomizeResult struct {
	ID   uint
	Data resume.Data
}

// CustomizeResume 以最新简历为基础生成针对职位的定制版本。
func (s *Service) CustomizeResume(ctx context.Context, username, jobPost string) (CustomizeResult, error) {
	if strings.TrimSpace(jobPost) == "" {
		return CustomizeResult{}, apperror.Validation("job_post is required")
	}
	user, err := s.store.UserByUsername(ctx, username)
	if err != nil {
		return CustomizeResult{}, err
	}
	latest, err := s.store.LatestResume(ctx, user.ID)
	if err != nil {
		return CustomizeResult{}, err
	}
	original, err := resume.Parse(latest.ExtractedData)
	if err != nil {
		return CustomizeResult{}, fmt.Errorf("decode stored resume %d: %w", latest.ID, err)
	}

	customized, err := s.customizer.Customize(ctx, original, jobPost)
	if err != nil {
		return CustomizeResult{}, err
	}
	payload, err := customized.JSON()
	if err != nil {
		return CustomizeResult{}, fmt.Errorf("encode customized data: %w", err)
	}

	row := database.ResumeCustomization{
		JobPostText:    jobPost,
		CustomizedData: datatypes.JSON(payload),
		ResumeID:       latest.ID,
		UserID:         user.ID,
	}
	if err := s.store.CreateCustomization(ctx, &row); err != nil {
		return CustomizeResult{}, err
	}
	s.logger.Info("resume customized",
		slog.Uint64("user_id", uint64(user.ID)),
		slog.Uint64("resume_id", uint64(latest.ID)),
		slog.Uint64("customization_id", uint64(row.ID)),
	)
	return CustomizeResult{ID: row.ID, Data: customized}, nil
}

// Customization 是列表接口返回的一项。
type Customization struct {
	ID          uint
	JobPostText string
	Data        datatypes.JSON
}

// ListCustomizations 返回用户全部定制版本，按创建顺序排列。
func (s *Service) ListCustomizations(ctx context.Context, username string) ([]Customization, error) {
	user, err := s.store.UserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.ListCustomizations(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	out := make([]Customization, 0, len(rows))
	for _, r := range rows {
		out = append(out, Customization{ID: r.ID, JobPostText: r.JobPostText, Data: r.CustomizedData})
	}
	return out, nil
}

// resolveSource 选择渲染使用的简历 JSON，返回实际使用的定制版本 ID（original 时为 nil）。
func (s *Service) resolveSource(ctx context.Context, userID uint, source Source, customizationID *uint) ([]byte, *uint, error) {
	switch source {
	case SourceCustomized:
		var (
			row database.ResumeCustomization
			err error
		)
		if customizationID != nil {
			row, err = s.store.CustomizationByID(ctx, userID, *customizationID)
		} else {
			row, err = s.store.LatestCustomization(ctx, userID)
		}
		if err != nil {
			return nil, nil, err
		}
		id := row.ID
		return row.CustomizedData, &id, nil
	case SourceOriginal:
		row, err := s.store.LatestResume(ctx, userID)
		if err != nil {
			return nil, nil, err
		}
		return row.ExtractedData, nil, nil
	default:
		return nil, nil, apperror.Validation(fmt.Sprintf("invalid source %q", source))
	}
}

// RenderInput 是从参考图片渲染简历的参数。
type RenderInput struct {
	Username        string
	Source          Source
	CustomizationID *uint
	ImageFilename   string
	Image           []byte
	CorrelationID   string
}

// RenderResult 包含生成的 HTML 与暂存 PDF 的文件名。
type RenderResult struct {
	HTML            string
	PDFName         string
	Source          Source
	CustomizationID *uint
}

// RenderFromImage 让多模态模型按参考图片排版简历，导出 A4 PDF 并暂存供下载。
func (s *Service) RenderFromImage(ctx context.Context, in RenderInput) (RenderResult, error) {
	user, err := s.store.UserByUsername(ctx, in.Username)
	if err != nil {
		return RenderResult{}, err
	}
	if len(in.Image) == 0 {
		return RenderResult{}, apperror.Validation("a reference image is required")
	}
	if err := s.scanner.Scan(ctx, in.Image); err != nil {
		return RenderResult{}, err
	}

	resumeJSON, usedID, err := s.resolveSource(ctx, user.ID, in.Source, in.CustomizationID)
	if err != nil {
		return RenderResult{}, err
	}

	html, err := s.renderer.Render(ctx, in.Image, cleanFilename(in.ImageFilename), resumeJSON)
	if err != nil {
		return RenderResult{}, err
	}
	pdfBytes, err := s.converter.Convert(ctx, html)
	if err != nil {
		return RenderResult{}, apperror.Render("pdf export failed", err)
	}
	name, err := s.stager.Stage(ctx, pdfBytes, in.CorrelationID)
	if err != nil {
		return RenderResult{}, err
	}

	s.logger.Info("resume rendered from image",
		slog.Uint64("user_id", uint64(user.ID)),
		slog.String("source", string(in.Source)),
		slog.String("pdf", name),
		slog.Int("pdf_bytes", len(pdfBytes)),
	)
	return RenderResult{HTML: html, PDFName: name, Source: in.Source, CustomizationID: usedID}, nil
}

// DownloadPDF 返回暂存的 PDF。
func (s *Service) DownloadPDF(ctx context.Context, name string) ([]byte, error) {
	data, err := s.stager.Open(ctx, name)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("open staged pdf: %w", err)
	}
	return data, nil
}
