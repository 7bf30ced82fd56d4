package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/jigneshshiyal/SmartResumeAgent/internal/api/middleware"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/apperror"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/service"
)

// ResumeHandler 负责处理与简历相关的 API 请求。
type ResumeHandler struct {
	svc            *service.Service
	maxUploadBytes int64
	verbose        bool
}

// NewResumeHandler 构造 ResumeHandler。
func NewResumeHandler(svc *service.Service, maxUploadBytes int64, verbose bool) *ResumeHandler {
	return &ResumeHandler{svc: svc, maxUploadBytes: maxUploadBytes, verbose: verbose}
}

var errFileTooLarge = apperror.Validation("file too large")

// readUpload 读取 multipart 中的文件字段，超过上限返回 errFileTooLarge。
func (h *ResumeHandler) readUpload(c *gin.Context, field string) (string, []byte, error) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}
	header, err := c.FormFile(field)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return "", nil, errFileTooLarge
		}
		return "", nil, apperror.Validation(fmt.Sprintf("multipart field %q is required", field))
	}
	data, err := readFileHeader(header)
	if err != nil {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	return header.Filename, data, nil
}

func readFileHeader(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// UploadResume 接收简历文件并返回抽取出的结构化数据。
func (h *ResumeHandler) UploadResume(c *gin.Context) {
	filename, data, err := h.readUpload(c, "file")
	if err != nil {
		respondError(c, err, h.verbose)
		return
	}
	username, err := claimedUsername(c, c.PostForm("username"))
	if err != nil {
		respondError(c, err, h.verbose)
		return
	}

	extracted, err := h.svc.UploadResume(c.Request.Context(), username, filename, data)
	if err != nil {
		respondError(c, err, h.verbose)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":        "Resume uploaded and processed successfully",
		"extracted_data": extracted,
	})
}

type customizeRequest struct {
	Username string `json:"username" form:"username"`
	JobPost  string `json:"job_post" form:"job_post"`
}

// CustomizeResume 根据职位描述生成定制版技能列表。
func (h *ResumeHandler) CustomizeResume(c *gin.Context) {
	var req customizeRequest
	if err := c.ShouldBind(&req); err != nil {
		BadRequest(c, "invalid request body")
		return
	}
	username, err := claimedUsername(c, req.Username)
	if err != nil {
		respondError(c, err, h.verbose)
		return
	}

	result, err := h.svc.CustomizeResume(c.Request.Context(), username, req.JobPost)
	if err != nil {
		respondError(c, err, h.verbose)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":           "Resume customized successfully",
		"customized_resume": result.Data,
		"customization_id":  result.ID,
	})
}

type customizationItem struct {
	ID             uint           `json:"id"`
	JobPostText    string         `json:"job_post_text"`
	CustomizedData datatypes.JSON `json:"customized_data"`
}

// ListCustomizations 列出用户全部定制版本。
func (h *ResumeHandler) ListCustomizations(c *gin.Context) {
	username, err := claimedUsername(c, c.Query("username"))
	if err != nil {
		respondError(c, err, h.verbose)
		return
	}
	rows, err := h.svc.ListCustomizations(c.Request.Context(), username)
	if err != nil {
		respondError(c, err, h.verbose)
		return
	}
	items := make([]customizationItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, customizationItem{ID: r.ID, JobPostText: r.JobPostText, CustomizedData: r.Data})
	}
	c.JSON(http.StatusOK, gin.H{"customizations": items})
}

func parseCustomizationID(raw string) (*uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return nil, apperror.Validation("customization_id must be a positive integer")
	}
	v := uint(id)
	return &v, nil
}

// RenderFromImage 按参考图片排版简历并生成可下载的 PDF。
func (h *ResumeHandler) RenderFromImage(c *gin.Context) {
	filename, image, err := h.readUpload(c, "file")
	if err != nil {
		respondError(c, err, h.verbose)
		return
	}
	username, err := claimedUsername(c, c.PostForm("username"))
	if err != nil {
		respondError(c, err, h.verbose)
		return
	}
	source, err := service.ParseSource(c.PostForm("source"))
	if err != nil {
		respondError(c, err, h.verbose)
		return
	}
	customizationID, err := parseCustomizationID(c.PostForm("customization_id"))
	if err != nil {
		respondError(c, err, h.verbose)
		return
	}

	result, err := h.svc.RenderFromImage(c.Request.Context(), service.RenderInput{
		Username:        username,
		Source:          source,
		CustomizationID: customizationID,
		ImageFilename:   filename,
		Image:           image,
		CorrelationID:   middleware.GetCorrelationID(c),
	})
	if err != nil {
		respondError(c, err, h.verbose)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":          "Resume rendered successfully",
		"html":             result.HTML,
		"pdf_url":          "/download_pdf/" + result.PDFName,
		"source":           result.Source,
		"customization_id": result.CustomizationID,
	})
}

// DownloadPDF 返回暂存的 PDF 文件。
func (h *ResumeHandler) DownloadPDF(c *gin.Context) {
	name := c.Param("filename")
	data, err := h.svc.DownloadPDF(c.Request.Context(), name)
	if err != nil {
		respondError(c, err, h.verbose)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, "application/pdf", data)
}
