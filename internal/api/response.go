package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jigneshshiyal/SmartResumeAgent/internal/api/middleware"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/apperror"
)

func Error(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

func BadRequest(c *gin.Context, msg string) { Error(c, http.StatusBadRequest, msg) }

// statusFor 把错误分类映射为 HTTP 状态码。
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrConflict),
		errors.Is(err, apperror.ErrAuthentication),
		errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage 返回给客户端的错误消息。5xx 默认不透出上游细节。
func publicMessage(err error, verbose bool) string {
	if statusFor(err) < http.StatusInternalServerError || verbose {
		return apperror.Message(err)
	}
	switch {
	case errors.Is(err, apperror.ErrExtractionSchema):
		return "could not extract structured resume data"
	case errors.Is(err, apperror.ErrAdapter):
		return "generation service failed"
	case errors.Is(err, apperror.ErrRender):
		return "pdf rendering failed"
	default:
		return "internal error"
	}
}

// respondError 记录并输出错误响应。
func respondError(c *gin.Context, err error, verbose bool) {
	status := statusFor(err)
	log := middleware.LoggerFromContext(c)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", slog.Int("status", status), slog.Any("error", err))
	} else {
		log.Info("request rejected", slog.Int("status", status), slog.String("reason", apperror.Message(err)))
	}
	Error(c, status, publicMessage(err, verbose))
}
