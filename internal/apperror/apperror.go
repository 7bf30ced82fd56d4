// Package apperror 定义服务内统一的错误分类，HTTP 层据此映射状态码。
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrAuthentication   = errors.New("authentication failed")
	ErrConflict         = errors.New("conflict")
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation error")
	ErrForbidden        = errors.New("forbidden")
	ErrExtractionSchema = errors.New("extraction schema error")
	ErrAdapter          = errors.New("adapter error")
	ErrRender           = errors.New("render error")
)

// Error 携带一个分类哨兵错误和面向用户的消息。
type Error struct {
	Err     error  // 分类哨兵，errors.Is 可穿透
	Message string // 可读消息
	Cause   error  // 底层原因，可为空
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap 同时暴露分类与底层原因。
func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

func InvalidCredentials() *Error {
	return &Error{Err: ErrAuthentication, Message: "invalid username or password"}
}

func Conflict(message string) *Error {
	return &Error{Err: ErrConflict, Message: message}
}

func NotFound(resource string) *Error {
	return &Error{Err: ErrNotFound, Message: resource + " not found"}
}

func Validation(message string) *Error {
	return &Error{Err: ErrValidation, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Err: ErrForbidden, Message: message}
}

func ExtractionSchema(cause error) *Error {
	return &Error{Err: ErrExtractionSchema, Message: "oracle output does not match the resume schema", Cause: cause}
}

func Adapter(message string, cause error) *Error {
	return &Error{Err: ErrAdapter, Message: message, Cause: cause}
}

func Render(message string, cause error) *Error {
	return &Error{Err: ErrRender, Message: message, Cause: cause}
}

// Message 返回错误链上第一个 *Error 的消息，否则返回 err.Error()。
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Error()
	}
	return err.Error()
}
