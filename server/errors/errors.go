// Package errors HTTP 层错误类型：业务错误附带状态码与用户可见消息。
package errors

import (
	"fmt"
	"net/http"
)

// AppError 带 HTTP 状态码的应用错误。Err 只进日志，不进响应。
type AppError struct {
	Code    int    `json:"status_code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap 支持 errors.Is / errors.As。
func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode 返回 HTTP 状态码。
func (e *AppError) StatusCode() int {
	return e.Code
}

// UserMessage 返回响应里的用户可见消息。
func (e *AppError) UserMessage() string {
	return e.Message
}

// NewValidationError 400 参数错误。
func NewValidationError(message string, err error) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: message, Err: err}
}

// NewNotFoundError 404 资源不存在。
func NewNotFoundError(message string, err error) *AppError {
	return &AppError{Code: http.StatusNotFound, Message: message, Err: err}
}

// NewUnauthorizedError 401 未授权。
func NewUnauthorizedError(message string, err error) *AppError {
	return &AppError{Code: http.StatusUnauthorized, Message: message, Err: err}
}

// NewInternalError 500 内部错误，用户只看到通用消息。
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: "服务器内部错误",
		Err:     fmt.Errorf("%s: %w", message, err),
	}
}
