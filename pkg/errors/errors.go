// Package errors 提供统一的错误定义
package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码
const (
	// 通用错误 (1xxx)
	CodeSuccess       ErrorCode = "0"
	CodeUnknown       ErrorCode = "1000"
	CodeInvalidParam  ErrorCode = "1001"
	CodeNotFound      ErrorCode = "1002"
	CodeConflict      ErrorCode = "1003"
	CodeInternalError ErrorCode = "1004"

	// 文档处理错误 (2xxx)
	CodeUnsupportedFileType ErrorCode = "2001"
	CodeNoDocuments         ErrorCode = "2002"
	CodeFileRequired        ErrorCode = "2003"

	// 检索错误 (3xxx)
	CodeNoRelevantContext ErrorCode = "3001"
	CodeIndexNotFound     ErrorCode = "3002"

	// 外部服务错误 (5xxx)
	CodeEmbeddingFailed ErrorCode = "5001"
	CodeVectorDBError   ErrorCode = "5002"
	CodeLLMCallFailed   ErrorCode = "5003"
)

// AppError 应用错误
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Err        error     `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail 返回带详细信息的错误副本，不修改预定义错误
func (e *AppError) WithDetail(detail string) *AppError {
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithError 返回带底层错误的错误副本
func (e *AppError) WithError(err error) *AppError {
	clone := *e
	clone.Err = err
	return &clone
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Err:        err,
	}
}

// codeToHTTPStatus 错误码转 HTTP 状态码
func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case CodeSuccess:
		return http.StatusOK
	case CodeInvalidParam, CodeUnsupportedFileType, CodeNoDocuments, CodeFileRequired:
		return http.StatusBadRequest
	case CodeNotFound, CodeNoRelevantContext, CodeIndexNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// 预定义错误
var (
	ErrInvalidParam  = New(CodeInvalidParam, "invalid parameter")
	ErrNotFound      = New(CodeNotFound, "resource not found")
	ErrInternalError = New(CodeInternalError, "internal server error")

	ErrUnsupportedFileType = New(CodeUnsupportedFileType, "unsupported file type")
	ErrNoDocuments         = New(CodeNoDocuments, "no documents produced from file")
	ErrFileRequired        = New(CodeFileRequired, "no file uploaded")

	ErrNoRelevantContext = New(CodeNoRelevantContext, "no relevant context found for the query")
	ErrIndexNotFound     = New(CodeIndexNotFound, "index not found")

	ErrEmbeddingFailed = New(CodeEmbeddingFailed, "embedding call failed")
	ErrVectorDBError   = New(CodeVectorDBError, "vector store call failed")
	ErrLLMCallFailed   = New(CodeLLMCallFailed, "LLM call failed")
)

// IsAppError 检查是否为 AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// AsAppError 将错误转换为 AppError
func AsAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return Wrap(err, CodeUnknown, "unknown error")
}
