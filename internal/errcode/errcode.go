package errcode

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// 错误分类：仓储与认证组件返回带类型的错误，由 API 层统一映射为 HTTP 响应。
var (
	ErrValidation           = errors.New("validation error")
	ErrAuthRequired         = errors.New("access token required")
	ErrAuthInvalid          = errors.New("invalid or expired token")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrConflict             = errors.New("conflict")
	ErrNotFound             = errors.New("not found")
	ErrUnsupportedMediaType = errors.New("only image files are allowed")
	ErrPayloadTooLarge      = errors.New("file too large")
	ErrRateLimited          = errors.New("rate limit exceeded")
)

// InternalMessage 是意外错误时客户端能看到的唯一文本。
const InternalMessage = "Internal server error"

type detailed struct {
	kind   error
	detail string
}

// Error 返回分类与详情。
func (e *detailed) Error() string { return e.kind.Error() + ": " + e.detail }
// Unwrap 返回错误分类，便于 errors.Is 判断。
func (e *detailed) Unwrap() error { return e.kind }

// New 为错误分类附加可返回给客户端的详情。
func New(kind error, format string, args ...any) error {
	return &detailed{kind: kind, detail: fmt.Sprintf(format, args...)}
}

// Validation 是 New(ErrValidation, ...) 的简写。
func Validation(format string, args ...any) error { return New(ErrValidation, format, args...) }

// NotFound 是 New(ErrNotFound, ...) 的简写。
func NotFound(format string, args ...any) error { return New(ErrNotFound, format, args...) }

// Conflict 是 New(ErrConflict, ...) 的简写。
func Conflict(format string, args ...any) error { return New(ErrConflict, format, args...) }

// Status 把错误映射为 HTTP 状态码。
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, ErrAuthRequired), errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrAuthInvalid):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Message 返回可以写入响应体的文本。
func Message(err error) string {
	if Status(err) == http.StatusInternalServerError {
		return InternalMessage
	}
	var d *detailed
	if errors.As(err, &d) && strings.TrimSpace(d.detail) != "" {
		return d.detail
	}
	for _, kind := range []error{
		ErrValidation, ErrAuthRequired, ErrAuthInvalid, ErrInvalidCredentials, ErrConflict,
		ErrNotFound, ErrUnsupportedMediaType, ErrPayloadTooLarge, ErrRateLimited,
	} {
		if errors.Is(err, kind) {
			return capitalize(kind.Error())
		}
	}
	return InternalMessage
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
