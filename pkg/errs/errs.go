// Package errs 定义领域错误分类及其 HTTP 映射.
//
// 每个错误携带稳定的 Kind（响应中的 code 字段）与可读信息，
// 底层错误通过 %w 保留，可用 errors.Is / errors.As 判断.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 错误类别，同时作为响应体里的 code.
type Kind string

const (
	KindValidation   Kind = "validation_error"
	KindDecode       Kind = "decode_error"
	KindNotFound     Kind = "not_found"
	KindForbidden    Kind = "forbidden"
	KindUnauthorized Kind = "unauthorized"
	KindStore        Kind = "store_error"
	KindInternal     Kind = "internal_error"
)

// Error 领域错误.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Msg != "" {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}

	if e.Msg != "" {
		return e.Msg
	}

	if e.Err != nil {
		return e.Err.Error()
	}

	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is 让 errors.Is(err, errs.ErrNotFound) 这类按类别的判断成立.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}

	return t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

// 按类别比较用的哨兵值.
var (
	ErrValidation   = &Error{Kind: KindValidation}
	ErrDecode       = &Error{Kind: KindDecode}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrForbidden    = &Error{Kind: KindForbidden}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
	ErrStore        = &Error{Kind: KindStore}
)

// Validation 输入校验失败.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// Decode 表格内容无法解析.
func Decode(err error, msg string) *Error {
	return &Error{Kind: KindDecode, Msg: msg, Err: err}
}

// NotFound 资源不存在或对请求者不可见.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// Forbidden 权限不足.
func Forbidden(format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Msg: fmt.Sprintf(format, args...)}
}

// Unauthorized 缺少或无效的身份.
func Unauthorized(format string, args ...any) *Error {
	return &Error{Kind: KindUnauthorized, Msg: fmt.Sprintf(format, args...)}
}

// Store 包装存储后端错误.
func Store(err error, op string) *Error {
	return &Error{Kind: KindStore, Msg: op, Err: err}
}

// KindOf 返回 err 的类别，非领域错误视为 internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindInternal
}

// Message 返回适合直接展示给客户端的信息；存储与内部错误不暴露细节.
func Message(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "internal server error"
	}

	switch e.Kind {
	case KindStore:
		return "storage temporarily unavailable"
	case KindInternal:
		return "internal server error"
	}

	if e.Msg != "" {
		return e.Msg
	}

	return e.Error()
}

// HTTPStatus 领域错误到 HTTP 状态码的映射.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindDecode:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// IsRetryable 只有存储错误值得重试.
func IsRetryable(err error) bool {
	return KindOf(err) == KindStore
}

// Body 错误响应体.
type Body struct {
	Error string `json:"error"`
	Code  Kind   `json:"code"`
}

// Response 错误对应的状态码与响应体.
func Response(err error) (int, Body) {
	return HTTPStatus(err), Body{Error: Message(err), Code: KindOf(err)}
}
