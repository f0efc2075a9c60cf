// Package apperr 定义了整个服务共享的错误分类：校验错误、未找到、请求格式错误。
// 领域包只返回这些错误（或用 %w 包装它们），由 HTTP 层统一映射为状态码。
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound 表示请求的 schema / entry 不存在（或已被并发删除）。
	ErrNotFound = errors.New("not found")
	// ErrValidation 是所有 *ValidationError 的哨兵值，供 errors.Is 使用。
	ErrValidation = errors.New("validation failed")
	// ErrBadRequest 表示请求体本身无法解析。
	ErrBadRequest = errors.New("bad request")
)

// FieldError 描述单个字段的校验失败。Field 为空时表示整个 schema 级别的错误。
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Field 构造一个字段错误。
func Field(field, format string, args ...any) *FieldError {
	return &FieldError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ValidationError 累积多个字段错误，调用方可以一次性报告全部问题，而不是遇到第一个就返回。
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

// Add 追加一条错误；field 为空表示 schema 级别。
func (e *ValidationError) Add(field, format string, args ...any) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Append 追加一个已有的字段错误，nil 会被忽略。
func (e *ValidationError) Append(fe *FieldError) {
	if fe == nil {
		return
	}
	e.Fields = append(e.Fields, *fe)
}

// HasErrors 报告是否累积了任何错误。
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

// Err 在没有错误时返回 nil 接口值，避免 typed-nil 陷阱。
func (e *ValidationError) Err() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for i := range e.Fields {
		msgs = append(msgs, e.Fields[i].Error())
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid 是只有一条 schema 级别错误时的快捷构造。
func Invalid(format string, args ...any) error {
	v := &ValidationError{}
	v.Add("", format, args...)
	return v
}

// NotFound 返回包装了 ErrNotFound 的错误。
func NotFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}
