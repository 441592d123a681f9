// Package errs 定义 stickerboard 统一使用的结构化错误。
//
// 每个错误携带机器可读的 Code，调用方可以用 Is 判断类别，
// 同时保留 Cause 以便 errors.Is / errors.As 沿链路展开。
//
//	err := errs.New(errs.CodeProtectedLayer, "图层 %s 不可复制", id)
//	if errs.Is(err, errs.CodeProtectedLayer) {
//	    // 忽略即可，场景未被修改
//	}
package errs

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error category.
type Code string

const (
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidSize     Code = "INVALID_SIZE"
	CodeInvalidColor    Code = "INVALID_COLOR"
	CodeProtectedLayer  Code = "PROTECTED_LAYER"
	CodeNotFound        Code = "NOT_FOUND"
	CodeStaleUpload     Code = "STALE_UPLOAD"
	CodeDecodeFailed    Code = "DECODE_FAILED"
	CodeCaptureFailed   Code = "CAPTURE_FAILED"
	CodeFontUnavailable Code = "FONT_UNAVAILABLE"
	CodeInternal        Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error { return e.Cause }

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a new Error wrapping cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether any *Error in err's chain carries code.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode extracts the outermost error code, or "" for foreign errors.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without the code prefix.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
