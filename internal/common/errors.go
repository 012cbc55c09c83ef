package common

import (
	"errors"
	"fmt"
)

// AppError 应用级错误结构
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WrapError 包装错误
func WrapError(code, message string, err error) error {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewError 创建新错误
func NewError(code, message string) error {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// CodeOf 返回错误链上第一个 AppError 的错误码，没有则返回空字符串
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// HasCode 判断错误链上是否存在指定错误码的 AppError
func HasCode(err error, code string) bool {
	for err != nil {
		var appErr *AppError
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Err
	}
	return false
}

// IsTransient 上游临时不可用 (5xx、网络错误、超时)，可以重试
func IsTransient(err error) bool {
	return HasCode(err, ErrCodeUpstreamUnavailable)
}

// 错误码常量
const (
	ErrCodeInvalidReference    = "INVALID_REFERENCE"
	ErrCodeUpstreamFetch       = "UPSTREAM_FETCH_ERROR"
	ErrCodeRateLimited         = "RATE_LIMITED"
	ErrCodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	ErrCodeManifestUnavailable = "MANIFEST_UNAVAILABLE"
	ErrCodeSubtreeUnavailable  = "SUBTREE_UNAVAILABLE"
	ErrCodeDelivery            = "DELIVERY_ERROR"
	ErrCodeDatabase            = "DATABASE_ERROR"
	ErrCodeInvalidInput        = "INVALID_INPUT"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeInternal            = "INTERNAL_ERROR"
)
