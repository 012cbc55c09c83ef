package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	plain := NewError(ErrCodeInvalidReference, "仓库地址无效")
	assert.Equal(t, "[INVALID_REFERENCE] 仓库地址无效", plain.Error())

	cause := errors.New("boom")
	wrapped := WrapError(ErrCodeUpstreamFetch, "获取仓库信息失败", cause)
	assert.Equal(t, "[UPSTREAM_FETCH_ERROR] 获取仓库信息失败: boom", wrapped.Error())
	assert.ErrorIs(t, wrapped, cause)
}

func TestHasCode(t *testing.T) {
	inner := WrapError(ErrCodeRateLimited, "触发限流", errors.New("403"))
	outer := WrapError(ErrCodeUpstreamFetch, "获取目录失败", inner)
	viaFmt := fmt.Errorf("analyze: %w", outer)

	assert.True(t, HasCode(viaFmt, ErrCodeUpstreamFetch))
	assert.True(t, HasCode(viaFmt, ErrCodeRateLimited))
	assert.False(t, HasCode(viaFmt, ErrCodeDelivery))
	assert.False(t, HasCode(errors.New("plain"), ErrCodeUpstreamFetch))
	assert.False(t, HasCode(nil, ErrCodeUpstreamFetch))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrCodeDelivery, CodeOf(fmt.Errorf("x: %w", NewError(ErrCodeDelivery, "失败"))))
	assert.Equal(t, "", CodeOf(errors.New("plain")))
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("debug")
	assert.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = NewLogger("loud")
	assert.True(t, HasCode(err, ErrCodeInvalidInput))
}

func TestIsTransient(t *testing.T) {
	transient := WrapError(ErrCodeUpstreamFetch, "获取失败", NewError(ErrCodeUpstreamUnavailable, "502"))
	assert.True(t, IsTransient(transient))
	assert.False(t, IsTransient(WrapError(ErrCodeUpstreamFetch, "获取失败", NewError(ErrCodeRateLimited, "403"))))
	assert.False(t, IsTransient(errors.New("plain")))
}
